/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package client constructs outbound sockets. New dispatches on the
// configured transport kind to the per-transport subpackages.
package client

import (
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	sckcfg "github.com/nabbar/duplexrpc/socket/config"
	sckctc "github.com/nabbar/duplexrpc/socket/client/tcp"
	sckcsl "github.com/nabbar/duplexrpc/socket/client/ssl"
	sckcws "github.com/nabbar/duplexrpc/socket/client/ws"
	sckcss "github.com/nabbar/duplexrpc/socket/client/wss"

	libsck "github.com/nabbar/duplexrpc/socket"
)

// Client is the outbound socket factory common to every transport.
//
// Sockets created by one client share its handler, loop, and group table.
type Client interface {
	// CreateSocket constructs a disconnected socket toward host:port. An
	// empty host targets the configured address.
	CreateSocket(host string, port int) (libsck.Socket, liberr.Error)

	// Sockets returns a snapshot of the sockets created by this client.
	Sockets() []libsck.Socket
}

// New returns a Client for the configured transport kind. The optional loop
// binds every created socket to it instead of the default loop.
func New(log liblog.FuncLog, h libsck.Handler, cfg sckcfg.Client, loop ...libsck.Loop) (Client, liberr.Error) {
	if h == nil {
		return nil, ErrorParamEmpty.Error(nil)
	}

	if err := cfg.Validate(); err != nil {
		return nil, ErrorParamInvalid.Error(err)
	}

	switch cfg.Kind {
	case libsck.KindTCP:
		c, e := sckctc.New(log, h, cfg, loop...)
		return c, e
	case libsck.KindSSL:
		c, e := sckcsl.New(log, h, cfg, loop...)
		return c, e
	case libsck.KindWS:
		c, e := sckcws.New(log, h, cfg, loop...)
		return c, e
	case libsck.KindWSS:
		c, e := sckcss.New(log, h, cfg, loop...)
		return c, e
	}

	return nil, ErrorParamInvalid.Error(nil)
}
