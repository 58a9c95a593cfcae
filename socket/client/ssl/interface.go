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

// Package ssl constructs outbound TLS sockets. The TLS context of the
// client configuration drives certificates, CA bundle, cipher list and
// verification mode; the peer chain is inspectable on the connected socket
// through the socket.Secured surface.
package ssl

import (
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	libsck "github.com/nabbar/duplexrpc/socket"
	sckcfg "github.com/nabbar/duplexrpc/socket/config"
)

// ClientSsl is the outbound socket factory for TLS over TCP.
type ClientSsl interface {
	// CreateSocket constructs a disconnected socket toward host:port. An
	// empty host targets the configured address.
	CreateSocket(host string, port int) (libsck.Socket, liberr.Error)

	// Sockets returns a snapshot of the sockets created by this client.
	Sockets() []libsck.Socket
}

// New returns a ClientSsl. The optional loop binds every created socket to
// it instead of the default loop.
func New(log liblog.FuncLog, h libsck.Handler, cfg sckcfg.Client, loop ...libsck.Loop) (ClientSsl, liberr.Error) {
	if h == nil {
		return nil, libsck.ErrorParamEmpty.Error(nil)
	}

	if cfg.TLS == nil {
		return nil, libsck.ErrorParamInvalid.Error(nil)
	}

	var l libsck.Loop
	if len(loop) > 0 {
		l = loop[0]
	}

	return &cli{
		log: log,
		dlg: libsck.NewDelegate(h),
		cfg: cfg,
		lop: l,
	}, nil
}
