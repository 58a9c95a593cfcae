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

// Package ws constructs outbound WebSocket sockets over plaintext TCP.
//
// The upgrade request is built from the socket WS request context: the
// request line from path and query, the user headers copied onto the
// request, and an Authorization header synthesized when Basic credentials
// are configured or a Digest challenge is being answered. A 401 response
// carrying a Digest challenge is absorbed once: the socket silently retries
// with an incremented nonce count, and the application observes a single
// OnConnect (or an OnDisconnect when the retry fails too).
package ws

import (
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	libsck "github.com/nabbar/duplexrpc/socket"
	sckcfg "github.com/nabbar/duplexrpc/socket/config"
)

// ClientWs is the outbound socket factory for WebSocket over TCP.
type ClientWs interface {
	// CreateSocket constructs a disconnected socket toward host:port. An
	// empty host targets the configured address.
	CreateSocket(host string, port int) (libsck.Socket, liberr.Error)

	// Sockets returns a snapshot of the sockets created by this client.
	Sockets() []libsck.Socket
}

// New returns a ClientWs. The optional loop binds every created socket to
// it instead of the default loop.
func New(log liblog.FuncLog, h libsck.Handler, cfg sckcfg.Client, loop ...libsck.Loop) (ClientWs, liberr.Error) {
	if h == nil {
		return nil, libsck.ErrorParamEmpty.Error(nil)
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

type cli struct {
	log liblog.FuncLog
	dlg libsck.Delegate
	cfg sckcfg.Client
	lop libsck.Loop
}

func (o *cli) CreateSocket(host string, port int) (libsck.Socket, liberr.Error) {
	if host == "" {
		h, p, err := o.cfg.HostPort()
		if err != nil {
			return nil, libsck.ErrorParamInvalid.Error(err)
		}
		host, port = h, p
	}

	if port <= 0 || port > 65535 {
		return nil, libsck.ErrorParamInvalid.Error(nil)
	}

	d := NewUpgradeDialer("ws", host, port, o.cfg.BindDevice, nil)

	s := libsck.New(libsck.Options{
		Kind:           libsck.KindWS,
		Loop:           o.lop,
		Delegate:       o.dlg,
		Log:            o.log,
		Host:           host,
		Port:           port,
		BindDevice:     o.cfg.BindDevice,
		ConnectTimeout: o.cfg.ConnectTimeout,
		RequestTimeout: o.cfg.RequestTimeout,
		WSRequest:      o.cfg.WS,
	}, d)

	d.BindRequestContext(s.(libsck.Upgraded).WSRequestContext)

	return s, nil
}

func (o *cli) Sockets() []libsck.Socket {
	return o.dlg.Sockets()
}
