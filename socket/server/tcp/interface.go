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

// Package tcp serves inbound plaintext TCP sockets.
package tcp

import (
	"context"
	"net"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	libsck "github.com/nabbar/duplexrpc/socket"
	sckcfg "github.com/nabbar/duplexrpc/socket/config"
)

// ServerTcp is the inbound socket factory for plaintext TCP.
type ServerTcp interface {
	// Listen binds the configured address and serves the accept loop until
	// Shutdown or a listener failure.
	Listen(ctx context.Context) liberr.Error

	// Shutdown closes the listener and disconnects every inbound socket.
	Shutdown(ctx context.Context) liberr.Error

	// IsRunning reports whether the accept loop is active.
	IsRunning() bool

	// Listener returns the bound listener address and its string form.
	Listener() (net.Addr, string, liberr.Error)

	// Sockets returns a snapshot of the live inbound sockets.
	Sockets() []libsck.Socket
}

// New returns a ServerTcp. The optional loop binds every accepted socket to
// it instead of the default loop.
func New(log liblog.FuncLog, h libsck.Handler, cfg sckcfg.Server, loop ...libsck.Loop) (ServerTcp, liberr.Error) {
	if h == nil {
		return nil, libsck.ErrorParamEmpty.Error(nil)
	}

	var l libsck.Loop
	if len(loop) > 0 {
		l = loop[0]
	}

	return &srv{
		log: log,
		dlg: libsck.NewDelegate(h),
		cfg: cfg,
		lop: l,
		run: libatm.NewValue[bool](),
	}, nil
}
