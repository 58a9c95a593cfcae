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

package tcp

import (
	"context"
	"errors"
	"net"
	"sync"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	libsck "github.com/nabbar/duplexrpc/socket"
	sckcfg "github.com/nabbar/duplexrpc/socket/config"
)

type srv struct {
	m sync.Mutex

	log liblog.FuncLog
	dlg libsck.Delegate
	cfg sckcfg.Server
	lop libsck.Loop
	run libatm.Value[bool]

	lst net.Listener
}

func (o *srv) Listen(ctx context.Context) liberr.Error {
	if ctx == nil {
		ctx = context.Background()
	}

	o.m.Lock()

	if o.run.Load() {
		o.m.Unlock()
		return libsck.ErrorAlready.Error(nil)
	}

	lst, err := libsck.ListenTCP(o.cfg.Address)
	if err != nil {
		o.m.Unlock()
		return libsck.NetError(ctx, err)
	}

	o.lst = lst
	o.run.Store(true)
	o.m.Unlock()

	defer o.run.Store(false)

	for {
		c, err := lst.Accept()

		if err != nil {
			if errors.Is(err, net.ErrClosed) || !o.run.Load() {
				return nil
			}
			return libsck.NetError(ctx, err)
		}

		o.accept(c)
	}
}

func (o *srv) accept(c net.Conn) {
	libsck.NewAccepted(libsck.Options{
		Kind:           libsck.KindTCP,
		Loop:           o.lop,
		Delegate:       o.dlg,
		Log:            o.log,
		RequestTimeout: o.cfg.RequestTimeout,
	}, libsck.NewStreamConn(c), nil)
}

func (o *srv) Shutdown(ctx context.Context) liberr.Error {
	o.m.Lock()

	if !o.run.Load() {
		o.m.Unlock()
		return libsck.ErrorAlready.Error(nil)
	}

	o.run.Store(false)

	if o.lst != nil {
		_ = o.lst.Close()
		o.lst = nil
	}

	o.m.Unlock()

	for _, s := range o.dlg.Sockets() {
		_ = s.Disconnect()
	}

	return nil
}

func (o *srv) IsRunning() bool {
	return o.run.Load()
}

func (o *srv) Listener() (net.Addr, string, liberr.Error) {
	o.m.Lock()
	defer o.m.Unlock()

	if o.lst == nil {
		return nil, "", libsck.ErrorNotConnected.Error(nil)
	}

	a := o.lst.Addr()
	return a, a.String(), nil
}

func (o *srv) Sockets() []libsck.Socket {
	return o.dlg.Sockets()
}
