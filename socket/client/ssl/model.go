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

package ssl

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	libtls "github.com/nabbar/golib/certificates"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libptc "github.com/nabbar/golib/network/protocol"

	libsck "github.com/nabbar/duplexrpc/socket"
	sckcfg "github.com/nabbar/duplexrpc/socket/config"
)

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

	d := &dlr{
		hst: host,
		prt: port,
		dev: o.cfg.BindDevice,
		tls: o.cfg.TLS,
	}

	return libsck.New(libsck.Options{
		Kind:           libsck.KindSSL,
		Loop:           o.lop,
		Delegate:       o.dlg,
		Log:            o.log,
		Host:           host,
		Port:           port,
		BindDevice:     o.cfg.BindDevice,
		ConnectTimeout: o.cfg.ConnectTimeout,
		RequestTimeout: o.cfg.RequestTimeout,
	}, d), nil
}

func (o *cli) Sockets() []libsck.Socket {
	return o.dlg.Sockets()
}

type dlr struct {
	hst string
	prt int
	dev string
	tls libtls.TLSConfig
}

func (o *dlr) Dial(ctx context.Context, onHandshake func()) (libsck.Conn, *libsck.WSResponse, liberr.Error) {
	d := net.Dialer{
		Control: libsck.DialControl(o.dev),
	}

	c, err := d.DialContext(ctx, libptc.NetworkTCP.Code(), net.JoinHostPort(o.hst, fmt.Sprintf("%d", o.prt)))
	if err != nil {
		return nil, nil, libsck.NetError(ctx, err)
	}

	if onHandshake != nil {
		onHandshake()
	}

	tc := tls.Client(c, o.tls.TlsConfig(o.hst))

	if err = tc.HandshakeContext(ctx); err != nil {
		_ = c.Close()
		return nil, nil, libsck.ErrorTLSHandshake.Error(err)
	}

	return libsck.NewStreamConn(tc), nil, nil
}
