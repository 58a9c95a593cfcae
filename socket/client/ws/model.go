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

package ws

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	liberr "github.com/nabbar/golib/errors"

	libaut "github.com/nabbar/duplexrpc/httpauth"
	libsck "github.com/nabbar/duplexrpc/socket"
)

// UpgradeDialer is the upgrade dialer shared by the ws and wss transports.
type UpgradeDialer interface {
	libsck.Dialer

	// BindRequestContext binds the getter returning the current WS request
	// context of the owning socket.
	BindRequestContext(f func() libsck.WSRequest)
}

// NewUpgradeDialer returns an UpgradeDialer for one socket. scheme is ws or
// wss; t is the TLS client configuration for wss, nil otherwise.
func NewUpgradeDialer(scheme, host string, port int, dev string, t *tls.Config) UpgradeDialer {
	return &dlr{
		sch: scheme,
		hst: host,
		prt: port,
		dev: dev,
		tls: t,
		aut: libaut.NewContext(),
	}
}

type dlr struct {
	sch string
	hst string
	prt int
	dev string
	tls *tls.Config

	req func() libsck.WSRequest
	aut libaut.Context
}

func (o *dlr) BindRequestContext(f func() libsck.WSRequest) {
	o.req = f
}

func (o *dlr) Dial(ctx context.Context, onHandshake func()) (libsck.Conn, *libsck.WSResponse, liberr.Error) {
	for {
		cnn, wsr, rty, err := o.attempt(ctx, onHandshake)

		if rty {
			continue
		}

		return cnn, wsr, err
	}
}

// attempt drives one upgrade round trip. rty is true when a Digest
// challenge must be answered by a silent reconnect.
func (o *dlr) attempt(ctx context.Context, onHandshake func()) (cnn libsck.Conn, wsr *libsck.WSResponse, rty bool, err liberr.Error) {
	rq := libsck.WSRequest{}
	if o.req != nil {
		rq = o.req()
	}

	hdr := make(http.Header, len(rq.Headers)+1)
	for k, v := range rq.Headers {
		hdr[k] = []string{v}
	}

	if a := o.authorization(rq); a != "" {
		hdr.Set("Authorization", a)
	}

	wd := websocket.Dialer{
		NetDialContext: func(c context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{
				Control: libsck.DialControl(o.dev),
			}

			raw, e := d.DialContext(c, network, address)
			if e == nil && onHandshake != nil {
				onHandshake()
			}

			return raw, e
		},
		TLSClientConfig: o.tls,
	}

	u := o.sch + "://" + net.JoinHostPort(o.hst, fmt.Sprintf("%d", o.prt)) + rq.URI()

	wc, rsp, derr := wd.DialContext(ctx, u, hdr)

	wsr = captureResponse(rsp)
	o.rebuild(rsp)

	if derr == nil {
		return libsck.NewWebsocketConn(wc), wsr, false, nil
	}

	if errors.Is(derr, websocket.ErrBadHandshake) && rsp != nil && rsp.StatusCode == http.StatusUnauthorized {
		if o.aut.Scheme() == libaut.SchemeDigest && o.aut.Count() < 2 && rq.Auth.Username != "" {
			// one-shot silent retry with the fresh challenge
			return nil, nil, true, nil
		}
		return nil, wsr, false, libsck.ErrorWSAuthRejected.Error(derr)
	}

	if errors.Is(derr, websocket.ErrBadHandshake) {
		return nil, wsr, false, libsck.ErrorWSHandshake.Error(derr)
	}

	return nil, wsr, false, libsck.NetError(ctx, derr)
}

// authorization synthesizes the Authorization header: Basic when the
// request context asks for it, Digest when a challenge is being answered.
func (o *dlr) authorization(rq libsck.WSRequest) string {
	uri := rq.Path
	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}

	if o.aut.Scheme() == libaut.SchemeDigest && rq.Auth.Username != "" {
		return o.aut.Authorization(http.MethodGet, uri, rq.Auth.Username, rq.Auth.Password)
	}

	if rq.Auth.Scheme == libaut.SchemeBasic {
		return libaut.BasicAuthorization(rq.Auth.Username, rq.Auth.Password)
	}

	return ""
}

// rebuild refreshes the authentication context from the handshake response:
// a carried challenge increments the nonce count, no challenge resets it.
func (o *dlr) rebuild(rsp *http.Response) {
	if rsp == nil {
		return
	}

	if v := rsp.Header.Get("Www-Authenticate"); v != "" {
		o.aut = libaut.Rebuild(o.aut, v)
	} else {
		o.aut = libaut.NewContext()
	}
}

func captureResponse(rsp *http.Response) *libsck.WSResponse {
	if rsp == nil {
		return nil
	}

	h := make(libsck.Headers, len(rsp.Header))
	for k, v := range rsp.Header {
		h[k] = strings.Join(v, ", ")
	}

	return &libsck.WSResponse{
		Code:    rsp.StatusCode,
		Headers: h,
	}
}
