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
	"sync"

	"github.com/gorilla/websocket"
	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	libaut "github.com/nabbar/duplexrpc/httpauth"
	libsck "github.com/nabbar/duplexrpc/socket"
	sckcfg "github.com/nabbar/duplexrpc/socket/config"
)

type srv struct {
	m sync.Mutex

	knd libsck.Kind
	log liblog.FuncLog
	dlg libsck.Delegate
	cfg sckcfg.Server
	lop libsck.Loop
	run libatm.Value[bool]

	lst net.Listener
	hsv *http.Server
	pol libaut.NoncePool

	upg websocket.Upgrader
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

	if o.knd == libsck.KindWSS {
		lst = tls.NewListener(lst, o.cfg.TLS.TlsConfig(""))
	}

	if o.cfg.Auth.Enabled() && o.cfg.Auth.Scheme == libaut.SchemeDigest {
		o.pol = libaut.NewNoncePool(ctx, o.cfg.Auth.NonceTTL)
	}

	o.upg = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	hsv := &http.Server{
		Handler: o,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	o.lst = lst
	o.hsv = hsv
	o.run.Store(true)
	o.m.Unlock()

	defer o.run.Store(false)

	if err = hsv.Serve(lst); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return libsck.NetError(ctx, err)
	}

	return nil
}

func (o *srv) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p := o.path(); p != "" && r.URL.Path != p {
		http.NotFound(w, r)
		return
	}

	if o.cfg.Auth.Enabled() && !o.authorize(w, r) {
		return
	}

	wc, err := o.upg.Upgrade(w, r, nil)
	if err != nil {
		o.logError("websocket upgrade with %s failed: %v", r.RemoteAddr, err)
		return
	}

	libsck.NewAccepted(libsck.Options{
		Kind:           o.knd,
		Loop:           o.lop,
		Delegate:       o.dlg,
		Log:            o.log,
		RequestTimeout: o.cfg.RequestTimeout,
	}, libsck.NewWebsocketConn(wc), &libsck.WSResponse{
		Code: http.StatusSwitchingProtocols,
		Headers: libsck.Headers{
			"Upgrade":    "websocket",
			"Connection": "Upgrade",
		},
	})
}

// authorize validates the Authorization header against the configured
// scheme, answering a challenge when the request does not carry valid
// credentials. It reports whether the upgrade may proceed.
func (o *srv) authorize(w http.ResponseWriter, r *http.Request) bool {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		o.challenge(w, false)
		return false
	}

	a, err := libaut.ParseAuthorization(hdr)
	if err != nil || a.Scheme != o.cfg.Auth.Scheme {
		o.challenge(w, false)
		return false
	}

	switch a.Scheme {
	case libaut.SchemeBasic:
		if pwd, ok := o.cfg.Auth.Credentials(a.Username); ok && a.VerifyBasic(pwd) {
			return true
		}
		// presented basic credentials do not match: terminate, no re-challenge
		o.reject(w)
		return false

	case libaut.SchemeDigest:
		if o.pol == nil || !o.pol.Validate(a.Nonce) {
			o.challenge(w, true)
			return false
		}
		if pwd, ok := o.cfg.Auth.Credentials(a.Username); ok && a.Realm == o.cfg.Auth.Realm && a.VerifyDigest(r.Method, pwd) {
			return true
		}
		o.challenge(w, true)
		return false
	}

	o.challenge(w, false)
	return false
}

func (o *srv) challenge(w http.ResponseWriter, stale bool) {
	c := libaut.Challenge{
		Scheme: o.cfg.Auth.Scheme,
		Realm:  o.cfg.Auth.Realm,
		Stale:  stale,
	}

	if c.Scheme == libaut.SchemeDigest && o.pol != nil {
		c.Qop = "auth"
		if n, err := o.pol.Mint(); err == nil {
			c.Nonce = n
		}
	}

	w.Header().Set("WWW-Authenticate", c.Header())
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

// reject closes the exchange on a basic credential mismatch: 401 without a
// WWW-Authenticate header, connection closed after the response.
func (o *srv) reject(w http.ResponseWriter) {
	w.Header().Set("Connection", "close")
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

func (o *srv) path() string {
	p := o.cfg.Path
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func (o *srv) Shutdown(ctx context.Context) liberr.Error {
	o.m.Lock()

	if !o.run.Load() {
		o.m.Unlock()
		return libsck.ErrorAlready.Error(nil)
	}

	o.run.Store(false)

	hsv := o.hsv
	o.hsv = nil
	o.lst = nil
	o.m.Unlock()

	if hsv != nil {
		_ = hsv.Close()
	}

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

func (o *srv) logError(msg string, args ...interface{}) {
	if o.log == nil {
		return
	}
	if l := o.log(); l != nil {
		l.Error(fmt.Sprintf(msg, args...), nil)
	}
}
