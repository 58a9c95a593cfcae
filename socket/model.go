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

package socket

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	"github.com/nabbar/duplexrpc/group"
	"github.com/nabbar/duplexrpc/message"
)

const defRequestTimeout = 30 * time.Second

// Options carries the construction parameters of a socket record.
type Options struct {
	Kind           Kind
	Loop           Loop
	Delegate       Delegate
	Groups         group.Table
	Log            liblog.FuncLog
	Host           string
	Port           int
	BindDevice     string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	WSRequest      WSRequest
}

// New returns a client-side socket in the disconnected state, bound to the
// given dialer. The returned handle is registered with the delegate.
func New(opt Options, d Dialer) Socket {
	s := newSck(opt)
	s.dlr = d

	if s.dlg != nil {
		s.dlg.Retain(s)
	}

	return s
}

// NewAccepted wraps an accepted connection into a connected socket. The
// attach and the handler OnConnect run on the loop; the returned handle is
// registered with the delegate immediately.
func NewAccepted(opt Options, c Conn, wsr *WSResponse) Socket {
	s := newSck(opt)

	if s.dlg != nil {
		s.dlg.Retain(s)
	}

	s.m.Lock()
	s.s = StateConnecting
	s.epo++
	epo := s.epo
	s.m.Unlock()

	s.lop.Post(func() {
		s.attach(epo, c, wsr)
	})

	return s
}

func newSck(opt Options) *sck {
	l := opt.Loop
	if l == nil {
		l = DefaultLoop()
	}

	t := opt.Groups
	if t == nil {
		t = group.Default()
	}

	r := opt.RequestTimeout
	if r <= 0 {
		r = defRequestTimeout
	}

	return &sck{
		knd: opt.Kind,
		hst: opt.Host,
		prt: opt.Port,
		dev: opt.BindDevice,
		cto: opt.ConnectTimeout,
		rto: r,
		lop: l,
		dlg: opt.Delegate,
		tbl: t,
		log: opt.Log,
		wsq: opt.WSRequest,
		wtr: make(map[uint32]*wtr),
	}
}

type sck struct {
	m sync.Mutex

	s   State
	epo uint64

	knd Kind
	hst string
	prt int
	dev string

	cto time.Duration
	rto time.Duration

	dlr Dialer
	cnn Conn
	cnl context.CancelFunc

	lop Loop
	dlg Delegate
	tbl group.Table
	log liblog.FuncLog

	que []message.Message
	wkr chan struct{}
	stp chan struct{}
	mid uint32
	wtr map[uint32]*wtr

	wsq WSRequest
	wsr WSResponse
	tls *tls.ConnectionState
}

func (o *sck) Kind() Kind {
	return o.knd
}

func (o *sck) State() State {
	o.m.Lock()
	defer o.m.Unlock()

	return o.s
}

func (o *sck) IsConnected() bool {
	return o.State() == StateConnected
}

func (o *sck) Target() string {
	if o.hst == "" {
		return ""
	}
	return net.JoinHostPort(o.hst, fmt.Sprintf("%d", o.prt))
}

func (o *sck) LocalAddr() net.Addr {
	o.m.Lock()
	defer o.m.Unlock()

	if o.cnn != nil {
		return o.cnn.LocalAddr()
	}
	return nil
}

func (o *sck) RemoteAddr() net.Addr {
	o.m.Lock()
	defer o.m.Unlock()

	if o.cnn != nil {
		return o.cnn.RemoteAddr()
	}
	return nil
}

func (o *sck) Connect(ctx context.Context) liberr.Error {
	if o.dlr == nil {
		return ErrorParamInvalid.Error(nil)
	}

	if o.dev != "" {
		if _, err := net.InterfaceByName(o.dev); err != nil {
			return ErrorParamInvalid.Error(err)
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}

	o.m.Lock()

	if o.s != StateDisconnected {
		o.m.Unlock()
		return ErrorAlready.Error(nil)
	}

	o.s = StateConnecting
	o.epo++
	epo := o.epo

	var (
		dtx context.Context
		cnl context.CancelFunc
	)

	if _, has := ctx.Deadline(); !has && o.cto > 0 {
		dtx, cnl = context.WithTimeout(ctx, o.cto)
	} else {
		dtx, cnl = context.WithCancel(ctx)
	}

	o.cnl = cnl
	o.m.Unlock()

	o.logDebug("%s socket connecting to %s", o.knd, o.Target())

	go o.dial(dtx, epo)

	return nil
}

func (o *sck) dial(ctx context.Context, epo uint64) {
	cnn, wsr, err := o.dlr.Dial(ctx, func() {
		o.m.Lock()
		if o.epo == epo && o.s == StateConnecting {
			o.s = StateHandshaking
		}
		o.m.Unlock()
	})

	o.lop.Post(func() {
		o.dialDone(ctx, epo, cnn, wsr, err)
	})
}

// dialDone runs on the loop.
func (o *sck) dialDone(ctx context.Context, epo uint64, cnn Conn, wsr *WSResponse, err liberr.Error) {
	o.m.Lock()

	if o.epo != epo || (o.s != StateConnecting && o.s != StateHandshaking) {
		// attempt cancelled meanwhile, Disconnect already reported it
		o.m.Unlock()
		if cnn != nil {
			_ = cnn.Close()
		}
		return
	}

	if err != nil {
		o.s = StateDisconnected
		cnl := o.cnl
		o.cnl = nil
		o.epo++
		o.m.Unlock()

		if cnl != nil {
			cnl()
		}

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = ErrorConnectTimeout.Error(ctx.Err())
		}

		o.logDebug("%s socket connect to %s failed: %v", o.knd, o.Target(), err)
		o.finalize(err)
		return
	}

	o.m.Unlock()
	o.attach(epo, cnn, wsr)
}

// attach runs on the loop: transition into connected, start the pumps,
// fire OnConnect, then begin dispatching reads.
func (o *sck) attach(epo uint64, cnn Conn, wsr *WSResponse) {
	o.m.Lock()

	if o.epo != epo {
		o.m.Unlock()
		_ = cnn.Close()
		return
	}

	o.s = StateConnected
	o.cnn = cnn
	cnl := o.cnl
	o.cnl = nil
	o.tls = cnn.TLS()
	o.que = nil
	o.wkr = make(chan struct{}, 1)
	o.stp = make(chan struct{})

	if wsr != nil {
		o.wsr = *wsr
	}

	wkr, stp := o.wkr, o.stp
	o.m.Unlock()

	if cnl != nil {
		cnl()
	}

	if o.tls != nil {
		o.logInfo("%s socket %s negotiated %s", o.knd, o.Target(), tls.VersionName(o.tls.Version))
	}

	go o.writer(epo, cnn, wkr, stp)

	o.fireConnect()

	go o.reader(epo, cnn, stp)
}

func (o *sck) Disconnect() liberr.Error {
	o.m.Lock()

	switch o.s {
	case StateDisconnected:
		o.m.Unlock()
		return ErrorAlready.Error(nil)

	case StateConnecting, StateHandshaking:
		cnl := o.cnl
		o.cnl = nil
		o.s = StateDisconnected
		o.epo++
		o.m.Unlock()

		if cnl != nil {
			cnl()
		}

		o.lop.Post(func() {
			o.finalize(nil)
		})
		return nil

	case StateConnected:
		o.s = StateDisconnecting
		epo := o.epo
		o.m.Unlock()

		o.lop.Post(func() {
			o.graceful(epo)
		})
		return nil

	default:
		// disconnecting
		o.m.Unlock()
		return ErrorAlready.Error(nil)
	}
}

// graceful runs on the loop: shut the write side down then complete the
// close.
func (o *sck) graceful(epo uint64) {
	o.m.Lock()
	cnn := o.cnn
	ok := o.epo == epo && o.s == StateDisconnecting
	o.m.Unlock()

	if !ok {
		return
	}

	if cnn != nil {
		_ = cnn.CloseWrite()
	}

	o.teardown(epo, nil)
}

// teardown runs on the loop: single point leaving a connected epoch. It
// fires OnDisconnect exactly once for the epoch.
func (o *sck) teardown(epo uint64, reason liberr.Error) {
	o.m.Lock()

	if o.epo != epo || o.s == StateDisconnected {
		o.m.Unlock()
		return
	}

	cnn := o.cnn
	o.cnn = nil
	o.tls = nil
	o.cnl = nil
	o.s = StateDisconnected
	o.epo++
	o.que = nil

	if o.stp != nil {
		close(o.stp)
		o.stp = nil
	}
	o.wkr = nil

	wtrs := o.wtr
	o.wtr = make(map[uint32]*wtr)

	o.m.Unlock()

	if cnn != nil {
		_ = cnn.Close()
	}

	werr := reason
	if werr == nil {
		werr = ErrorNotConnected.Error(nil)
	}

	for _, w := range wtrs {
		w.complete(o, message.Response{}, werr)
	}

	o.finalize(reason)
}

// finalize drops group membership, reports the disconnect and, for
// accepted sockets, releases the record from its delegate.
func (o *sck) finalize(reason liberr.Error) {
	o.tbl.LeaveAll(o)

	o.logDebug("%s socket %s disconnected: %v", o.knd, o.Target(), reason)

	if h := o.handler(); h != nil {
		h.OnDisconnect(o, reason)
	}

	if o.dlr == nil && o.dlg != nil {
		o.dlg.Release(o)
	}
}

func (o *sck) fireConnect() {
	o.logDebug("%s socket %s connected", o.knd, o.Target())

	if h := o.handler(); h != nil {
		h.OnConnect(o)
	}
}

func (o *sck) handler() Handler {
	if o.dlg == nil {
		return nil
	}
	return o.dlg.Handler()
}

// reader pumps inbound chunks through a framer and posts whole messages to
// the loop. It owns the inbound side of one epoch.
func (o *sck) reader(epo uint64, cnn Conn, stp <-chan struct{}) {
	fra := message.NewFramer()

	for {
		p, err := cnn.Recv()

		if len(p) > 0 {
			msgs, e := fra.Feed(p)

			for _, m := range msgs {
				msg := m
				o.lop.Post(func() {
					o.dispatch(epo, msg)
				})
			}

			if e != nil {
				o.lop.Post(func() {
					o.teardown(epo, e)
				})
				return
			}
		}

		if err != nil {
			select {
			case <-stp:
				// local close already tearing down
			default:
				re := readError(err)
				o.lop.Post(func() {
					o.teardown(epo, re)
				})
			}
			return
		}
	}
}

// writer drains the send queue in enqueue order. It owns the outbound side
// of one epoch.
func (o *sck) writer(epo uint64, cnn Conn, wkr <-chan struct{}, stp <-chan struct{}) {
	fra := message.NewFramer()

	for {
		select {
		case <-stp:
			return
		case <-wkr:
		}

		for {
			o.m.Lock()

			if o.epo != epo || len(o.que) == 0 {
				o.m.Unlock()
				break
			}

			m := o.que[0]
			o.que = o.que[1:]
			o.m.Unlock()

			p, e := fra.Marshal(m)
			if e != nil {
				o.logError("%s socket %s drops frame: %v", o.knd, o.Target(), e)
				continue
			}

			if err := cnn.Send(p); err != nil {
				select {
				case <-stp:
				default:
					we := readError(err)
					o.lop.Post(func() {
						o.teardown(epo, we)
					})
				}
				return
			}
		}
	}
}

func (o *sck) logDebug(msg string, args ...interface{}) {
	if o.log == nil {
		return
	}
	if l := o.log(); l != nil {
		l.Debug(fmt.Sprintf(msg, args...), nil)
	}
}

func (o *sck) logInfo(msg string, args ...interface{}) {
	if o.log == nil {
		return
	}
	if l := o.log(); l != nil {
		l.Info(fmt.Sprintf(msg, args...), nil)
	}
}

func (o *sck) logError(msg string, args ...interface{}) {
	if o.log == nil {
		return
	}
	if l := o.log(); l != nil {
		l.Error(fmt.Sprintf(msg, args...), nil)
	}
}

// WSRequestContext implements Upgraded.
func (o *sck) WSRequestContext() WSRequest {
	o.m.Lock()
	defer o.m.Unlock()

	return o.wsq
}

// SetWSRequestContext implements Upgraded.
func (o *sck) SetWSRequestContext(r WSRequest) {
	o.m.Lock()
	defer o.m.Unlock()

	o.wsq = r
}

// WSResponseContext implements Upgraded.
func (o *sck) WSResponseContext() WSResponse {
	o.m.Lock()
	defer o.m.Unlock()

	return o.wsr
}

// SetWSResponseContext implements Upgraded.
func (o *sck) SetWSResponseContext(r WSResponse) {
	o.m.Lock()
	defer o.m.Unlock()

	o.wsr = r
}

// VerifyResult implements Secured.
func (o *sck) VerifyResult() liberr.Error {
	o.m.Lock()
	defer o.m.Unlock()

	if o.s != StateConnected {
		return ErrorNotConnected.Error(nil)
	}

	if o.tls == nil {
		return ErrorNotSecured.Error(nil)
	}

	if len(o.tls.VerifiedChains) > 0 {
		return nil
	}

	return ErrorTLSVerify.Error(nil)
}

// PresentPeerCertificate implements Secured.
func (o *sck) PresentPeerCertificate() bool {
	o.m.Lock()
	defer o.m.Unlock()

	if o.s != StateConnected || o.tls == nil {
		return false
	}

	return len(o.tls.PeerCertificates) > 0
}

// PeerCertificate implements Secured.
func (o *sck) PeerCertificate() (*x509.Certificate, liberr.Error) {
	o.m.Lock()
	defer o.m.Unlock()

	if o.s != StateConnected || o.tls == nil || len(o.tls.PeerCertificates) == 0 {
		return nil, ErrorTLSNoPeerCert.Error(nil)
	}

	return o.tls.PeerCertificates[0], nil
}
