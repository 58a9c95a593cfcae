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

// Package socket implements the connection runtime shared by every
// transport: the socket state machine, the event loop that serializes
// handler callbacks, the ordered send queue, and the request/response
// correlation table.
//
// A Socket is a handle with shared ownership of one underlying connection
// record. Handles compare equal with == when they refer to the same record,
// and equality survives reconnects: calling Connect again on a handle after
// a disconnect starts a new epoch on the same identity.
//
// All handler callbacks (OnConnect, OnDisconnect, OnMessage, request
// completions) run on the goroutine of the Loop the socket is bound to.
// Public operations are safe from any goroutine, including from inside a
// callback: re-entrant calls have their effects deferred until the current
// callback returns.
package socket

import (
	"context"
	"crypto/x509"
	"net"
	"time"

	liberr "github.com/nabbar/golib/errors"

	"github.com/nabbar/duplexrpc/message"
)

// Kind is the wire transport of a socket.
type Kind uint8

const (
	// KindTCP is plaintext TCP.
	KindTCP Kind = iota
	// KindSSL is TLS over TCP.
	KindSSL
	// KindWS is WebSocket over plaintext TCP.
	KindWS
	// KindWSS is WebSocket over TLS.
	KindWSS
)

// String returns the lowercase transport name.
func (k Kind) String() string {
	switch k {
	case KindTCP:
		return "tcp"
	case KindSSL:
		return "ssl"
	case KindWS:
		return "ws"
	case KindWSS:
		return "wss"
	}
	return "unknown"
}

// Handler receives connection lifecycle and inbound message callbacks.
//
// The handler must outlive every socket it is registered with; the runtime
// keeps a non-owning reference. All callbacks run on the loop goroutine of
// the socket and may call back into the runtime.
type Handler interface {
	// OnConnect fires exactly once per successful transition into the
	// connected state. The connection is fully usable: sends issued from
	// inside the callback are flushed in order, and reads begin dispatching
	// OnMessage after the callback returns.
	OnConnect(s Socket)

	// OnDisconnect fires exactly once per connected epoch, or once per
	// failed connect attempt. The reason is nil for a locally requested
	// graceful close. The handle stays valid: Connect may be called again
	// to start a new epoch with the same identity. Group memberships have
	// already been dropped when OnDisconnect fires.
	OnDisconnect(s Socket, reason liberr.Error)

	// OnMessage delivers inbound requests and notifications. Responses are
	// routed to their request waiter; a response without a waiter is
	// dropped.
	OnMessage(s Socket, m message.Message)
}

// RequestCallback is the completion of a Request: exactly one of a matched
// response, a timeout, or the disconnect reason (ErrorNotConnected when the
// disconnect reason is nil). It runs on the loop goroutine.
type RequestCallback func(s Socket, rsp message.Response, err liberr.Error)

// Socket is the public handle of one connection record.
//
// Handles are small values safe to copy across goroutines, to store, and to
// keep past OnDisconnect. Two handles are equal (==) iff they refer to the
// same record.
type Socket interface {
	// Kind returns the wire transport.
	Kind() Kind

	// State returns the current lifecycle state.
	State() State

	// IsConnected reports State() == StateConnected.
	IsConnected() bool

	// Connect starts a connect attempt. It returns ErrorAlready when the
	// socket is not disconnected, ErrorParamInvalid on an accepted
	// (server-side) socket or a bind device that names no local interface,
	// and nil when the attempt is accepted: completion is reported through
	// OnConnect or OnDisconnect. A failure to bind to the device during the
	// dial is reported through OnDisconnect. The ctx deadline bounds the
	// attempt; without one the configured connect timeout applies.
	Connect(ctx context.Context) liberr.Error

	// Disconnect closes the connection. It returns ErrorAlready when
	// already disconnected. From a connecting or handshaking state it
	// cancels the in-flight attempt; a single OnDisconnect with a nil
	// reason is delivered.
	Disconnect() liberr.Error

	// Send enqueues one frame in order. A Request frame with a zero ID is
	// assigned the next id without registering a waiter (fire-and-forget,
	// as used by group broadcast). Returns ErrorNotConnected when the
	// socket is not connected; nothing is buffered across epochs.
	Send(m message.Message) liberr.Error

	// Notify enqueues a notification frame.
	Notify(method string, params interface{}) liberr.Error

	// Request enqueues a request frame and registers a waiter completed by
	// the matching response, the timeout, or the epoch's disconnect reason
	// (ErrorNotConnected when that reason is nil). A non-positive timeout uses the configured request timeout. done may
	// be nil.
	Request(method string, params interface{}, timeout time.Duration, done RequestCallback) liberr.Error

	// Response enqueues a response frame for the given inbound request id.
	Response(id uint32, errObj interface{}, result interface{}) liberr.Error

	// LocalAddr returns the local address of the live connection, or nil.
	LocalAddr() net.Addr

	// RemoteAddr returns the peer address of the live connection, or nil.
	RemoteAddr() net.Addr

	// Target returns the configured peer endpoint as host:port. Empty for
	// accepted sockets.
	Target() string
}

// Secured is the extra surface of SSL and WSS sockets. Every socket handle
// implements it; on a plaintext transport VerifyResult returns
// ErrorNotSecured while connected and PresentPeerCertificate is false.
type Secured interface {
	// VerifyResult returns nil when the peer chain verified during the
	// handshake, ErrorNotConnected outside the connected state, and the
	// verification failure otherwise.
	VerifyResult() liberr.Error

	// PresentPeerCertificate reports whether the connected peer presented a
	// certificate. False outside the connected state.
	PresentPeerCertificate() bool

	// PeerCertificate returns the peer leaf certificate, or an error when
	// the peer certificate does not exist.
	PeerCertificate() (*x509.Certificate, liberr.Error)
}

// Upgraded is the extra surface of WS and WSS sockets. Every socket handle
// implements it; only WS and WSS connects use or capture these contexts.
type Upgraded interface {
	// WSRequestContext returns the upgrade request context of the socket.
	WSRequestContext() WSRequest

	// SetWSRequestContext replaces the upgrade request context used by the
	// next connect attempt.
	SetWSRequestContext(r WSRequest)

	// WSResponseContext returns the last captured upgrade response.
	WSResponseContext() WSResponse

	// SetWSResponseContext replaces the stored upgrade response. The next
	// completed handshake overwrites it.
	SetWSResponseContext(r WSResponse)
}
