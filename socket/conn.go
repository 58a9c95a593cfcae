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
	"io"
	"net"

	"github.com/gorilla/websocket"
	liberr "github.com/nabbar/golib/errors"
)

// Conn is an established transport connection as seen by the socket core:
// a source of byte chunks and a sink of whole buffers. Stream transports
// deliver arbitrary chunks; WebSocket transports deliver one frame payload
// per Recv.
type Conn interface {
	// Recv blocks for the next chunk. It returns io.EOF on orderly close.
	Recv() ([]byte, error)

	// Send writes the whole buffer.
	Send(p []byte) error

	// CloseWrite shuts down the write side for a graceful close.
	CloseWrite() error

	// Close tears the connection down.
	Close() error

	// LocalAddr returns the local address.
	LocalAddr() net.Addr

	// RemoteAddr returns the peer address.
	RemoteAddr() net.Addr

	// TLS returns the TLS connection state, or nil on plaintext transports.
	TLS() *tls.ConnectionState
}

// Dialer drives one transport's full connect sequence: resolve, connect,
// and any TLS or WebSocket handshake, including the silent one-shot Digest
// retry. Implementations are bound to a single socket and keep per-socket
// state (such as the authentication context) across attempts.
//
// onHandshake is invoked each time the transport connect of an attempt
// succeeded and a post-connect negotiation begins (twice when a Digest
// challenge is retried); plain TCP never calls it. The returned
// response is the captured upgrade response for WebSocket transports, nil
// otherwise.
type Dialer interface {
	Dial(ctx context.Context, onHandshake func()) (Conn, *WSResponse, liberr.Error)
}

// NewStreamConn wraps a byte-stream connection (TCP or TLS).
func NewStreamConn(c net.Conn) Conn {
	return &stc{c: c}
}

type stc struct {
	c net.Conn
	b [32 * 1024]byte
}

func (o *stc) Recv() ([]byte, error) {
	n, err := o.c.Read(o.b[:])
	if n > 0 {
		p := make([]byte, n)
		copy(p, o.b[:n])
		return p, err
	}
	return nil, err
}

func (o *stc) Send(p []byte) error {
	_, err := o.c.Write(p)
	return err
}

func (o *stc) CloseWrite() error {
	type closeWriter interface {
		CloseWrite() error
	}

	if cw, ok := o.c.(closeWriter); ok {
		return cw.CloseWrite()
	}

	return nil
}

func (o *stc) Close() error {
	return o.c.Close()
}

func (o *stc) LocalAddr() net.Addr {
	return o.c.LocalAddr()
}

func (o *stc) RemoteAddr() net.Addr {
	return o.c.RemoteAddr()
}

func (o *stc) TLS() *tls.ConnectionState {
	if tc, ok := o.c.(*tls.Conn); ok {
		s := tc.ConnectionState()
		return &s
	}
	return nil
}

// NewWebsocketConn wraps an upgraded WebSocket connection. Each binary
// frame carries a chunk of the RPC byte stream.
func NewWebsocketConn(c *websocket.Conn) Conn {
	return &wsc{c: c}
}

type wsc struct {
	c *websocket.Conn
}

func (o *wsc) Recv() ([]byte, error) {
	for {
		t, p, err := o.c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, err
		}
		if t == websocket.BinaryMessage {
			return p, nil
		}
		// ignore text and control payloads
	}
}

func (o *wsc) Send(p []byte) error {
	return o.c.WriteMessage(websocket.BinaryMessage, p)
}

func (o *wsc) CloseWrite() error {
	return o.c.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
}

func (o *wsc) Close() error {
	return o.c.Close()
}

func (o *wsc) LocalAddr() net.Addr {
	return o.c.LocalAddr()
}

func (o *wsc) RemoteAddr() net.Addr {
	return o.c.RemoteAddr()
}

func (o *wsc) TLS() *tls.ConnectionState {
	if tc, ok := o.c.UnderlyingConn().(*tls.Conn); ok {
		s := tc.ConnectionState()
		return &s
	}
	return nil
}
