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

package socket_test

import (
	"context"
	"io"
	"net"
	"syscall"
	"testing"

	liberr "github.com/nabbar/golib/errors"

	libsck "github.com/nabbar/duplexrpc/socket"
)

func TestStateString(t *testing.T) {
	tests := map[libsck.State]string{
		libsck.StateDisconnected:  "disconnected",
		libsck.StateConnecting:    "connecting",
		libsck.StateHandshaking:   "handshaking",
		libsck.StateConnected:     "connected",
		libsck.StateDisconnecting: "disconnecting",
		libsck.State(99):          "unknown",
	}

	for s, exp := range tests {
		if got := s.String(); got != exp {
			t.Errorf("state %d: expected %q, got %q", s, exp, got)
		}
	}
}

func TestKindString(t *testing.T) {
	tests := map[libsck.Kind]string{
		libsck.KindTCP:  "tcp",
		libsck.KindSSL:  "ssl",
		libsck.KindWS:   "ws",
		libsck.KindWSS:  "wss",
		libsck.Kind(99): "unknown",
	}

	for k, exp := range tests {
		if got := k.String(); got != exp {
			t.Errorf("kind %d: expected %q, got %q", k, exp, got)
		}
	}
}

func TestNetErrorMapping(t *testing.T) {
	tests := []struct {
		nam string
		err error
		cod liberr.CodeError
	}{
		{
			nam: "refused",
			err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
			cod: libsck.ErrorConnectRefused,
		},
		{
			nam: "deadline",
			err: context.DeadlineExceeded,
			cod: libsck.ErrorConnectTimeout,
		},
		{
			nam: "eof",
			err: io.EOF,
			cod: libsck.ErrorClosedByPeer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.nam, func(t *testing.T) {
			e := libsck.NetError(context.Background(), tt.err)
			if e == nil {
				t.Fatal("expected an error")
			}
			if !e.IsCode(tt.cod) {
				t.Fatalf("expected code %d, got %d", tt.cod, e.GetCode())
			}
		})
	}

	if libsck.NetError(context.Background(), nil) != nil {
		t.Fatal("nil error must map to nil")
	}
}

func TestHeadersLookup(t *testing.T) {
	h := libsck.Headers{"X-Token": "abc"}

	if h.Get("x-token") != "abc" {
		t.Fatal("lookup must be case-insensitive")
	}
	if h.Get("X-Token") != "abc" {
		t.Fatal("exact lookup must match")
	}
	if h.Get("missing") != "" {
		t.Fatal("missing key must yield empty")
	}

	c := h.Clone()
	c["X-Token"] = "other"
	if h.Get("X-Token") != "abc" {
		t.Fatal("clone must not alias the original")
	}
}

func TestWSRequestURI(t *testing.T) {
	tests := []struct {
		nam string
		req libsck.WSRequest
		exp string
	}{
		{nam: "bare path", req: libsck.WSRequest{Path: "rpc"}, exp: "/rpc"},
		{nam: "rooted path", req: libsck.WSRequest{Path: "/rpc"}, exp: "/rpc"},
		{nam: "query", req: libsck.WSRequest{Path: "rpc", Query: "v=1"}, exp: "/rpc?v=1"},
		{nam: "query marked", req: libsck.WSRequest{Path: "/rpc", Query: "?v=1"}, exp: "/rpc?v=1"},
		{nam: "empty", req: libsck.WSRequest{}, exp: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.nam, func(t *testing.T) {
			if got := tt.req.URI(); got != tt.exp {
				t.Fatalf("expected %q, got %q", tt.exp, got)
			}
		})
	}
}
