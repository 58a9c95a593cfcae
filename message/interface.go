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

// Package message defines the RPC frame model exchanged between peers and
// the Framer used by the socket runtime to cut a byte stream into whole
// frames.
//
// Three frame types exist on the wire, each encoded as a MessagePack array:
//   - Request:  [0, id, method, params]
//   - Response: [1, id, error, result]
//   - Notify:   [2, method, params]
//
// The socket runtime never inspects frame payloads: it only needs the two
// Framer operations (feed bytes / marshal one frame). Any implementation of
// Framer can replace the MessagePack one returned by NewFramer.
package message

import (
	liberr "github.com/nabbar/golib/errors"
)

// Type identifies the kind of a frame.
type Type uint8

const (
	// TypeRequest is a frame expecting a correlated Response.
	TypeRequest Type = iota
	// TypeResponse is the completion of a prior Request, matched by ID.
	TypeResponse
	// TypeNotify is a one-way frame without correlation.
	TypeNotify
)

// String returns the lowercase name of the frame type.
func (t Type) String() string {
	switch t {
	case TypeRequest:
		return "request"
	case TypeResponse:
		return "response"
	case TypeNotify:
		return "notify"
	}
	return "unknown"
}

// Message is one whole RPC frame.
type Message interface {
	// Type returns the frame kind.
	Type() Type
}

// Framer cuts an incoming byte stream into whole frames and serializes one
// frame to a contiguous buffer.
//
// A Framer instance buffers partial input between Feed calls and is bound to
// a single connection: it must not be shared between sockets. Implementations
// are not required to be safe for concurrent use.
type Framer interface {
	// Feed appends p to the pending input and returns every whole frame now
	// decodable, in stream order. A partial trailing frame stays buffered for
	// the next call. Feed returns an error when the pending input cannot be a
	// valid frame; the connection should then be torn down.
	Feed(p []byte) ([]Message, liberr.Error)

	// Marshal serializes one frame to a contiguous buffer.
	Marshal(m Message) ([]byte, liberr.Error)

	// Reset drops any pending partial input.
	Reset()
}

// NewFramer returns a Framer over the MessagePack encoding.
func NewFramer() Framer {
	return newMsgpackFramer()
}
