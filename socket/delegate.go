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
	"sync"
)

// Delegate holds the non-owning reference to the application handler and
// the set of live sockets owned by one client or server. The handler must
// outlive every socket registered here.
type Delegate interface {
	// Handler returns the application handler.
	Handler() Handler

	// Retain registers a socket with the delegate.
	Retain(s Socket)

	// Release drops a socket from the delegate.
	Release(s Socket)

	// Sockets returns a snapshot of the registered sockets.
	Sockets() []Socket
}

// NewDelegate returns a Delegate for the given handler.
func NewDelegate(h Handler) Delegate {
	return &dlg{
		h: h,
		s: make(map[Socket]struct{}),
	}
}

type dlg struct {
	m sync.Mutex
	h Handler
	s map[Socket]struct{}
}

func (o *dlg) Handler() Handler {
	return o.h
}

func (o *dlg) Retain(s Socket) {
	if s == nil {
		return
	}

	o.m.Lock()
	defer o.m.Unlock()

	o.s[s] = struct{}{}
}

func (o *dlg) Release(s Socket) {
	if s == nil {
		return
	}

	o.m.Lock()
	defer o.m.Unlock()

	delete(o.s, s)
}

func (o *dlg) Sockets() []Socket {
	o.m.Lock()
	defer o.m.Unlock()

	res := make([]Socket, 0, len(o.s))
	for s := range o.s {
		res = append(res, s)
	}

	return res
}
