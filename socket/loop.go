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

// Loop is a single-goroutine event loop. Every socket is bound to exactly
// one Loop for its lifetime; all of its handler callbacks run on that
// goroutine, serialized. Post is safe from any goroutine, including the
// loop goroutine itself: an item posted from inside a running item executes
// after the current item returns.
type Loop interface {
	// Post enqueues f for execution on the loop goroutine.
	Post(f func())

	// Stop terminates the loop goroutine. Pending items are dropped. The
	// default loop must not be stopped.
	Stop()
}

// NewLoop starts a new event loop.
func NewLoop() Loop {
	l := &lop{
		w: make(chan struct{}, 1),
		d: make(chan struct{}),
	}

	go l.run()

	return l
}

var (
	dflLoop  Loop
	dflOnce  sync.Once
)

// DefaultLoop returns the lazily started process-wide loop.
func DefaultLoop() Loop {
	dflOnce.Do(func() {
		dflLoop = NewLoop()
	})
	return dflLoop
}

type lop struct {
	m sync.Mutex
	q []func()
	w chan struct{}
	d chan struct{}
	o sync.Once
}

func (o *lop) Post(f func()) {
	if f == nil {
		return
	}

	o.m.Lock()
	o.q = append(o.q, f)
	o.m.Unlock()

	select {
	case o.w <- struct{}{}:
	default:
	}
}

func (o *lop) Stop() {
	o.o.Do(func() {
		close(o.d)
	})
}

func (o *lop) run() {
	for {
		select {
		case <-o.d:
			return
		case <-o.w:
			o.drain()
		}
	}
}

func (o *lop) drain() {
	for {
		o.m.Lock()
		if len(o.q) == 0 {
			o.m.Unlock()
			return
		}
		f := o.q[0]
		o.q = o.q[1:]
		o.m.Unlock()

		select {
		case <-o.d:
			return
		default:
			f()
		}
	}
}
