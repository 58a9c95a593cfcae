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
	"testing"
	"time"

	libsck "github.com/nabbar/duplexrpc/socket"
)

func TestLoopRunsPostedItems(t *testing.T) {
	l := libsck.NewLoop()
	defer l.Stop()

	done := make(chan int, 3)

	for i := 0; i < 3; i++ {
		n := i
		l.Post(func() { done <- n })
	}

	for i := 0; i < 3; i++ {
		select {
		case n := <-done:
			if n != i {
				t.Fatalf("expected item %d, got %d", i, n)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for posted item")
		}
	}
}

func TestLoopReentrantPostDeferred(t *testing.T) {
	l := libsck.NewLoop()
	defer l.Stop()

	order := make(chan string, 2)
	done := make(chan struct{})

	l.Post(func() {
		l.Post(func() {
			order <- "inner"
			close(done)
		})
		order <- "outer"
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for re-entrant item")
	}

	if first := <-order; first != "outer" {
		t.Fatalf("re-entrant item must run after the current one, first was %q", first)
	}
}

func TestLoopSerializesItems(t *testing.T) {
	l := libsck.NewLoop()
	defer l.Stop()

	var cnt, max int
	done := make(chan struct{})

	for i := 0; i < 50; i++ {
		last := i == 49
		l.Post(func() {
			cnt++
			if cnt > max {
				max = cnt
			}
			time.Sleep(time.Millisecond)
			cnt--
			if last {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for items")
	}

	if max != 1 {
		t.Fatalf("loop items must never overlap, saw %d concurrent", max)
	}
}

func TestLoopPostAfterStop(t *testing.T) {
	l := libsck.NewLoop()
	l.Stop()

	// posting to a stopped loop must not block nor panic
	l.Post(func() {})
}

func TestDefaultLoopShared(t *testing.T) {
	if libsck.DefaultLoop() != libsck.DefaultLoop() {
		t.Fatal("default loop must be process-wide")
	}
}

func TestLoopNilPost(t *testing.T) {
	l := libsck.NewLoop()
	defer l.Stop()

	l.Post(nil)

	done := make(chan struct{})
	l.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop must survive a nil post")
	}
}
