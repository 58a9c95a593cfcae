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

package tcp_test

import (
	"context"
	"sync/atomic"
	"time"

	liberr "github.com/nabbar/golib/errors"

	libsck "github.com/nabbar/duplexrpc/socket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TCP Socket Connection", func() {
	Context("toward a port without listener", func() {
		It("should report a refused disconnect and no connect", func() {
			ch := newTestHandler()
			cs := createSocket(ch, "127.0.0.1", getFreePort())

			Expect(cs.Connect(globalCtx)).To(Succeed())

			e := waitDisconnect(ch)
			Expect(e.err).ToNot(BeNil())
			Expect(e.err.IsCode(libsck.ErrorConnectRefused)).To(BeTrue())
			Expect(ch.conn).ToNot(Receive())
			Expect(cs.State()).To(Equal(libsck.StateDisconnected))
		})
	})

	Context("toward an unroutable peer with a tiny timeout", func() {
		It("should report a timeout disconnect", func() {
			ch := newTestHandler()
			cs := createSocket(ch, "10.255.255.1", 65000)

			ctx, cnl := context.WithTimeout(globalCtx, 50*time.Millisecond)
			defer cnl()

			Expect(cs.Connect(ctx)).To(Succeed())

			e := waitDisconnect(ch)
			Expect(e.err).ToNot(BeNil())
			Expect(e.err.IsCode(libsck.ErrorConnectTimeout)).To(BeTrue())
			Expect(ch.conn).ToNot(Receive())
		})
	})

	Context("with a running server", func() {
		It("should connect, then refuse a second connect", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			Expect(waitConnect(ch)).To(Equal(cs))
			Expect(cs.IsConnected()).To(BeTrue())

			err := cs.Connect(globalCtx)
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libsck.ErrorAlready)).To(BeTrue())
			Expect(cs.IsConnected()).To(BeTrue())
		})

		It("should refuse disconnect when already disconnected", func() {
			ch := newTestHandler()
			cs := createSocket(ch, "127.0.0.1", getFreePort())

			err := cs.Disconnect()
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libsck.ErrorAlready)).To(BeTrue())
			Expect(ch.disc).ToNot(Receive())
		})

		It("should report both sides of a server-initiated disconnect", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)
			ss := waitConnect(sh)

			Expect(ss.Disconnect()).To(Succeed())

			se := waitDisconnect(sh)
			Expect(se.err).To(BeNil())

			ce := waitDisconnect(ch)
			Expect(ce.err).ToNot(BeNil())
			Expect(ce.err.IsCode(libsck.ErrorClosedByPeer)).To(BeTrue())
		})

		It("should allow disconnect from inside OnConnect", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			ch.connHook = func(s libsck.Socket) {
				Expect(s.Disconnect()).To(Succeed())
			}
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())

			ce := waitDisconnect(ch)
			Expect(ce.err).To(BeNil())

			se := waitDisconnect(sh)
			Expect(se.err).ToNot(BeNil())
			Expect(se.err.IsCode(libsck.ErrorClosedByPeer)).To(BeTrue())
		})

		It("should keep the handle identity across a reconnect from OnDisconnect", func() {
			sh := newTestHandler()
			sh.connHook = func(s libsck.Socket) {
				// kick the client out once
				go func() {
					time.Sleep(50 * time.Millisecond)
					_ = s.Disconnect()
				}()
			}
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			var again atomic.Bool

			ch := newTestHandler()
			ch.discHook = func(s libsck.Socket, _ liberr.Error) {
				if again.CompareAndSwap(false, true) {
					Expect(s.Connect(globalCtx)).To(Succeed())
				}
			}
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())

			first := waitConnect(ch)
			Expect(first).To(Equal(cs))

			waitDisconnect(ch)

			second := waitConnect(ch)
			Expect(second).To(Equal(first))
		})

		It("should cancel an in-flight connect with a single disconnect", func() {
			ch := newTestHandler()
			cs := createSocket(ch, "10.255.255.1", 65000)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			Expect(cs.Disconnect()).To(Succeed())

			e := waitDisconnect(ch)
			Expect(e.err).To(BeNil())

			Consistently(ch.disc, 200*time.Millisecond).ShouldNot(Receive())
			Expect(ch.conn).ToNot(Receive())
		})
	})
})
