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
	"time"

	libsck "github.com/nabbar/duplexrpc/socket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TCP Server Lifecycle", func() {
	Context("start and stop", func() {
		It("should expose the bound listener while running", func() {
			sh := newTestHandler()
			srv, adr := startServer(sh)

			Expect(srv.IsRunning()).To(BeTrue())

			_, got, err := srv.Listener()
			Expect(err).To(BeNil())
			Expect(got).To(Equal(adr))

			Expect(srv.Shutdown(globalCtx)).To(Succeed())
			Eventually(srv.IsRunning, 5*time.Second).Should(BeFalse())
		})

		It("should refuse a second shutdown", func() {
			sh := newTestHandler()
			srv, _ := startServer(sh)

			Expect(srv.Shutdown(globalCtx)).To(Succeed())

			err := srv.Shutdown(globalCtx)
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libsck.ErrorAlready)).To(BeTrue())
		})
	})

	Context("accepting connections", func() {
		It("should register inbound sockets and fire OnConnect", func() {
			sh := newTestHandler()
			srv, adr := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			cs := dialClient(adr)

			ss := waitConnect(sh)
			Expect(ss.IsConnected()).To(BeTrue())
			Expect(ss.Kind()).To(Equal(libsck.KindTCP))

			Eventually(func() int {
				return len(srv.Sockets())
			}, 5*time.Second).Should(Equal(1))

			_ = cs.Disconnect()
		})

		It("should disconnect every inbound socket on shutdown", func() {
			sh := newTestHandler()
			srv, adr := startServer(sh)

			cs := dialClient(adr)

			ss := waitConnect(sh)
			Expect(ss.IsConnected()).To(BeTrue())

			Expect(srv.Shutdown(globalCtx)).To(Succeed())

			se := waitDisconnect(sh)
			Expect(se.err).To(BeNil())

			Eventually(func() int {
				return len(srv.Sockets())
			}, 5*time.Second).Should(Equal(0))

			_ = cs.Disconnect()
		})

		It("should accept several concurrent peers", func() {
			sh := newTestHandler()
			srv, adr := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			c1 := dialClient(adr)
			c2 := dialClient(adr)
			c3 := dialClient(adr)

			for i := 0; i < 3; i++ {
				waitConnect(sh)
			}

			Eventually(func() int {
				return len(srv.Sockets())
			}, 5*time.Second).Should(Equal(3))

			_ = c1.Disconnect()
			_ = c2.Disconnect()
			_ = c3.Disconnect()
		})
	})
})
