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
	"fmt"
	"time"

	liberr "github.com/nabbar/golib/errors"

	libgrp "github.com/nabbar/duplexrpc/group"
	libmsg "github.com/nabbar/duplexrpc/message"
	libsck "github.com/nabbar/duplexrpc/socket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// echoServerHandler replies to every inbound request with its params.
func echoServerHandler() *testHandler {
	h := newTestHandler()
	h.msgHook = func(s libsck.Socket, m libmsg.Message) {
		if rq, ok := m.(libmsg.Request); ok {
			Expect(s.Response(rq.ID, nil, rq.Params)).To(Succeed())
		}
	}
	return h
}

var _ = Describe("TCP Socket Communication", func() {
	Context("request and response", func() {
		It("should complete the waiter with the echoed result", func() {
			sh := echoServerHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)

			done := make(chan libmsg.Response, 1)
			err := cs.Request("echo", "payload", 0, func(_ libsck.Socket, rsp libmsg.Response, e liberr.Error) {
				Expect(e).To(BeNil())
				done <- rsp
			})
			Expect(err).To(BeNil())

			var rsp libmsg.Response
			Eventually(done, 5*time.Second).Should(Receive(&rsp))
			Expect(rsp.Result).To(Equal("payload"))
		})

		It("should time out a request the peer never answers", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)

			done := make(chan liberr.Error, 1)
			err := cs.Request("void", nil, 50*time.Millisecond, func(_ libsck.Socket, _ libmsg.Response, e liberr.Error) {
				done <- e
			})
			Expect(err).To(BeNil())

			var e liberr.Error
			Eventually(done, 5*time.Second).Should(Receive(&e))
			Expect(e).ToNot(BeNil())
			Expect(e.IsCode(libsck.ErrorRequestTimeout)).To(BeTrue())
		})

		It("should complete pending waiters on disconnect", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)
			ss := waitConnect(sh)

			done := make(chan liberr.Error, 1)
			err := cs.Request("void", nil, time.Minute, func(_ libsck.Socket, _ libmsg.Response, e liberr.Error) {
				done <- e
			})
			Expect(err).To(BeNil())

			Expect(ss.Disconnect()).To(Succeed())

			var e liberr.Error
			Eventually(done, 5*time.Second).Should(Receive(&e))
			Expect(e).ToNot(BeNil())
		})
	})

	Context("notifications", func() {
		It("should deliver notifies in enqueue order", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)
			waitConnect(sh)

			const total = 20
			for i := 0; i < total; i++ {
				Expect(cs.Notify("seq", fmt.Sprintf("%03d", i))).To(Succeed())
			}

			for i := 0; i < total; i++ {
				var e messageEvent
				Eventually(sh.msgs, 5*time.Second).Should(Receive(&e))

				nt, ok := e.msg.(libmsg.Notify)
				Expect(ok).To(BeTrue())
				Expect(nt.Method).To(Equal("seq"))
				Expect(nt.Params).To(Equal(fmt.Sprintf("%03d", i)))
			}
		})

		It("should let the server notify the client symmetrically", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)
			ss := waitConnect(sh)

			Expect(ss.Notify("push", "from-server")).To(Succeed())

			var e messageEvent
			Eventually(ch.msgs, 5*time.Second).Should(Receive(&e))

			nt, ok := e.msg.(libmsg.Notify)
			Expect(ok).To(BeTrue())
			Expect(nt.Params).To(Equal("from-server"))
		})
	})

	Context("after disconnect", func() {
		It("should refuse sends and report already on disconnect", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)

			Expect(cs.Disconnect()).To(Succeed())
			waitDisconnect(ch)

			err := cs.Notify("late", nil)
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libsck.ErrorNotConnected)).To(BeTrue())

			err = cs.Disconnect()
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libsck.ErrorAlready)).To(BeTrue())
		})
	})

	Context("groups", func() {
		It("should broadcast to every member", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs1 := createSocket(ch, host, port)
			cs2 := createSocket(ch, host, port)

			Expect(cs1.Connect(globalCtx)).To(Succeed())
			Expect(cs2.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)
			waitConnect(ch)

			tbl := libgrp.New()
			Expect(tbl.Join("fanout", cs1)).To(Succeed())
			Expect(tbl.Join("fanout", cs2)).To(Succeed())

			Expect(tbl.BroadcastNotify("fanout", "tick", "now")).To(Succeed())

			for i := 0; i < 2; i++ {
				var e messageEvent
				Eventually(sh.msgs, 5*time.Second).Should(Receive(&e))

				nt, ok := e.msg.(libmsg.Notify)
				Expect(ok).To(BeTrue())
				Expect(nt.Method).To(Equal("tick"))
			}
		})

		It("should leave the default table when the socket disconnects", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)

			Expect(libgrp.Default().Join("room", cs)).To(Succeed())
			Expect(libgrp.Default().Names(cs)).To(ContainElement("room"))

			Expect(cs.Disconnect()).To(Succeed())
			waitDisconnect(ch)

			Expect(libgrp.Default().Names(cs)).To(BeEmpty())
		})
	})
})
