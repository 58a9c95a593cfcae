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

package ws_test

import (
	"net/http"
	"time"

	libaut "github.com/nabbar/duplexrpc/httpauth"
	libmsg "github.com/nabbar/duplexrpc/message"
	libsck "github.com/nabbar/duplexrpc/socket"
	sckcfg "github.com/nabbar/duplexrpc/socket/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WS Socket Upgrade", func() {
	Context("without authentication", func() {
		It("should upgrade and exchange frames", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh, noAuth)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port, libsck.WSRequest{Path: "rpc"})

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)
			ss := waitConnect(sh)

			Expect(cs.Notify("hello", "ws")).To(Succeed())

			var e messageEvent
			Eventually(sh.msgs, 5*time.Second).Should(Receive(&e))

			nt, ok := e.msg.(libmsg.Notify)
			Expect(ok).To(BeTrue())
			Expect(nt.Params).To(Equal("ws"))

			Expect(ss.Notify("hello", "back")).To(Succeed())
			Eventually(ch.msgs, 5*time.Second).Should(Receive())
		})

		It("should capture the upgrade response context", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh, noAuth)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port, libsck.WSRequest{Path: "/rpc"})

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)

			up, ok := cs.(libsck.Upgraded)
			Expect(ok).To(BeTrue())

			rsp := up.WSResponseContext()
			Expect(rsp.Code).To(Equal(http.StatusSwitchingProtocols))
			Expect(rsp.Headers.Get("upgrade")).To(Equal("websocket"))
		})

		It("should fail the upgrade on a wrong path", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh, noAuth)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port, libsck.WSRequest{Path: "/nope"})

			Expect(cs.Connect(globalCtx)).To(Succeed())

			e := waitDisconnect(ch)
			Expect(e.err).ToNot(BeNil())
			Expect(e.err.IsCode(libsck.ErrorWSHandshake)).To(BeTrue())
			Expect(ch.conn).ToNot(Receive())
		})
	})

	Context("with Basic authentication", func() {
		It("should inject the credentials on the first attempt", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh, sckcfg.Auth{
				Scheme:      libaut.SchemeBasic,
				Realm:       "private",
				Credentials: credentials("alice", "s3cr3t"),
			})
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port, libsck.WSRequest{
				Path: "/rpc",
				Auth: libsck.Credential{
					Scheme:   libaut.SchemeBasic,
					Username: "alice",
					Password: "s3cr3t",
				},
			})

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)
			waitConnect(sh)
		})

		It("should reject wrong credentials", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh, sckcfg.Auth{
				Scheme:      libaut.SchemeBasic,
				Realm:       "private",
				Credentials: credentials("alice", "s3cr3t"),
			})
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port, libsck.WSRequest{
				Path: "/rpc",
				Auth: libsck.Credential{
					Scheme:   libaut.SchemeBasic,
					Username: "alice",
					Password: "wrong",
				},
			})

			Expect(cs.Connect(globalCtx)).To(Succeed())

			e := waitDisconnect(ch)
			Expect(e.err).ToNot(BeNil())
			Expect(e.err.IsCode(libsck.ErrorWSAuthRejected)).To(BeTrue())
			Expect(ch.conn).ToNot(Receive())
		})
	})

	Context("with Digest authentication", func() {
		It("should absorb the challenge and connect exactly once", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh, sckcfg.Auth{
				Scheme:      libaut.SchemeDigest,
				Realm:       "api",
				Credentials: credentials("bob", "hunter2"),
			})
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port, libsck.WSRequest{
				Path: "/rpc",
				Auth: libsck.Credential{
					Scheme:   libaut.SchemeDigest,
					Username: "bob",
					Password: "hunter2",
				},
			})

			Expect(cs.Connect(globalCtx)).To(Succeed())

			waitConnect(ch)
			waitConnect(sh)

			// the challenge round trip is silent
			Consistently(ch.disc, 200*time.Millisecond).ShouldNot(Receive())
			Consistently(ch.conn, 200*time.Millisecond).ShouldNot(Receive())

			Expect(cs.Notify("authed", "yes")).To(Succeed())
			Eventually(sh.msgs, 5*time.Second).Should(Receive())
		})

		It("should report a rejection after the one-shot retry fails", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh, sckcfg.Auth{
				Scheme:      libaut.SchemeDigest,
				Realm:       "api",
				Credentials: credentials("bob", "hunter2"),
			})
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port, libsck.WSRequest{
				Path: "/rpc",
				Auth: libsck.Credential{
					Scheme:   libaut.SchemeDigest,
					Username: "bob",
					Password: "wrong",
				},
			})

			Expect(cs.Connect(globalCtx)).To(Succeed())

			e := waitDisconnect(ch)
			Expect(e.err).ToNot(BeNil())
			Expect(e.err.IsCode(libsck.ErrorWSAuthRejected)).To(BeTrue())
			Expect(ch.conn).ToNot(Receive())
		})
	})

	Context("custom upgrade headers", func() {
		It("should carry user headers onto the request", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh, noAuth)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port, libsck.WSRequest{
				Path: "/rpc",
				Headers: libsck.Headers{
					"X-Client-Tag": "suite",
				},
			})

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)
		})
	})
})
