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

package ssl_test

import (
	libsck "github.com/nabbar/duplexrpc/socket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SSL Socket", func() {
	Context("with a verified server certificate", func() {
		It("should connect and expose the peer chain", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)

			sec, ok := cs.(libsck.Secured)
			Expect(ok).To(BeTrue())

			Expect(sec.VerifyResult()).To(BeNil())
			Expect(sec.PresentPeerCertificate()).To(BeTrue())

			crt, err := sec.PeerCertificate()
			Expect(err).To(BeNil())
			Expect(crt).ToNot(BeNil())
			Expect(crt.Subject.CommonName).To(Equal("localhost"))
		})

		It("should exchange frames over the secured stream", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)
			waitConnect(sh)

			Expect(cs.Notify("secure", "hello")).To(Succeed())

			Eventually(sh.msgs, 5).Should(Receive())
		})
	})

	Context("outside the connected state", func() {
		It("should refuse the TLS accessors", func() {
			ch := newTestHandler()
			cs := createSocket(ch, "localhost", getFreePort())

			sec, ok := cs.(libsck.Secured)
			Expect(ok).To(BeTrue())

			err := sec.VerifyResult()
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libsck.ErrorNotConnected)).To(BeTrue())

			Expect(sec.PresentPeerCertificate()).To(BeFalse())

			_, cerr := sec.PeerCertificate()
			Expect(cerr).ToNot(BeNil())
			Expect(cerr.IsCode(libsck.ErrorTLSNoPeerCert)).To(BeTrue())
		})
	})

	Context("server side of a secured connection", func() {
		It("should see no client certificate by default", func() {
			sh := newTestHandler()
			srv, host, port := startServer(sh)
			defer func() { _ = srv.Shutdown(globalCtx) }()

			ch := newTestHandler()
			cs := createSocket(ch, host, port)

			Expect(cs.Connect(globalCtx)).To(Succeed())
			waitConnect(ch)
			ss := waitConnect(sh)

			sec, ok := ss.(libsck.Secured)
			Expect(ok).To(BeTrue())
			Expect(sec.PresentPeerCertificate()).To(BeFalse())
		})
	})
})
