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

package httpauth_test

import (
	"testing"

	libaut "github.com/nabbar/duplexrpc/httpauth"
)

// RFC 2617 section 3.5 worked example.
func TestVerifyDigestReferenceVector(t *testing.T) {
	a := libaut.Authorization{
		Scheme:   libaut.SchemeDigest,
		Username: "Mufasa",
		Realm:    "testrealm@host.com",
		Nonce:    "dcd98b7102dd2f0e8b11d0f600bfb0c093",
		URI:      "/dir/index.html",
		Qop:      "auth",
		NC:       "00000001",
		Cnonce:   "0a4f113b",
		Response: "6629fae49393a05397450978507c4ef1",
		Opaque:   "5ccc069c403ebaf9f0171e9517f40e41",
	}

	if !a.VerifyDigest("GET", "Circle Of Life") {
		t.Fatal("reference vector must verify")
	}

	if a.VerifyDigest("GET", "wrong password") {
		t.Fatal("wrong password must not verify")
	}

	if a.VerifyDigest("POST", "Circle Of Life") {
		t.Fatal("wrong method must not verify")
	}
}

func TestAuthorizationRoundTrip(t *testing.T) {
	chl := `Digest realm="api", nonce="n-0123456789", qop="auth", opaque="op"`

	ctx := libaut.Rebuild(libaut.NewContext(), chl)

	if ctx.Scheme() != libaut.SchemeDigest {
		t.Fatalf("expected digest context, got %v", ctx.Scheme())
	}
	if ctx.Count() != 1 {
		t.Fatalf("expected nc 1, got %d", ctx.Count())
	}

	hdr := ctx.Authorization("GET", "/rpc", "alice", "s3cr3t")
	if hdr == "" {
		t.Fatal("expected an authorization header")
	}

	a, err := libaut.ParseAuthorization(hdr)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.Username != "alice" || a.Realm != "api" || a.URI != "/rpc" || a.NC != "00000001" {
		t.Fatalf("unexpected fields: %+v", a)
	}

	if !a.VerifyDigest("GET", "s3cr3t") {
		t.Fatal("synthesized header must verify against the same password")
	}
	if a.VerifyDigest("GET", "other") {
		t.Fatal("synthesized header must not verify against another password")
	}
}

func TestRebuildCarriesCount(t *testing.T) {
	chl := `Digest realm="api", nonce="first"`

	c1 := libaut.Rebuild(libaut.NewContext(), chl)
	if c1.Count() != 1 {
		t.Fatalf("expected nc 1, got %d", c1.Count())
	}

	c2 := libaut.Rebuild(c1, `Digest realm="api", nonce="second"`)
	if c2.Count() != 2 {
		t.Fatalf("expected nc 2, got %d", c2.Count())
	}
}

func TestRebuildWrapGuard(t *testing.T) {
	c := libaut.Rebuild(countedContext(libaut.NCResetLimit+1), `Digest realm="api", nonce="n"`)

	if c.Count() != 1 {
		t.Fatalf("expected counter reset to 1 past the guard, got %d", c.Count())
	}
}

func TestRebuildUnparsable(t *testing.T) {
	c := libaut.Rebuild(libaut.NewContext(), "Bearer nope")

	if c.Scheme() != libaut.SchemeUnused {
		t.Fatalf("expected unused scheme, got %v", c.Scheme())
	}
	if c.Authorization("GET", "/", "u", "p") != "" {
		t.Fatal("unused context must not synthesize a header")
	}
}

func TestBasicAuthorization(t *testing.T) {
	hdr := libaut.BasicAuthorization("Aladdin", "open sesame")

	if hdr != "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==" {
		t.Fatalf("unexpected header %q", hdr)
	}

	a, err := libaut.ParseAuthorization(hdr)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.Username != "Aladdin" || !a.VerifyBasic("open sesame") {
		t.Fatalf("unexpected fields: %+v", a)
	}
}

// countedContext builds a context carrying an arbitrary count through
// repeated rebuilds on fresh challenges.
func countedContext(n uint32) libaut.Context {
	c := libaut.NewContext()
	for i := uint32(0); i < n; i++ {
		c = libaut.Rebuild(c, `Digest realm="api", nonce="n"`)
	}
	return c
}
