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

package httpauth

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hashicorp/go-uuid"
)

type ctx struct {
	chl Challenge
	cnt uint32
	cnc string
}

func (o *ctx) Scheme() Scheme {
	return o.chl.Scheme
}

func (o *ctx) Realm() string {
	return o.chl.Realm
}

func (o *ctx) Stale() bool {
	return o.chl.Stale
}

func (o *ctx) Count() uint32 {
	return o.cnt
}

func (o *ctx) Authorization(method, uri, username, password string) string {
	switch o.chl.Scheme {
	case SchemeBasic:
		return BasicAuthorization(username, password)
	case SchemeDigest:
		return o.digest(method, uri, username, password)
	}
	return ""
}

func (o *ctx) digest(method, uri, username, password string) string {
	if o.cnc == "" {
		o.cnc = newCnonce()
	}

	var (
		nc  = fmt.Sprintf("%08x", o.cnt)
		ha1 = hashMD5(username + ":" + o.chl.Realm + ":" + password)
		ha2 = hashMD5(method + ":" + uri)
	)

	if o.chl.Algorithm == AlgorithmMD5Sess {
		ha1 = hashMD5(ha1 + ":" + o.chl.Nonce + ":" + o.cnc)
	}

	var rsp string
	if o.qop() != "" {
		rsp = hashMD5(strings.Join([]string{ha1, o.chl.Nonce, nc, o.cnc, o.qop(), ha2}, ":"))
	} else {
		rsp = hashMD5(ha1 + ":" + o.chl.Nonce + ":" + ha2)
	}

	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("Digest username=%q, realm=%q, nonce=%q, uri=%q", username, o.chl.Realm, o.chl.Nonce, uri))
	b.WriteString(", algorithm=" + o.chl.Algorithm.String())

	if o.qop() != "" {
		b.WriteString(fmt.Sprintf(", qop=%s, nc=%s, cnonce=%q", o.qop(), nc, o.cnc))
	}

	b.WriteString(fmt.Sprintf(", response=%q", rsp))

	if o.chl.Opaque != "" {
		b.WriteString(fmt.Sprintf(", opaque=%q", o.chl.Opaque))
	}

	return b.String()
}

// qop picks auth when the challenge offers it; auth-int is not supported.
func (o *ctx) qop() string {
	for _, q := range strings.Split(o.chl.Qop, ",") {
		if strings.TrimSpace(q) == "auth" {
			return "auth"
		}
	}
	return ""
}

// BasicAuthorization returns the Basic Authorization header value for the
// given credentials.
func BasicAuthorization(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func hashMD5(s string) string {
	h := md5.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

func newCnonce() string {
	if s, err := uuid.GenerateUUID(); err == nil {
		return strings.ReplaceAll(s, "-", "")
	}
	return "0a4f113b"
}
