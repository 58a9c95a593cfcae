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
	"crypto/subtle"
	"encoding/base64"
	"strings"

	liberr "github.com/nabbar/golib/errors"
)

// Authorization is a parsed Authorization header value presented by a
// client. For Basic, Username and Password are filled. For Digest, the
// RFC 2617 fields are carried verbatim.
type Authorization struct {
	Scheme    Scheme
	Username  string
	Password  string
	Realm     string
	Nonce     string
	URI       string
	Qop       string
	NC        string
	Cnonce    string
	Response  string
	Opaque    string
	Algorithm Algorithm
}

// ParseAuthorization parses an Authorization header value.
func ParseAuthorization(header string) (Authorization, liberr.Error) {
	var a Authorization

	header = strings.TrimSpace(header)
	if header == "" {
		return a, ErrorAuthorizationEmpty.Error(nil)
	}

	scheme, rest, _ := strings.Cut(header, " ")

	switch {
	case strings.EqualFold(scheme, "Basic"):
		a.Scheme = SchemeBasic

		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rest))
		if err != nil {
			return a, ErrorAuthorizationInvalid.Error(err)
		}

		usr, pwd, ok := strings.Cut(string(raw), ":")
		if !ok {
			return a, ErrorAuthorizationInvalid.Error(nil)
		}

		a.Username = usr
		a.Password = pwd
		return a, nil

	case strings.EqualFold(scheme, "Digest"):
		a.Scheme = SchemeDigest

		for k, v := range parseParams(rest) {
			switch strings.ToLower(k) {
			case "username":
				a.Username = v
			case "realm":
				a.Realm = v
			case "nonce":
				a.Nonce = v
			case "uri":
				a.URI = v
			case "qop":
				a.Qop = v
			case "nc":
				a.NC = v
			case "cnonce":
				a.Cnonce = v
			case "response":
				a.Response = v
			case "opaque":
				a.Opaque = v
			case "algorithm":
				if strings.EqualFold(v, "MD5-sess") {
					a.Algorithm = AlgorithmMD5Sess
				}
			}
		}

		if a.Username == "" || a.Nonce == "" || a.Response == "" {
			return a, ErrorAuthorizationInvalid.Error(nil)
		}

		return a, nil
	}

	return a, ErrorAuthorizationScheme.Error(nil)
}

// VerifyDigest recomputes the digest response from the client-supplied
// fields and the given password, and compares it against the presented
// response in constant time.
func (a Authorization) VerifyDigest(method, password string) bool {
	if a.Scheme != SchemeDigest {
		return false
	}

	ha1 := hashMD5(a.Username + ":" + a.Realm + ":" + password)
	if a.Algorithm == AlgorithmMD5Sess {
		ha1 = hashMD5(ha1 + ":" + a.Nonce + ":" + a.Cnonce)
	}

	ha2 := hashMD5(method + ":" + a.URI)

	var exp string
	if a.Qop != "" {
		exp = hashMD5(strings.Join([]string{ha1, a.Nonce, a.NC, a.Cnonce, a.Qop, ha2}, ":"))
	} else {
		exp = hashMD5(ha1 + ":" + a.Nonce + ":" + ha2)
	}

	return subtle.ConstantTimeCompare([]byte(exp), []byte(a.Response)) == 1
}

// VerifyBasic compares the presented Basic credentials in constant time.
func (a Authorization) VerifyBasic(password string) bool {
	if a.Scheme != SchemeBasic {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.Password), []byte(password)) == 1
}
