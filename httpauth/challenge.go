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
	"fmt"
	"strings"

	liberr "github.com/nabbar/golib/errors"
)

// Algorithm is the digest algorithm of a challenge.
type Algorithm uint8

const (
	// AlgorithmMD5 is the plain MD5 digest algorithm.
	AlgorithmMD5 Algorithm = iota
	// AlgorithmMD5Sess is the MD5-sess variant where HA1 folds in nonce and cnonce.
	AlgorithmMD5Sess
)

// String returns the algorithm token as sent on the wire.
func (a Algorithm) String() string {
	if a == AlgorithmMD5Sess {
		return "MD5-sess"
	}
	return "MD5"
}

// Challenge is a parsed WWW-Authenticate header value.
type Challenge struct {
	Scheme    Scheme
	Realm     string
	Nonce     string
	Opaque    string
	Qop       string
	Algorithm Algorithm
	Stale     bool
}

// ParseChallenge parses a WWW-Authenticate header value.
func ParseChallenge(header string) (Challenge, liberr.Error) {
	var c Challenge

	header = strings.TrimSpace(header)
	if header == "" {
		return c, ErrorChallengeEmpty.Error(nil)
	}

	scheme, rest, _ := strings.Cut(header, " ")
	switch {
	case strings.EqualFold(scheme, "Basic"):
		c.Scheme = SchemeBasic
	case strings.EqualFold(scheme, "Digest"):
		c.Scheme = SchemeDigest
	default:
		return c, ErrorChallengeScheme.Error(nil)
	}

	for k, v := range parseParams(rest) {
		switch strings.ToLower(k) {
		case "realm":
			c.Realm = v
		case "nonce":
			c.Nonce = v
		case "opaque":
			c.Opaque = v
		case "qop":
			c.Qop = v
		case "stale":
			c.Stale = strings.EqualFold(v, "true")
		case "algorithm":
			if strings.EqualFold(v, "MD5-sess") {
				c.Algorithm = AlgorithmMD5Sess
			}
		}
	}

	if c.Scheme == SchemeDigest && c.Nonce == "" {
		return c, ErrorChallengeNonce.Error(nil)
	}

	return c, nil
}

// Header renders the challenge as a WWW-Authenticate header value.
func (c Challenge) Header() string {
	if c.Scheme == SchemeBasic {
		return fmt.Sprintf("Basic realm=%q", c.Realm)
	}

	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("Digest realm=%q, nonce=%q", c.Realm, c.Nonce))

	if c.Qop != "" {
		b.WriteString(fmt.Sprintf(", qop=%q", c.Qop))
	}
	if c.Opaque != "" {
		b.WriteString(fmt.Sprintf(", opaque=%q", c.Opaque))
	}

	b.WriteString(", algorithm=" + c.Algorithm.String())

	if c.Stale {
		b.WriteString(", stale=true")
	}

	return b.String()
}

// parseParams splits a comma separated auth-param list, unquoting values.
func parseParams(s string) map[string]string {
	res := make(map[string]string)

	for len(s) > 0 {
		s = strings.TrimLeft(s, " \t,")
		if s == "" {
			break
		}

		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			break
		}

		key := strings.TrimSpace(s[:eq])
		s = s[eq+1:]

		var val string
		if strings.HasPrefix(s, `"`) {
			s = s[1:]
			end := strings.IndexByte(s, '"')
			if end < 0 {
				val = s
				s = ""
			} else {
				val = s[:end]
				s = s[end+1:]
			}
		} else {
			end := strings.IndexByte(s, ',')
			if end < 0 {
				val = strings.TrimSpace(s)
				s = ""
			} else {
				val = strings.TrimSpace(s[:end])
				s = s[end+1:]
			}
		}

		if key != "" {
			res[key] = val
		}
	}

	return res
}
