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

package socket

import (
	"strings"

	libaut "github.com/nabbar/duplexrpc/httpauth"
)

// Headers is a header mapping, case-preserving on the wire and
// case-insensitive on lookup.
type Headers map[string]string

// Get returns the value of the first key matching k case-insensitively.
func (h Headers) Get(k string) string {
	if v, ok := h[k]; ok {
		return v
	}
	for key, v := range h {
		if strings.EqualFold(key, k) {
			return v
		}
	}
	return ""
}

// Clone returns a copy of the mapping.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	n := make(Headers, len(h))
	for k, v := range h {
		n[k] = v
	}
	return n
}

// Credential is the authenticate block of a WS request context.
type Credential struct {
	Scheme   libaut.Scheme
	Username string
	Password string
}

// WSRequest is the upgrade request context of a WS or WSS socket: the
// request line parts, the headers copied verbatim onto the upgrade request,
// and the optional credentials.
type WSRequest struct {
	Path    string
	Query   string
	Headers Headers
	Auth    Credential
}

// URI returns the request target built from Path prefixed with / when
// absent and Query prefixed with ? when absent.
func (r WSRequest) URI() string {
	u := r.Path
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	if r.Query != "" {
		if strings.HasPrefix(r.Query, "?") {
			u += r.Query
		} else {
			u += "?" + r.Query
		}
	}
	return u
}

// WSResponse is the captured upgrade response of the last handshake.
type WSResponse struct {
	Code    int
	Headers Headers
}
