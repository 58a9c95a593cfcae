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

// Package httpauth implements the HTTP Basic and Digest authentication used
// during the WebSocket upgrade: challenge parsing, Authorization synthesis on
// the client side (with nonce-count carry across one-shot retries), nonce
// issuance and validation on the server side, and digest verification.
//
// Digest follows RFC 2617 with algorithm MD5 or MD5-sess and qop auth.
package httpauth

import (
	"context"
	"time"

	liberr "github.com/nabbar/golib/errors"
)

// Scheme is the authentication scheme of a challenge or credential.
type Scheme uint8

const (
	// SchemeUnused means no authentication is configured or carried.
	SchemeUnused Scheme = iota
	// SchemeBasic is HTTP Basic authentication.
	SchemeBasic
	// SchemeDigest is HTTP Digest authentication.
	SchemeDigest
)

// String returns the scheme token as sent on the wire.
func (s Scheme) String() string {
	switch s {
	case SchemeBasic:
		return "Basic"
	case SchemeDigest:
		return "Digest"
	}
	return ""
}

// NCResetLimit is the nonce-count ceiling above which the carried counter
// resets to zero before being re-incremented when a Context is rebuilt from
// a fresh challenge. Bounded 16-bit counter, reset at 0xfffe.
const NCResetLimit = 0xfffd

// Context tracks the client side of an authenticated conversation: the last
// observed challenge and the monotone nonce count. A Context is rebuilt each
// time a new WWW-Authenticate header is observed; the rebuilt instance
// carries the prior count forward (see Rebuild).
type Context interface {
	// Scheme returns the scheme of the carried challenge, or SchemeUnused.
	Scheme() Scheme

	// Realm returns the realm of the carried challenge.
	Realm() string

	// Stale reports whether the carried challenge had stale=true.
	Stale() bool

	// Count returns the current nonce count.
	Count() uint32

	// Authorization synthesizes the Authorization header value for the given
	// request method, uri and credentials. It returns an empty string when
	// the context carries no usable challenge.
	Authorization(method, uri, username, password string) string
}

// NewContext returns an empty Context (SchemeUnused, count zero).
func NewContext() Context {
	return &ctx{}
}

// Rebuild returns a new Context built from the given WWW-Authenticate header
// value, carrying the nonce count of prev forward plus one. A count above
// NCResetLimit restarts at zero before the increment. A nil prev counts as
// zero. An unparsable header yields an unused Context with a zero count.
func Rebuild(prev Context, wwwAuthenticate string) Context {
	var nc uint32
	if prev != nil {
		nc = prev.Count()
		if nc > NCResetLimit {
			nc = 0
		}
	}

	c, err := ParseChallenge(wwwAuthenticate)
	if err != nil {
		return &ctx{}
	}

	return &ctx{
		chl: c,
		cnt: nc + 1,
	}
}

// NoncePool issues and validates server-side Digest nonces with an expiry.
//
// A minted nonce validates exactly once within the pool TTL: Validate
// consumes it. Expired entries are swept by a background ticker bound to the
// given context.
type NoncePool interface {
	// Mint produces a fresh nonce and records its issuance time.
	Mint() (string, liberr.Error)

	// Validate reports whether the nonce was minted by this pool and is
	// still within its TTL. The nonce is consumed either way when found.
	Validate(nonce string) bool

	// Sweep evicts every expired nonce now.
	Sweep()

	// TTL returns the pool expiry.
	TTL() time.Duration
}

// NewNoncePool returns a NoncePool with the given TTL. The sweeping ticker
// stops when ctx is done. A non-positive ttl defaults to one minute.
func NewNoncePool(ctx context.Context, ttl time.Duration) NoncePool {
	if ttl <= 0 {
		ttl = time.Minute
	}

	p := &pol{
		t: ttl,
	}

	go p.ticker(ctx)

	return p
}
