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

// Package group provides named broadcast fan-out sets of sockets.
//
// Membership is keyed by socket identity: joining twice is idempotent. The
// socket runtime calls LeaveAll on the socket's table each time a socket
// disconnects, before OnDisconnect fires, so no membership outlives a
// connection and a reconnected socket has to join again.
//
// Tables are explicit instances scoped to a runtime; Default returns a
// process-wide table for applications that need only one.
package group

import (
	"time"

	liberr "github.com/nabbar/golib/errors"

	"github.com/nabbar/duplexrpc/message"
)

// Member is the socket surface a Table needs. It is satisfied by
// socket.Socket; identity is the interface value itself.
type Member interface {
	// Send enqueues one frame on the member connection.
	Send(m message.Message) liberr.Error
}

// Table is a named registry of broadcast sets.
//
// All operations are safe for concurrent use. Broadcasts snapshot the
// membership under a short lock then send outside of it; a failure on one
// member does not abort the fan-out and surfaces only through that member's
// own disconnect path.
type Table interface {
	// Join adds m to the named set.
	Join(name string, m Member) liberr.Error

	// Leave removes m from the named set.
	Leave(name string, m Member) liberr.Error

	// LeaveAll removes m from every set. It is the release hook invoked
	// when a socket is finalized.
	LeaveAll(m Member)

	// Members returns a snapshot of the named set.
	Members(name string) []Member

	// Names returns every group name m belongs to.
	Names(m Member) []string

	// BroadcastRequest enqueues a request frame on every member of the
	// named set. Broadcast requests are fire-and-forget: no waiter is
	// registered and responses from members are dropped.
	BroadcastRequest(name string, method string, params interface{}) liberr.Error

	// BroadcastNotify enqueues a notify frame on every member of the named
	// set.
	BroadcastNotify(name string, method string, params interface{}) liberr.Error
}

// New returns an empty Table.
func New() Table {
	return &tbl{
		g: make(map[string]map[Member]time.Time),
	}
}

// Default returns the shared process-wide Table.
func Default() Table {
	return defaultTable
}

var defaultTable = New()
