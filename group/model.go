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

package group

import (
	"sync"
	"time"

	liberr "github.com/nabbar/golib/errors"

	"github.com/nabbar/duplexrpc/message"
)

type tbl struct {
	m sync.RWMutex
	g map[string]map[Member]time.Time
}

func (o *tbl) Join(name string, m Member) liberr.Error {
	if name == "" || m == nil {
		return ErrorParamEmpty.Error(nil)
	}

	o.m.Lock()
	defer o.m.Unlock()

	s, ok := o.g[name]
	if !ok {
		s = make(map[Member]time.Time)
		o.g[name] = s
	}

	if _, ok = s[m]; !ok {
		s[m] = time.Now()
	}

	return nil
}

func (o *tbl) Leave(name string, m Member) liberr.Error {
	if name == "" || m == nil {
		return ErrorParamEmpty.Error(nil)
	}

	o.m.Lock()
	defer o.m.Unlock()

	if s, ok := o.g[name]; ok {
		delete(s, m)
		if len(s) == 0 {
			delete(o.g, name)
		}
	}

	return nil
}

func (o *tbl) LeaveAll(m Member) {
	if m == nil {
		return
	}

	o.m.Lock()
	defer o.m.Unlock()

	for name, s := range o.g {
		delete(s, m)
		if len(s) == 0 {
			delete(o.g, name)
		}
	}
}

func (o *tbl) Members(name string) []Member {
	o.m.RLock()
	defer o.m.RUnlock()

	s, ok := o.g[name]
	if !ok {
		return nil
	}

	res := make([]Member, 0, len(s))
	for m := range s {
		res = append(res, m)
	}

	return res
}

func (o *tbl) Names(m Member) []string {
	o.m.RLock()
	defer o.m.RUnlock()

	var res []string
	for name, s := range o.g {
		if _, ok := s[m]; ok {
			res = append(res, name)
		}
	}

	return res
}

func (o *tbl) BroadcastRequest(name string, method string, params interface{}) liberr.Error {
	return o.broadcast(name, message.Request{Method: method, Params: params})
}

func (o *tbl) BroadcastNotify(name string, method string, params interface{}) liberr.Error {
	return o.broadcast(name, message.Notify{Method: method, Params: params})
}

func (o *tbl) broadcast(name string, m message.Message) liberr.Error {
	if name == "" {
		return ErrorParamEmpty.Error(nil)
	}

	for _, s := range o.Members(name) {
		// best effort, individual failures surface on the member itself
		_ = s.Send(m)
	}

	return nil
}
