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
	"time"

	liberr "github.com/nabbar/golib/errors"

	"github.com/nabbar/duplexrpc/message"
)

type wtr struct {
	cb  RequestCallback
	tmr *time.Timer
}

// complete runs on the loop. The timer is stopped first so a racing expiry
// post finds the waiter already gone.
func (w *wtr) complete(s Socket, rsp message.Response, err liberr.Error) {
	if w.tmr != nil {
		w.tmr.Stop()
	}
	if w.cb != nil {
		w.cb(s, rsp, err)
	}
}

func (o *sck) Send(m message.Message) liberr.Error {
	if m == nil {
		return ErrorParamEmpty.Error(nil)
	}

	o.m.Lock()

	if o.s != StateConnected {
		o.m.Unlock()
		return ErrorNotConnected.Error(nil)
	}

	if rq, ok := m.(message.Request); ok && rq.ID == 0 {
		o.mid++
		rq.ID = o.mid
		m = rq
	}

	o.que = append(o.que, m)
	wkr := o.wkr
	o.m.Unlock()

	wake(wkr)
	return nil
}

func (o *sck) Notify(method string, params interface{}) liberr.Error {
	if method == "" {
		return ErrorParamEmpty.Error(nil)
	}

	return o.Send(message.Notify{Method: method, Params: params})
}

func (o *sck) Response(id uint32, errObj interface{}, result interface{}) liberr.Error {
	return o.Send(message.Response{ID: id, Error: errObj, Result: result})
}

func (o *sck) Request(method string, params interface{}, timeout time.Duration, done RequestCallback) liberr.Error {
	if method == "" {
		return ErrorParamEmpty.Error(nil)
	}

	if timeout <= 0 {
		timeout = o.rto
	}

	o.m.Lock()

	if o.s != StateConnected {
		o.m.Unlock()
		return ErrorNotConnected.Error(nil)
	}

	o.mid++
	id := o.mid

	w := &wtr{cb: done}
	o.wtr[id] = w
	w.tmr = time.AfterFunc(timeout, func() {
		o.lop.Post(func() {
			o.expire(id)
		})
	})

	o.que = append(o.que, message.Request{ID: id, Method: method, Params: params})
	wkr := o.wkr
	o.m.Unlock()

	wake(wkr)
	return nil
}

// expire runs on the loop.
func (o *sck) expire(id uint32) {
	o.m.Lock()
	w, ok := o.wtr[id]
	if ok {
		delete(o.wtr, id)
	}
	o.m.Unlock()

	if ok {
		w.complete(o, message.Response{}, ErrorRequestTimeout.Error(nil))
	}
}

// dispatch runs on the loop: responses complete their waiter, requests and
// notifications reach the handler. A response without a waiter is late or
// untracked and is dropped.
func (o *sck) dispatch(epo uint64, m message.Message) {
	o.m.Lock()
	if o.epo != epo {
		o.m.Unlock()
		return
	}

	if rsp, ok := m.(message.Response); ok {
		w, has := o.wtr[rsp.ID]
		if has {
			delete(o.wtr, rsp.ID)
		}
		o.m.Unlock()

		if has {
			w.complete(o, rsp, nil)
		}
		return
	}

	o.m.Unlock()

	if h := o.handler(); h != nil {
		h.OnMessage(o, m)
	}
}

func wake(c chan<- struct{}) {
	if c == nil {
		return
	}
	select {
	case c <- struct{}{}:
	default:
	}
}
