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

package message

import (
	"errors"
	"io"
	"math"
	"strings"

	liberr "github.com/nabbar/golib/errors"
	"github.com/ugorji/go/codec"
)

type fmr struct {
	b []byte
	h *codec.MsgpackHandle
}

func newMsgpackFramer() Framer {
	h := new(codec.MsgpackHandle)
	h.RawToString = true
	h.WriteExt = true

	return &fmr{
		h: h,
	}
}

func (o *fmr) Feed(p []byte) ([]Message, liberr.Error) {
	var res []Message

	o.b = append(o.b, p...)

	for len(o.b) > 0 {
		var (
			raw []interface{}
			dec = codec.NewDecoderBytes(o.b, o.h)
		)

		if err := dec.Decode(&raw); err != nil {
			if isShortInput(err) {
				// partial trailing frame, wait for more bytes
				return res, nil
			}
			return res, ErrorFrameInvalid.Error(err)
		}

		m, e := fromArray(raw)
		if e != nil {
			return res, e
		}

		res = append(res, m)
		o.b = o.b[dec.NumBytesRead():]
	}

	return res, nil
}

func (o *fmr) Marshal(m Message) ([]byte, liberr.Error) {
	if m == nil {
		return nil, ErrorParamEmpty.Error(nil)
	}

	var arr []interface{}

	switch f := m.(type) {
	case Request:
		arr = []interface{}{uint8(TypeRequest), f.ID, f.Method, f.Params}
	case *Request:
		arr = []interface{}{uint8(TypeRequest), f.ID, f.Method, f.Params}
	case Response:
		arr = []interface{}{uint8(TypeResponse), f.ID, f.Error, f.Result}
	case *Response:
		arr = []interface{}{uint8(TypeResponse), f.ID, f.Error, f.Result}
	case Notify:
		arr = []interface{}{uint8(TypeNotify), f.Method, f.Params}
	case *Notify:
		arr = []interface{}{uint8(TypeNotify), f.Method, f.Params}
	default:
		return nil, ErrorFrameType.Error(nil)
	}

	var buf []byte
	if err := codec.NewEncoderBytes(&buf, o.h).Encode(arr); err != nil {
		return nil, ErrorEncode.Error(err)
	}

	return buf, nil
}

func (o *fmr) Reset() {
	o.b = nil
}

// isShortInput reports whether err means the decoder ran out of bytes
// before the end of the frame.
func isShortInput(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return strings.Contains(err.Error(), "EOF")
}

func fromArray(raw []interface{}) (Message, liberr.Error) {
	if len(raw) < 3 {
		return nil, ErrorFrameInvalid.Error(nil)
	}

	typ, ok := asUint64(raw[0])
	if !ok {
		return nil, ErrorFrameInvalid.Error(nil)
	}

	switch Type(typ) {
	case TypeRequest:
		if len(raw) != 4 {
			return nil, ErrorFrameInvalid.Error(nil)
		}
		id, okId := asUint64(raw[1])
		mth, okMt := raw[2].(string)
		if !okId || !okMt || id > math.MaxUint32 {
			return nil, ErrorFrameInvalid.Error(nil)
		}
		return Request{ID: uint32(id), Method: mth, Params: raw[3]}, nil

	case TypeResponse:
		if len(raw) != 4 {
			return nil, ErrorFrameInvalid.Error(nil)
		}
		id, okId := asUint64(raw[1])
		if !okId || id > math.MaxUint32 {
			return nil, ErrorFrameInvalid.Error(nil)
		}
		return Response{ID: uint32(id), Error: raw[2], Result: raw[3]}, nil

	case TypeNotify:
		if len(raw) != 3 {
			return nil, ErrorFrameInvalid.Error(nil)
		}
		mth, okMt := raw[1].(string)
		if !okMt {
			return nil, ErrorFrameInvalid.Error(nil)
		}
		return Notify{Method: mth, Params: raw[2]}, nil
	}

	return nil, ErrorFrameType.Error(nil)
}

func asUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case int32:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case int8:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint:
		return uint64(n), true
	}
	return 0, false
}
