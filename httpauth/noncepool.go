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
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-uuid"
	liberr "github.com/nabbar/golib/errors"
)

type pol struct {
	m sync.Map
	t time.Duration
}

func (o *pol) Mint() (string, liberr.Error) {
	s, err := uuid.GenerateUUID()
	if err != nil {
		return "", ErrorNonceMint.Error(err)
	}

	n := strings.ReplaceAll(s, "-", "")
	o.m.Store(n, time.Now())

	return n, nil
}

func (o *pol) Validate(nonce string) bool {
	v, ok := o.m.LoadAndDelete(nonce)
	if !ok {
		return false
	}

	iss, ok := v.(time.Time)
	if !ok {
		return false
	}

	return time.Since(iss) <= o.t
}

func (o *pol) Sweep() {
	o.m.Range(func(key, value any) bool {
		if iss, ok := value.(time.Time); !ok || time.Since(iss) > o.t {
			o.m.Delete(key)
		}
		return true
	})
}

func (o *pol) TTL() time.Duration {
	return o.t
}

func (o *pol) ticker(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	tck := time.NewTicker(o.t)
	defer tck.Stop()

	for {
		select {
		case <-tck.C:
			o.Sweep()

		case <-ctx.Done():
			return
		}
	}
}
