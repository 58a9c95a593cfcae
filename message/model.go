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

// Request is a frame expecting a Response carrying the same ID.
type Request struct {
	ID     uint32
	Method string
	Params interface{}
}

// Type implements Message.
func (m Request) Type() Type {
	return TypeRequest
}

// Response completes the Request carrying the same ID. Error is nil on
// success; Result is the peer-provided payload.
type Response struct {
	ID     uint32
	Error  interface{}
	Result interface{}
}

// Type implements Message.
func (m Response) Type() Type {
	return TypeResponse
}

// Notify is a one-way frame without correlation.
type Notify struct {
	Method string
	Params interface{}
}

// Type implements Message.
func (m Notify) Type() Type {
	return TypeNotify
}
