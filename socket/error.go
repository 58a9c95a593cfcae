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
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	liberr "github.com/nabbar/golib/errors"
)

const (
	ErrorParamEmpty liberr.CodeError = iota + liberr.MinAvailable + 100
	ErrorParamInvalid
	ErrorAlready
	ErrorNotConnected
	ErrorConnectRefused
	ErrorConnectTimeout
	ErrorRequestTimeout
	ErrorClosedByPeer
	ErrorTLSHandshake
	ErrorTLSVerify
	ErrorTLSNoPeerCert
	ErrorNotSecured
	ErrorWSHandshake
	ErrorWSAuthRejected
	ErrorIO
)

func init() {
	if liberr.ExistInMapMessage(ErrorParamEmpty) {
		panic(fmt.Errorf("error code collision with package duplexrpc/socket"))
	}
	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamEmpty:
		return "at least one given parameters is empty"
	case ErrorParamInvalid:
		return "at least one given parameters is invalid"
	case ErrorAlready:
		return "operation already done for current state"
	case ErrorNotConnected:
		return "socket is not connected"
	case ErrorConnectRefused:
		return "connection refused by peer"
	case ErrorConnectTimeout:
		return "connect attempt timed out"
	case ErrorRequestTimeout:
		return "request timed out"
	case ErrorClosedByPeer:
		return "connection closed by peer"
	case ErrorTLSHandshake:
		return "tls handshake failed"
	case ErrorTLSVerify:
		return "peer certificate chain is not verified"
	case ErrorTLSNoPeerCert:
		return "peer certificate does not exist"
	case ErrorNotSecured:
		return "socket transport is not secured"
	case ErrorWSHandshake:
		return "websocket upgrade failed"
	case ErrorWSAuthRejected:
		return "websocket upgrade authentication rejected"
	case ErrorIO:
		return "connection read/write failed"
	}

	return liberr.NullMessage
}

// NetError maps a raw transport error onto the socket error taxonomy,
// preserving the cause as parent. A nil err yields nil.
func NetError(ctx context.Context, err error) liberr.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrorConnectRefused.Error(err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ETIMEDOUT) {
		return ErrorConnectTimeout.Error(err)
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return ErrorConnectTimeout.Error(err)
	}

	if ctx != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return ErrorConnectTimeout.Error(ctx.Err())
	}

	if errors.Is(err, io.EOF) {
		return ErrorClosedByPeer.Error(err)
	}

	return ErrorIO.Error(err)
}

// readError maps a read-path failure: orderly peer close yields
// ErrorClosedByPeer, everything else ErrorIO.
func readError(err error) liberr.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return ErrorClosedByPeer.Error(err)
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return ErrorClosedByPeer.Error(err)
	}

	return ErrorIO.Error(err)
}
