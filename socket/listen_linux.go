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
	"net"
	"os"

	libptc "github.com/nabbar/golib/network/protocol"
	"golang.org/x/sys/unix"
)

// ListenTCP binds address and listens with the fixed Backlog depth. The
// standard library listener always uses the kernel default, so the socket
// is opened, bound and put into listening state through raw syscalls before
// being handed to the runtime poller.
func ListenTCP(address string) (net.Listener, error) {
	adr, err := net.ResolveTCPAddr(libptc.NetworkTCP.Code(), address)
	if err != nil {
		return nil, err
	}

	var (
		fam int
		sa  unix.Sockaddr
	)

	if ip4 := adr.IP.To4(); ip4 != nil {
		fam = unix.AF_INET
		s4 := &unix.SockaddrInet4{Port: adr.Port}
		copy(s4.Addr[:], ip4)
		sa = s4
	} else {
		fam = unix.AF_INET6
		s6 := &unix.SockaddrInet6{Port: adr.Port}
		if ip16 := adr.IP.To16(); ip16 != nil {
			copy(s6.Addr[:], ip16)
		}
		sa = s6
	}

	fd, err := unix.Socket(fam, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, err
	}

	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	if err = unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	if err = unix.Listen(fd, Backlog); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	f := os.NewFile(uintptr(fd), address)
	defer func() {
		_ = f.Close()
	}()

	return net.FileListener(f)
}
