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

// Package config defines the client and server configuration structs of the
// RPC runtime and their validation.
package config

import (
	"net"
	"time"

	libtls "github.com/nabbar/golib/certificates"

	libaut "github.com/nabbar/duplexrpc/httpauth"
	libsck "github.com/nabbar/duplexrpc/socket"
)

// Client configures an outbound socket factory.
type Client struct {
	// Kind is the wire transport.
	Kind libsck.Kind `mapstructure:"kind" json:"kind" yaml:"kind"`

	// Address is the peer endpoint as host:port.
	Address string `mapstructure:"address" json:"address" yaml:"address" validate:"required"`

	// BindDevice optionally pins outbound connections to a local interface.
	BindDevice string `mapstructure:"bind_device" json:"bind_device" yaml:"bind_device"`

	// ConnectTimeout bounds a connect attempt when the caller context
	// carries no deadline. Zero means no bound.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" json:"connect_timeout" yaml:"connect_timeout"`

	// RequestTimeout is the default waiter timeout of Request.
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" yaml:"request_timeout"`

	// WS is the upgrade request context for WS and WSS transports.
	WS libsck.WSRequest `mapstructure:"-" json:"-" yaml:"-"`

	// TLS is the TLS context for SSL and WSS transports.
	TLS libtls.TLSConfig `mapstructure:"-" json:"-" yaml:"-"`
}

// Validate checks the configuration coherence.
func (c Client) Validate() error {
	if err := structValidate(c); err != nil {
		return err
	}

	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return ErrorInvalidAddress.Error(err)
	}

	if c.Kind == libsck.KindSSL || c.Kind == libsck.KindWSS {
		if c.TLS == nil {
			return ErrInvalidTLSConfig.Error(nil)
		}
	}

	return nil
}

// HostPort splits the Address into its host and numeric port.
func (c Client) HostPort() (string, int, error) {
	return splitHostPort(c.Address)
}

// Auth configures the upgrade authentication of a WS or WSS server.
type Auth struct {
	// Scheme selects Basic or Digest. SchemeUnused disables the challenge.
	Scheme libaut.Scheme

	// Realm is the protection realm emitted in challenges.
	Realm string

	// NonceTTL bounds digest nonce freshness. Zero defaults to one minute.
	NonceTTL time.Duration

	// Credentials returns the password of a username, or false when the
	// user is unknown. Required when Scheme is not SchemeUnused.
	Credentials func(username string) (string, bool)
}

// Enabled reports whether a challenge is configured.
func (a Auth) Enabled() bool {
	return a.Scheme != libaut.SchemeUnused && a.Credentials != nil
}

// Server configures an inbound socket factory.
type Server struct {
	// Kind is the wire transport.
	Kind libsck.Kind `mapstructure:"kind" json:"kind" yaml:"kind"`

	// Address is the bind endpoint as host:port.
	Address string `mapstructure:"address" json:"address" yaml:"address" validate:"required"`

	// RequestTimeout is the default waiter timeout of Request on accepted
	// sockets.
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" yaml:"request_timeout"`

	// Path restricts the WS upgrade to one request path. Empty accepts any.
	Path string `mapstructure:"path" json:"path" yaml:"path"`

	// Auth configures the WS upgrade challenge.
	Auth Auth `mapstructure:"-" json:"-" yaml:"-"`

	// TLS is the TLS context for SSL and WSS transports.
	TLS libtls.TLSConfig `mapstructure:"-" json:"-" yaml:"-"`
}

// Validate checks the configuration coherence.
func (c Server) Validate() error {
	if err := structValidate(c); err != nil {
		return err
	}

	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return ErrorInvalidAddress.Error(err)
	}

	if c.Kind == libsck.KindSSL || c.Kind == libsck.KindWSS {
		if c.TLS == nil {
			return ErrInvalidTLSConfig.Error(nil)
		}
	}

	if c.Auth.Scheme != libaut.SchemeUnused && c.Auth.Credentials == nil {
		return ErrorInvalidAuth.Error(nil)
	}

	return nil
}
