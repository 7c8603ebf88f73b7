// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/bassosimone/netstub"
	"github.com/bassosimone/tlsstub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTLSEngineStdlib(t *testing.T) {
	engine := TLSEngineStdlib{}

	assert.Equal(t, "stdlib", engine.Name())
	assert.Equal(t, "", engine.Parrot())

	tlsConn := engine.Client(&netstub.FuncConn{}, &tls.Config{})
	require.NotNil(t, tlsConn)
	_, ok := tlsConn.(*tls.Conn)
	assert.True(t, ok)
}

// TestNewTLSHandshakeFunc checks that bipipectl's `--tls` path
// (NewTLSHandshakeFunc(NewConfig(), tlsConfig, logger) inside
// stages/tlsshake) gets a fully-populated handshake func back.
func TestNewTLSHandshakeFunc(t *testing.T) {
	tlsConfig := &tls.Config{ServerName: "example.com"}
	fn := NewTLSHandshakeFunc(NewConfig(), tlsConfig, DefaultSLogger())

	require.NotNil(t, fn)
	assert.Equal(t, tlsConfig, fn.Config)
	assert.NotNil(t, fn.Engine)
	assert.NotNil(t, fn.Logger)
	assert.NotNil(t, fn.TimeNow)
	assert.NotNil(t, fn.ErrClassifier)
}

func TestTLSHandshakeFuncSuccess(t *testing.T) {
	wantState := tls.ConnectionState{
		Version:            tls.VersionTLS13,
		CipherSuite:        tls.TLS_AES_128_GCM_SHA256,
		NegotiatedProtocol: "h2",
	}
	mockTLSConn := &tlsstub.FuncTLSConn{
		FuncConn:            newMinimalConn(),
		ConnectionStateFunc: func() tls.ConnectionState { return wantState },
		HandshakeContextFunc: func(ctx context.Context) error {
			return nil
		},
	}

	fn := NewTLSHandshakeFunc(NewConfig(), &tls.Config{ServerName: "example.com"}, DefaultSLogger())
	fn.Engine = newMockTLSEngine(mockTLSConn)

	result, err := fn.Call(context.Background(), newMinimalConn())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, wantState, result.ConnectionState())
}

// TestTLSHandshakeFuncError checks the failure contract stages/tlsshake
// depends on: a failed handshake closes the connection and returns a
// nil TLSConn, never a usable half-handshaked one.
func TestTLSHandshakeFuncError(t *testing.T) {
	wantErr := errors.New("handshake failed")
	closeCalled := false
	mockTLSConn := &tlsstub.FuncTLSConn{
		FuncConn:            newMinimalConn(),
		ConnectionStateFunc: func() tls.ConnectionState { return tls.ConnectionState{} },
		HandshakeContextFunc: func(ctx context.Context) error {
			return wantErr
		},
	}
	mockTLSConn.FuncConn.CloseFunc = func() error { closeCalled = true; return nil }

	fn := NewTLSHandshakeFunc(NewConfig(), &tls.Config{ServerName: "example.com"}, DefaultSLogger())
	fn.Engine = newMockTLSEngine(mockTLSConn)

	result, err := fn.Call(context.Background(), newMinimalConn())

	require.ErrorIs(t, err, wantErr)
	assert.Nil(t, result)
	assert.True(t, closeCalled, "connection should be closed on error")
}

func TestTLSHandshakeFuncLogging(t *testing.T) {
	logger, records := newCapturingLogger()
	mockTLSConn := &tlsstub.FuncTLSConn{
		FuncConn:            newMinimalConn(),
		ConnectionStateFunc: func() tls.ConnectionState { return tls.ConnectionState{} },
		HandshakeContextFunc: func(ctx context.Context) error {
			return nil
		},
	}

	fn := NewTLSHandshakeFunc(NewConfig(), &tls.Config{ServerName: "example.com"}, logger)
	fn.Engine = newMockTLSEngine(mockTLSConn)

	_, _ = fn.Call(context.Background(), newMinimalConn())

	require.Len(t, *records, 2)
	assert.Equal(t, "transport: tls handshake start", (*records)[0].Message)
	assert.Equal(t, "transport: tls handshake done", (*records)[1].Message)
}

// TestTLSHandshakeFuncPeerCerts checks that the handshake log always
// surfaces the peer's certificate, pulling it from the specific x509
// error type when the handshake fails (the most common way a peer cert
// is ever interesting) and from the connection state on success.
func TestTLSHandshakeFuncPeerCerts(t *testing.T) {
	certA := &x509.Certificate{Raw: []byte("cert-a")}
	certB := &x509.Certificate{Raw: []byte("cert-b")}

	cases := []struct {
		name      string
		state     tls.ConnectionState
		err       error
		wantCerts [][]byte
	}{
		{
			name:      "hostname mismatch",
			err:       x509.HostnameError{Certificate: certA, Host: "wrong.host.com"},
			wantCerts: [][]byte{certA.Raw},
		},
		{
			name:      "unknown authority",
			err:       x509.UnknownAuthorityError{Cert: certA},
			wantCerts: [][]byte{certA.Raw},
		},
		{
			name:      "certificate invalid",
			err:       x509.CertificateInvalidError{Cert: certA, Reason: x509.Expired},
			wantCerts: [][]byte{certA.Raw},
		},
		{
			name:      "success, chain from connection state",
			state:     tls.ConnectionState{PeerCertificates: []*x509.Certificate{certA, certB}},
			wantCerts: [][]byte{certA.Raw, certB.Raw},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			mockTLSConn := &tlsstub.FuncTLSConn{
				FuncConn:            newMinimalConn(),
				ConnectionStateFunc: func() tls.ConnectionState { return tt.state },
				HandshakeContextFunc: func(ctx context.Context) error {
					return tt.err
				},
			}
			mockTLSConn.FuncConn.CloseFunc = func() error { return nil }

			logger, records := newCapturingLogger()
			fn := NewTLSHandshakeFunc(NewConfig(), &tls.Config{ServerName: "example.com"}, logger)
			fn.Engine = newMockTLSEngine(mockTLSConn)

			_, _ = fn.Call(context.Background(), newMinimalConn())

			require.Len(t, *records, 2)
			var foundCerts [][]byte
			(*records)[1].Attrs(func(attr slog.Attr) bool {
				if attr.Key == "tlsPeerCerts" {
					foundCerts = attr.Value.Any().([][]byte)
					return false
				}
				return true
			})
			assert.Equal(t, tt.wantCerts, foundCerts)
		})
	}
}

// TestTLSHandshakeFuncSetsTimeOnConfig checks that the cloned *tls.Config
// handed to the engine uses Config.TimeNow for certificate validity
// checks, so tests (and future callers with a custom clock) get
// deterministic handshake behavior.
func TestTLSHandshakeFuncSetsTimeOnConfig(t *testing.T) {
	cfg := NewConfig()
	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg.TimeNow = func() time.Time { return fixedTime }

	var capturedConfig *tls.Config
	mockEngine := &tlsstub.FuncTLSEngine[TLSConn]{
		ClientFunc: func(conn net.Conn, config *tls.Config) TLSConn {
			capturedConfig = config
			return &tlsstub.FuncTLSConn{
				FuncConn:            newMinimalConn(),
				ConnectionStateFunc: func() tls.ConnectionState { return tls.ConnectionState{} },
				HandshakeContextFunc: func(ctx context.Context) error {
					return nil
				},
			}
		},
		NameFunc:   func() string { return "mock" },
		ParrotFunc: func() string { return "" },
	}

	fn := NewTLSHandshakeFunc(cfg, &tls.Config{ServerName: "example.com"}, DefaultSLogger())
	fn.Engine = mockEngine

	_, _ = fn.Call(context.Background(), newMinimalConn())

	require.NotNil(t, capturedConfig)
	require.NotNil(t, capturedConfig.Time)
	assert.Equal(t, fixedTime, capturedConfig.Time())
}
