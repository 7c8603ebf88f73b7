// SPDX-License-Identifier: GPL-3.0-or-later

package tlsshake

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/bassosimone/netstub"
	"github.com/bassosimone/tlsstub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/bipipe"
	"github.com/bassosimone/bipipe/transport"
)

func minimalConn() *netstub.FuncConn {
	return &netstub.FuncConn{
		LocalAddrFunc:  func() net.Addr { return &net.TCPAddr{} },
		RemoteAddrFunc: func() net.Addr { return &net.TCPAddr{} },
	}
}

// withStubEngine swaps the package transport's TLSEngineStdlib for a stub
// whose connection reports state and returns wantErr from
// HandshakeContextFunc without touching the network, so the stage can be
// exercised deterministically.
func withStubEngine(pp bipipe.PipePair[[]byte, []byte, []byte, []byte], wantErr error, state tls.ConnectionState) {
	impl := pp.(*pipePair)
	mockConn := &tlsstub.FuncTLSConn{
		FuncConn: minimalConn(),
		ConnectionStateFunc: func() tls.ConnectionState {
			return state
		},
		HandshakeContextFunc: func(context.Context) error {
			return wantErr
		},
	}
	impl.handshake.Engine = &tlsstub.FuncTLSEngine[transport.TLSConn]{
		ClientFunc: func(net.Conn, *tls.Config) transport.TLSConn { return mockConn },
		NameFunc:   func() string { return "mock" },
		ParrotFunc: func() string { return "" },
	}
}

func TestPassthroughBeforeHandshakeBuffersCommands(t *testing.T) {
	ctx := bipipe.NewContext()
	pp := Stage(&tls.Config{}, func() (net.Conn, error) { return minimalConn(), nil }, 0).Apply(ctx)

	em, err := pp.OnCommand(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.True(t, em.IsEmpty())

	em, err = pp.OnEvent(ctx, []byte("world"))
	require.NoError(t, err)
	require.Equal(t, bipipe.KindEvent, em.Kind())
	assert.Equal(t, []byte("world"), em.Items()[0].Evt)
}

func TestHandshakeFlushesBufferedCommands(t *testing.T) {
	ctx := bipipe.NewContext()
	pp := Stage(&tls.Config{}, func() (net.Conn, error) { return minimalConn(), nil }, time.Second).Apply(ctx)
	withStubEngine(pp, nil, tls.ConnectionState{
		Version:     tls.VersionTLS13,
		CipherSuite: tls.TLS_AES_128_GCM_SHA256,
	})

	_, err := pp.OnCommand(ctx, []byte("one"))
	require.NoError(t, err)
	_, err = pp.OnCommand(ctx, []byte("two"))
	require.NoError(t, err)

	em, err := pp.OnManagement(ctx, Message)
	require.NoError(t, err)
	require.Equal(t, bipipe.KindMany, em.Kind())

	items := em.Items()
	require.Len(t, items, 3)
	assert.Equal(t, bipipe.Down, items[0].Dir)
	assert.Equal(t, []byte("one"), items[0].Cmd)
	assert.Equal(t, bipipe.Down, items[1].Dir)
	assert.Equal(t, []byte("two"), items[1].Cmd)
	assert.Equal(t, bipipe.Up, items[2].Dir)
	assert.Contains(t, string(items[2].Evt), "TLS 1.3")

	// subsequent commands pass straight through.
	em, err = pp.OnCommand(ctx, []byte("three"))
	require.NoError(t, err)
	require.Equal(t, bipipe.KindCommand, em.Kind())
	assert.Equal(t, []byte("three"), em.Items()[0].Cmd)
}

func TestHandshakeFailurePropagates(t *testing.T) {
	ctx := bipipe.NewContext()
	wantErr := errors.New("handshake failed")
	pp := Stage(&tls.Config{}, func() (net.Conn, error) { return minimalConn(), nil }, 0).Apply(ctx)
	withStubEngine(pp, wantErr, tls.ConnectionState{})

	_, err := pp.OnManagement(ctx, Message)
	assert.ErrorIs(t, err, wantErr)
}

func TestConnProviderFailurePropagates(t *testing.T) {
	ctx := bipipe.NewContext()
	wantErr := errors.New("no connection")
	pp := Stage(&tls.Config{}, func() (net.Conn, error) { return nil, wantErr }, 0).Apply(ctx)

	_, err := pp.OnManagement(ctx, Message)
	assert.ErrorIs(t, err, wantErr)
}

func TestUnrelatedManagementDeclines(t *testing.T) {
	ctx := bipipe.NewContext()
	pp := Stage(&tls.Config{}, func() (net.Conn, error) { return minimalConn(), nil }, 0).Apply(ctx)

	em, err := pp.OnManagement(ctx, "other")
	require.NoError(t, err)
	assert.True(t, bipipe.Declines(em))
}
