package memo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCPool_roundRobin(t *testing.T) {
	a, b, c := rpc.New("http://a"), rpc.New("http://b"), rpc.New("http://c")
	pool := NewRPCPool(context.Background(), rpc.LocalNet, WithRPCClient(a), WithRPCClient(b), WithRPCClient(c))

	require.Equal(t, 3, pool.Len())
	for i := 0; i < 2; i++ {
		assert.Same(t, a, pool.Client())
		assert.Same(t, b, pool.Client())
		assert.Same(t, c, pool.Client())
	}
}

func TestRPCPool_default(t *testing.T) {
	pool := NewRPCPool(context.Background(), rpc.LocalNet)
	assert.Equal(t, 1, pool.Len())
	assert.NotNil(t, pool.Client())
}

func TestWithRPCProxy(t *testing.T) {
	pool := NewRPCPool(context.Background(), rpc.LocalNet,
		WithRPCProxy(rpc.LocalNet.RPC, "http://127.0.0.1:7890", 5),
		WithRPCProxy(rpc.LocalNet.RPC, "://bad"),
	)
	assert.Equal(t, 1, pool.Len())
}

func TestNewProxyHttpClient(t *testing.T) {
	client, err := NewProxyHttpClient("http://127.0.0.1:7890")
	require.NoError(t, err)
	assert.NotNil(t, client.Transport)

	_, err = NewProxyHttpClient("://bad")
	require.Error(t, err)
}

func TestNewWithRateLimit(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"getBalance": func([]json.RawMessage) (interface{}, *jsonrpc.RPCError) {
			return withContext(7), nil
		},
	})
	client := rpc.NewWithCustomRPCClient(NewWithRateLimit(srv.URL, 100, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := client.GetBalance(ctx, solana.SystemProgramID, rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), out.Value)
}

func deadEndpoint(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestBreakerClient(t *testing.T) {
	bc := newBreakerClient("dead", jsonrpc.NewClientWithOpts(deadEndpoint(t), nil))
	ctx := context.Background()

	var out interface{}
	for i := 0; i < breakerFailures; i++ {
		err := bc.CallForInto(ctx, &out, "getHealth", nil)
		require.Error(t, err)
		assert.NotEqual(t, gobreaker.ErrOpenState, err)
	}
	assert.True(t, bc.open())
	assert.Equal(t, gobreaker.ErrOpenState, bc.CallForInto(ctx, &out, "getHealth", nil))
}

func TestBreakerClient_rpcErrorKeepsClosed(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{})
	bc := newBreakerClient(srv.URL, jsonrpc.NewClientWithOpts(srv.URL, nil))

	var out interface{}
	for i := 0; i < breakerFailures+1; i++ {
		err := bc.CallForInto(context.Background(), &out, "getHealth", nil)
		var rpcErr *jsonrpc.RPCError
		require.ErrorAs(t, err, &rpcErr)
	}
	assert.False(t, bc.open())
}

func TestRPCPool_skipsOpenBreaker(t *testing.T) {
	live := newRPCServer(t, map[string]rpcHandler{
		"getBalance": func([]json.RawMessage) (interface{}, *jsonrpc.RPCError) {
			return withContext(1), nil
		},
	})
	pool := NewRPCPool(context.Background(), rpc.LocalNet,
		WithRPCEndpoint(deadEndpoint(t), nil, nil, 0),
		WithRPCEndpoint(live.URL, nil, nil, 0),
	)
	dead := pool.rpc[0]
	for i := 0; i < breakerFailures; i++ {
		_, err := dead.client.GetBalance(context.Background(), solana.SystemProgramID, "")
		require.Error(t, err)
	}
	require.False(t, dead.healthy())

	for i := 0; i < 4; i++ {
		assert.Same(t, pool.rpc[1].client, pool.Client())
	}
	out, err := pool.Client().GetBalance(context.Background(), solana.SystemProgramID, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out.Value)
}
