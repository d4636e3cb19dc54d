package memo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unive3sal/memo/program"
)

type rpcHandler func(params []json.RawMessage) (interface{}, *jsonrpc.RPCError)

// newRPCServer 按方法名分发的假 JSON-RPC 节点
func newRPCServer(t *testing.T, handlers map[string]rpcHandler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		handler, ok := handlers[req.Method]
		if !ok {
			resp["error"] = &jsonrpc.RPCError{Code: -32601, Message: "Method not found"}
		} else if result, rpcErr := handler(req.Params); rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, programID solana.PublicKey, handlers map[string]rpcHandler) *Client {
	t.Helper()
	srv := newRPCServer(t, handlers)
	pool := NewRPCPool(context.Background(), rpc.LocalNet, WithRPCEndpoint(srv.URL, nil, nil, 0))
	return NewClient(newWallet(solana.NewWallet(), pool, nil, nil), programID)
}

func accountJSON(owner solana.PublicKey, data []byte) map[string]interface{} {
	return map[string]interface{}{
		"lamports":   2589120,
		"owner":      owner.String(),
		"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
		"executable": false,
		"rentEpoch":  0,
	}
}

func memoAccountData(t *testing.T, m *program.Memo) []byte {
	t.Helper()
	record, err := m.Encode()
	require.NoError(t, err)
	data := make([]byte, program.MemoAccountSize(program.MaxMemoSize))
	copy(data, record)
	return data
}

func withContext(value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": 100},
		"value":   value,
	}
}

func TestClient_GetMemo(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	stored := &program.Memo{Owner: owner, Content: "hello", Timestamp: 1700000000}

	cases := []struct {
		name    string
		value   interface{}
		want    *program.Memo
		wantErr error
	}{
		{name: "occupied", value: accountJSON(programID, memoAccountData(t, stored)), want: stored},
		{name: "missing", value: nil, wantErr: ErrMemoNotFound},
		{name: "empty", value: accountJSON(programID, make([]byte, 244)), wantErr: ErrMemoEmpty},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			addr, _, err := program.FindMemoAddress(programID, owner)
			require.NoError(t, err)

			client := newTestClient(t, programID, map[string]rpcHandler{
				"getAccountInfo": func(params []json.RawMessage) (interface{}, *jsonrpc.RPCError) {
					var key string
					if err := json.Unmarshal(params[0], &key); err != nil || key != addr.String() {
						return nil, &jsonrpc.RPCError{Code: -32602, Message: "unexpected account"}
					}
					return withContext(c.value), nil
				},
			})

			got, err := client.GetMemo(context.Background(), owner)
			if c.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, c.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestClient_GetMemo_foreignOwner(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	client := newTestClient(t, programID, map[string]rpcHandler{
		"getAccountInfo": func([]json.RawMessage) (interface{}, *jsonrpc.RPCError) {
			return withContext(accountJSON(solana.TokenProgramID, []byte{1, 2, 3})), nil
		},
	})

	_, err := client.GetMemo(context.Background(), owner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owned by "+solana.TokenProgramID.String())
}

func TestClient_GetMemo_rpcError(t *testing.T) {
	client := newTestClient(t, solana.NewWallet().PublicKey(), map[string]rpcHandler{})

	_, err := client.GetMemo(context.Background(), solana.NewWallet().PublicKey())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMemoNotFound))
	assert.Contains(t, err.Error(), "Method not found")
}

func TestClient_GetMemos(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	carol := solana.NewWallet().PublicKey()
	aliceMemo := &program.Memo{Owner: alice, Content: "备忘录", Timestamp: 42}

	client := newTestClient(t, programID, map[string]rpcHandler{
		"getMultipleAccounts": func(params []json.RawMessage) (interface{}, *jsonrpc.RPCError) {
			var keys []string
			if err := json.Unmarshal(params[0], &keys); err != nil || len(keys) != 3 {
				return nil, &jsonrpc.RPCError{Code: -32602, Message: "unexpected accounts"}
			}
			return withContext([]interface{}{
				accountJSON(programID, memoAccountData(t, aliceMemo)),
				nil,
				accountJSON(programID, make([]byte, 244)),
			}), nil
		},
	})

	memos, err := client.GetMemos(context.Background(), alice, bob, carol)
	require.NoError(t, err)
	require.Len(t, memos, 3)
	assert.Equal(t, aliceMemo, memos[0])
	assert.Nil(t, memos[1])
	assert.Nil(t, memos[2])

	memos, err = client.GetMemos(context.Background())
	require.NoError(t, err)
	assert.Nil(t, memos)
}

func TestClient_RentExemptBalance(t *testing.T) {
	client := newTestClient(t, solana.NewWallet().PublicKey(), map[string]rpcHandler{
		"getMinimumBalanceForRentExemption": func(params []json.RawMessage) (interface{}, *jsonrpc.RPCError) {
			var size uint64
			if err := json.Unmarshal(params[0], &size); err != nil || size != 244 {
				return nil, &jsonrpc.RPCError{Code: -32602, Message: "unexpected size"}
			}
			return program.DefaultRent.MinimumBalance(int(size)), nil
		},
	})

	lamports, err := client.RentExemptBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2589120), lamports)
}

func TestClient_FindMemoAddress(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	client := NewClient(nil, programID)

	got, err := client.FindMemoAddress(owner)
	require.NoError(t, err)
	want, _, err := solana.FindProgramAddress([][]byte{[]byte("memo"), owner[:]}, programID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWallet_GetTransaction_noWebsocket(t *testing.T) {
	w := newWallet(solana.NewWallet(), nil, nil, nil)
	_, err := w.GetTransaction(context.Background(), solana.Signature{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "websocket client not configured")
}
