package memo

import (
	"context"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// 连续失败 breakerFailures 次后熔断，breakerTimeout 后半开重试
const (
	breakerFailures = 5
	breakerTimeout  = 30 * time.Second
)

var _ rpc.JSONRPCClient = &breakerClient{}

// breakerClient 按节点熔断，只有传输层错误计入失败
type breakerClient struct {
	rpc.JSONRPCClient
	cb *gobreaker.CircuitBreaker
}

func newBreakerClient(endpoint string, client rpc.JSONRPCClient) *breakerClient {
	return &breakerClient{
		JSONRPCClient: client,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        endpoint,
			MaxRequests: 1,
			Timeout:     breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				zlog.Warn("rpc endpoint breaker state changed",
					zap.String("endpoint", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
			IsSuccessful: nodeAnswered,
		}),
	}
}

// nodeAnswered 节点返回了 JSON-RPC 错误说明节点可用，调用方取消也不算节点故障
func nodeAnswered(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var rpcErr *jsonrpc.RPCError
	return errors.As(err, &rpcErr)
}

func (bc *breakerClient) open() bool {
	return bc.cb.State() == gobreaker.StateOpen
}

func (bc *breakerClient) CallForInto(ctx context.Context, out interface{}, method string, params []interface{}) error {
	_, err := bc.cb.Execute(func() (interface{}, error) {
		return nil, bc.JSONRPCClient.CallForInto(ctx, out, method, params)
	})
	return err
}

func (bc *breakerClient) CallWithCallback(
	ctx context.Context,
	method string,
	params []interface{},
	callback func(*http.Request, *http.Response) error,
) error {
	_, err := bc.cb.Execute(func() (interface{}, error) {
		return nil, bc.JSONRPCClient.CallWithCallback(ctx, method, params, callback)
	})
	return err
}

func (bc *breakerClient) CallBatch(ctx context.Context, requests jsonrpc.RPCRequests) (jsonrpc.RPCResponses, error) {
	out, err := bc.cb.Execute(func() (interface{}, error) {
		return bc.JSONRPCClient.CallBatch(ctx, requests)
	})
	if err != nil {
		return nil, err
	}
	return out.(jsonrpc.RPCResponses), nil
}
