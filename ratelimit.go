package memo

import (
	"context"
	"io"
	"net/http"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/ratelimit"
)

var _ rpc.JSONRPCClient = &clientWithRateLimiting{}

type clientWithRateLimiting struct {
	rpcClient   jsonrpc.RPCClient
	rateLimiter ratelimit.Limiter
}

// NewWithRateLimit 创建一个限速的 JSONRPC 客户端，rps 为每秒最多请求数
// opts 为空时使用默认的 http 客户端
func NewWithRateLimit(endpoint string, rps int, opts *jsonrpc.RPCClientOpts) rpc.JSONRPCClient {
	if opts == nil {
		opts = &jsonrpc.RPCClientOpts{}
	}
	return &clientWithRateLimiting{
		rpcClient:   jsonrpc.NewClientWithOpts(endpoint, opts),
		rateLimiter: ratelimit.New(rps),
	}
}

func (wr *clientWithRateLimiting) CallForInto(ctx context.Context, out interface{}, method string, params []interface{}) error {
	wr.rateLimiter.Take()
	return wr.rpcClient.CallForInto(ctx, out, method, params)
}

func (wr *clientWithRateLimiting) CallWithCallback(
	ctx context.Context,
	method string,
	params []interface{},
	callback func(*http.Request, *http.Response) error,
) error {
	wr.rateLimiter.Take()
	return wr.rpcClient.CallWithCallback(ctx, method, params, callback)
}

func (wr *clientWithRateLimiting) CallBatch(ctx context.Context, requests jsonrpc.RPCRequests) (jsonrpc.RPCResponses, error) {
	wr.rateLimiter.Take()
	return wr.rpcClient.CallBatch(ctx, requests)
}

func (wr *clientWithRateLimiting) Close() error {
	if c, ok := wr.rpcClient.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
