package memo

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

type ClientOption func(ctx context.Context, pool *RPCPool)

// RPCPool 多个 rpc 节点轮询使用，做简单的负载均衡，熔断中的节点会被跳过
type RPCPool struct {
	ctx context.Context // 父级上下文

	rpc  []*endpoint
	next atomic.Uint64
}

type endpoint struct {
	client  *rpc.Client
	breaker *breakerClient // WithRPCClient 传入的节点为 nil
}

func (ep *endpoint) healthy() bool {
	return ep.breaker == nil || !ep.breaker.open()
}

func (p *RPCPool) add(endpointURL string, client rpc.JSONRPCClient) {
	bc := newBreakerClient(endpointURL, client)
	p.rpc = append(p.rpc, &endpoint{
		client:  rpc.NewWithCustomRPCClient(bc),
		breaker: bc,
	})
}

// NewRPCPool 按选项创建节点池，没有配置任何节点时使用 network 的默认节点
func NewRPCPool(ctx context.Context, network rpc.Cluster, opt ...ClientOption) *RPCPool {
	p := &RPCPool{ctx: ctx}
	for _, fn := range opt {
		fn(ctx, p)
	}
	if len(p.rpc) == 0 {
		defaultRPC(network)(ctx, p)
	}
	return p
}

// Client 轮询返回下一个可用节点，全部熔断时仍按顺序返回
func (p *RPCPool) Client() *rpc.Client {
	n := uint64(len(p.rpc))
	start := p.next.Add(1) - 1
	for i := uint64(0); i < n; i++ {
		ep := p.rpc[(start+i)%n]
		if ep.healthy() {
			return ep.client
		}
	}
	return p.rpc[start%n].client
}

func (p *RPCPool) Len() int {
	return len(p.rpc)
}

// 默认的RPC节点，每秒1条请求
func defaultRPC(network rpc.Cluster) ClientOption {
	return func(ctx context.Context, pool *RPCPool) {
		pool.add(network.RPC, NewWithRateLimit(network.RPC, 1, nil))
	}
}

// WithRPCEndpoint 添加一个节点
//
//	httpClient 为空时使用默认客户端
//	rps 速度限制每秒请求多少次，0 表示不限速
func WithRPCEndpoint(endpoint string, httpClient *http.Client, headers map[string]string, rps int) ClientOption {
	return func(ctx context.Context, pool *RPCPool) {
		opts := &jsonrpc.RPCClientOpts{CustomHeaders: headers}
		if httpClient != nil {
			opts.HTTPClient = httpClient
		}
		if rps > 0 {
			pool.add(endpoint, NewWithRateLimit(endpoint, rps, opts))
			return
		}
		pool.add(endpoint, jsonrpc.NewClientWithOpts(endpoint, opts))
	}
}

// WithRPCProxy 添加一个走代理的节点
//
//	endpoint 节点地址
//	rps 速度限制每秒请求多少次（可选）
func WithRPCProxy(endpoint, proxy string, rps ...int) ClientOption {
	rp := 0
	if len(rps) > 0 {
		rp = rps[0]
	}
	httpClient, err := NewProxyHttpClient(proxy)
	if err != nil {
		zlog.Error("invalid rpc proxy, endpoint skipped", zap.String("endpoint", endpoint), zap.Error(err))
		return func(ctx context.Context, pool *RPCPool) {}
	}
	return WithRPCEndpoint(endpoint, httpClient, nil, rp)
}

// 设置一个已有的rpc节点
func WithRPCClient(client *rpc.Client) ClientOption {
	return func(ctx context.Context, pool *RPCPool) {
		pool.rpc = append(pool.rpc, &endpoint{client: client})
	}
}
