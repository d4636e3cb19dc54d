package memo

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"

	"github.com/unive3sal/memo/ws"
)

// DefaultProgramID 本地链上部署的 memo 程序地址
var DefaultProgramID = solana.MustPublicKeyFromBase58("9MmgBLZf5wEYbrMwp37o3SGP3r7fXfB5dZWigMYeGkLc")

type Option struct {
	Pool        *RPCPool
	RpcClient   *rpc.Client
	WsClient    *ws.Client
	WsUrl       string
	RpcUrl      string
	Pkey        string // base58 私钥
	KeypairFile string // solana-keygen 生成的 json 文件，Pkey 为空时使用
	ProgramID   solana.PublicKey
	Headers     map[string]string
	HTTPClient  *http.Client
	Proxy       string
	WsProxy     string
	TimeOut     time.Duration
	RPS         int // 每秒最多请求数，0 表示不限速
}

// NewDefaultOption 构建一个新的配置项，未设置的字段使用 devnet 默认值
func NewDefaultOption(ctx context.Context, option ...Option) (Option, error) {
	result := Option{}
	if len(option) > 0 {
		result = option[0]
	}
	if result.RpcUrl == "" {
		result.RpcUrl = rpc.DevNet_RPC
	}
	if result.WsUrl == "" {
		result.WsUrl = rpc.DevNet_WS
	}
	if result.Headers == nil {
		result.Headers = map[string]string{}
	}
	if result.ProgramID.IsZero() {
		result.ProgramID = DefaultProgramID
	}

	if result.HTTPClient == nil {
		if result.Proxy != "" {
			client, err := NewProxyHttpClient(result.Proxy)
			if err != nil {
				return result, err
			}
			result.HTTPClient = client
		} else {
			result.HTTPClient = &http.Client{}
		}
	}
	// 如果用户没有设置请求超时，则默认请求5秒后超时
	if result.TimeOut == 0 {
		result.TimeOut = 5 * time.Second
	}
	// 复制一份再设置超时，不修改调用方传入的客户端（可能是 http.DefaultClient）
	httpClient := *result.HTTPClient
	httpClient.Timeout = result.TimeOut
	result.HTTPClient = &httpClient

	if result.Pool == nil {
		if result.RpcClient != nil {
			result.Pool = NewRPCPool(ctx, rpc.DevNet, WithRPCClient(result.RpcClient))
		} else {
			result.Pool = NewRPCPool(ctx, rpc.DevNet,
				WithRPCEndpoint(result.RpcUrl, result.HTTPClient, result.Headers, result.RPS),
			)
		}
	}
	if result.RpcClient == nil {
		result.RpcClient = result.Pool.Client()
	}

	if result.WsClient == nil {
		wsClient, err := ws.ConnectWithOptions(ctx, result.WsUrl, &ws.Options{
			Proxy: result.WsProxy,
		})
		if err != nil {
			return result, errors.Wrapf(err, "connect %s", result.WsUrl)
		}
		result.WsClient = wsClient
	}

	if result.Pkey == "" {
		if result.KeypairFile != "" {
			key, err := solana.PrivateKeyFromSolanaKeygenFile(result.KeypairFile)
			if err != nil {
				return result, errors.Wrapf(err, "load keypair %s", result.KeypairFile)
			}
			result.Pkey = key.String()
		} else {
			result.Pkey = solana.NewWallet().PrivateKey.String()
		}
	}

	return result, nil
}

// NewProxyHttpClient 创建一个支持代理的HTTP/HTTPS客户端
func NewProxyHttpClient(proxy string) (*http.Client, error) {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return nil, errors.Wrap(err, "parse proxy url")
	}

	// 克隆默认Transport以保留其他配置（如TLS、连接池）
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(proxyURL)

	return &http.Client{
		Transport: transport,
	}, nil
}
