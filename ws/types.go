// 版权所有 2021 github.com/gagliardetto
// 本文件已被github.com/gagliardetto修改
//
// 版权所有 2020 dfuse Platform Inc.
//
// 根据Apache许可证2.0版授权
// 除非遵守许可证，否则不得使用此文件
// 您可以在以下网址获取许可证副本
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// 除非适用法律要求或书面同意，软件
// 根据许可证分发是基于"按原样"的基础，
// 没有任何明示或暗示的保证或条件
// 请参阅许可证了解特定语言的权限和限制

package ws

import (
	stdjson "encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type request struct {
	Version string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      uint64      `json:"id"`
}

func newRequest(params []interface{}, method string, conf map[string]interface{}, shortID bool) *request {
	if params != nil && len(conf) > 0 {
		params = append(params, conf)
	}
	id := uint64(rand.Int63())
	if shortID {
		// 部分节点不支持 int63 的请求 id
		id = uint64(rand.Int31())
	}
	return &request{
		Version: "2.0",
		Method:  method,
		Params:  params,
		ID:      id,
	}
}

func (r *request) encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode request: json marshal: %w", err)
	}
	return data, nil
}

type response struct {
	Version string              `json:"jsonrpc"`
	Params  *params             `json:"params"`
	Error   *stdjson.RawMessage `json:"error"`
}

type params struct {
	Result       *stdjson.RawMessage `json:"result"`
	Subscription int                 `json:"subscription"`
}

// Options ws 客户端连接参数
type Options struct {
	HttpHeader       http.Header
	HandshakeTimeout time.Duration
	ShortID          bool          // 使用 int31 作为请求 id
	Proxy            string        // http 代理地址
	ReconnectDelay   time.Duration // 连接断开后重连前的等待时间
}

var (
	DefaultHandshakeTimeout = 45 * time.Second
	DefaultReconnectDelay   = time.Second
)
