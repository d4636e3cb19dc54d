// 版权所有 2021 github.com/gagliardetto
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
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

type SignatureResult struct {
	Context struct {
		Slot uint64
	} `json:"context"`
	Value struct {
		// 交易成功时为 null，失败时为 TransactionError
		Err interface{} `json:"err"`
	} `json:"value"`
}

type SignatureSubscription = TypedSubscription[SignatureResult]

// SignatureSubscribe 订阅交易确认通知，服务端推送一次后自动取消订阅
func (cl *Client) SignatureSubscribe(
	signature solana.Signature,
	commitment rpc.CommitmentType,
) (*SignatureSubscription, error) {
	params := []interface{}{signature.String()}
	conf := map[string]interface{}{}
	if commitment != "" {
		conf["commitment"] = commitment
	}
	return subscribeTyped[SignatureResult](cl, params, conf, "signatureSubscribe", "signatureUnsubscribe")
}

// WaitForSignature 等待交易确认，超时或 ctx 结束时返回错误
// 交易执行失败时返回服务端给出的 err 原值
func WaitForSignature(ctx context.Context, sub *SignatureSubscription, timeout time.Duration) (interface{}, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res, err := sub.Recv(ctx)
	if err != nil {
		return nil, err
	}
	return res.Value.Err, nil
}
