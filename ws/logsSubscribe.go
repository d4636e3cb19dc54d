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
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

type LogResult struct {
	Context struct {
		Slot uint64
	} `json:"context"`
	Value struct {
		Signature solana.Signature `json:"signature"`
		// 交易成功时为 null
		Err  interface{} `json:"err"`
		Logs []string    `json:"logs"`
	} `json:"value"`
}

type LogSubscription = TypedSubscription[LogResult]

type LogsSubscribeFilterType string

const (
	// 除简单投票交易以外的全部交易
	LogsSubscribeFilterAll LogsSubscribeFilterType = "all"
	// 包含投票交易
	LogsSubscribeFilterAllWithVotes LogsSubscribeFilterType = "allWithVotes"
)

// LogsSubscribe 订阅交易日志
func (cl *Client) LogsSubscribe(
	filter LogsSubscribeFilterType,
	commitment rpc.CommitmentType,
) (*LogSubscription, error) {
	return cl.logsSubscribe(filter, commitment)
}

// LogsSubscribeMentions 订阅所有提及指定公钥的交易日志，传入程序 id 即可收到程序的 msg! 输出
func (cl *Client) LogsSubscribeMentions(
	mentions solana.PublicKey,
	commitment rpc.CommitmentType,
) (*LogSubscription, error) {
	return cl.logsSubscribe(
		rpc.M{
			"mentions": []string{mentions.String()},
		},
		commitment,
	)
}

func (cl *Client) logsSubscribe(
	filter interface{},
	commitment rpc.CommitmentType,
) (*LogSubscription, error) {
	params := []interface{}{filter}
	conf := map[string]interface{}{}
	if commitment != "" {
		conf["commitment"] = commitment
	}
	return subscribeTyped[LogResult](cl, params, conf, "logsSubscribe", "logsUnsubscribe")
}
