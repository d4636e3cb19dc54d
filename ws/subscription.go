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
	"context"
	"sync"
)

type decoderFunc func([]byte) (interface{}, error)

// Subscription 单个订阅的原始消息流
type Subscription struct {
	req               *request
	subID             uint64
	stream            chan result
	err               chan error
	closeFunc         func(err error)
	closeOnce         sync.Once
	closed            bool
	unsubscribeMethod string
	decoderFunc       decoderFunc
}

func newSubscription(
	req *request,
	closeFunc func(err error),
	unsubscribeMethod string,
	decoderFunc decoderFunc,
) *Subscription {
	return &Subscription{
		req:               req,
		stream:            make(chan result, 200_000),
		err:               make(chan error, 100_000),
		closeFunc:         closeFunc,
		unsubscribeMethod: unsubscribeMethod,
		decoderFunc:       decoderFunc,
	}
}

func (s *Subscription) Recv(ctx context.Context) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case d, ok := <-s.stream:
		if !ok {
			return nil, ErrSubscriptionClosed
		}
		return d, nil
	case err := <-s.err:
		return nil, err
	}
}

func (s *Subscription) Unsubscribe() {
	s.unsubscribe(nil)
}

func (s *Subscription) unsubscribe(err error) {
	s.closeOnce.Do(func() {
		s.closeFunc(err)
		s.closed = true
		close(s.stream)
	})
}

// TypedSubscription 按通知类型解码后的订阅
type TypedSubscription[T any] struct {
	sub *Subscription
}

// Recv 阻塞等待下一条通知
func (sw *TypedSubscription[T]) Recv(ctx context.Context) (*T, error) {
	d, err := sw.sub.Recv(ctx)
	if err != nil {
		return nil, err
	}
	return d.(*T), nil
}

func (sw *TypedSubscription[T]) Err() <-chan error {
	return sw.sub.err
}

// Response 只取第一条通知，适用于 signatureSubscribe 这种一次性订阅
func (sw *TypedSubscription[T]) Response() <-chan *T {
	typedChan := make(chan *T, 1)
	go func(ch chan *T) {
		d, ok := <-sw.sub.stream
		if !ok {
			return
		}
		ch <- d.(*T)
	}(typedChan)
	return typedChan
}

func (sw *TypedSubscription[T]) Unsubscribe() {
	sw.sub.Unsubscribe()
}

func subscribeTyped[T any](
	cl *Client,
	params []interface{},
	conf map[string]interface{},
	subscriptionMethod string,
	unsubscribeMethod string,
) (*TypedSubscription[T], error) {
	genSub, err := cl.subscribe(
		params,
		conf,
		subscriptionMethod,
		unsubscribeMethod,
		func(msg []byte) (interface{}, error) {
			res := new(T)
			err := decodeResponseFromMessage(msg, res)
			return res, err
		},
	)
	if err != nil {
		return nil, err
	}
	return &TypedSubscription[T]{sub: genSub}, nil
}
