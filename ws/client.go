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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/buger/jsonparser"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var ErrSubscriptionClosed = errors.New("subscription closed")

type result interface{}

// Client solana 节点的 websocket 订阅客户端，断线后自动重连
type Client struct {
	rpcURL                  string
	parentCtx               context.Context
	conn                    *websocket.Conn
	connCtx                 context.Context
	connCtxCancel           context.CancelFunc
	lock                    sync.RWMutex
	subscriptionByRequestID map[uint64]*Subscription
	subscriptionByWSSubID   map[uint64]*Subscription
	shortID                 bool
	reconnectDelay          time.Duration
	httpHeader              http.Header
	dialer                  *websocket.Dialer
}

const (
	// 写消息的超时时间
	writeWait = 10 * time.Second
	// 等待下一个 pong 的时间
	pongWait = 60 * time.Second
	// ping 周期，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10
)

// Connect 创建新的websocket客户端连接到指定端点
func Connect(ctx context.Context, rpcEndpoint string) (c *Client, err error) {
	return ConnectWithOptions(ctx, rpcEndpoint, nil)
}

// ConnectWithOptions 按配置创建websocket客户端
// 可选的http头参数可用于传递基本认证参数
func ConnectWithOptions(ctx context.Context, rpcEndpoint string, opt *Options) (c *Client, err error) {
	if opt == nil {
		opt = &Options{}
	}
	c = &Client{
		parentCtx:               ctx,
		rpcURL:                  rpcEndpoint,
		subscriptionByRequestID: map[uint64]*Subscription{},
		subscriptionByWSSubID:   map[uint64]*Subscription{},
		shortID:                 opt.ShortID,
		reconnectDelay:          DefaultReconnectDelay,
	}

	dialer := &websocket.Dialer{
		Proxy:             http.ProxyFromEnvironment,
		HandshakeTimeout:  DefaultHandshakeTimeout,
		EnableCompression: true,
	}
	if opt.HandshakeTimeout > 0 {
		dialer.HandshakeTimeout = opt.HandshakeTimeout
	}
	if opt.Proxy != "" {
		proxyURL, err := url.Parse(opt.Proxy)
		if err != nil {
			return nil, fmt.Errorf("new ws client: parse proxy: %w", err)
		}
		dialer.Proxy = http.ProxyURL(proxyURL)
	}
	if opt.ReconnectDelay > 0 {
		c.reconnectDelay = opt.ReconnectDelay
	}
	if len(opt.HttpHeader) > 0 {
		c.httpHeader = opt.HttpHeader
	}
	c.dialer = dialer
	return c, c.reconnect()
}

func (c *Client) reconnect() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.connCtxCancel != nil {
		c.connCtxCancel()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	if c.parentCtx.Err() != nil {
		return nil
	}

	conn, resp, err := c.dialer.DialContext(c.parentCtx, c.rpcURL, c.httpHeader)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			err = fmt.Errorf("new ws client: dial: %w, status: %s, body: %q", err, resp.Status, string(body))
		} else {
			err = fmt.Errorf("new ws client: dial: %w", err)
		}
		zlog.Error("websocket dial failed", zap.String("endpoint", c.rpcURL), zap.Error(err))
		return err
	}
	c.conn = conn
	c.connCtx, c.connCtxCancel = context.WithCancel(c.parentCtx)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go c.keepAlive(c.connCtx)
	go c.receiveMessages(c.connCtx, conn)
	return nil
}

func (c *Client) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sendPing()
		}
	}
}

func (c *Client) sendPing() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
		zlog.Debug("unable to send ping", zap.Error(err))
	}
}

func (c *Client) Close() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.connCtxCancel != nil {
		c.connCtxCancel()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) receiveMessages(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.closeAllSubscription(err)
			go c.reconnectAfterDelay()
			return
		}
		c.handleMessage(message)
	}
}

func (c *Client) reconnectAfterDelay() {
	select {
	case <-c.parentCtx.Done():
		return
	case <-time.After(c.reconnectDelay):
	}
	if err := c.reconnect(); err != nil {
		go c.reconnectAfterDelay()
	}
}

func getUint64(data []byte, keys ...string) (val uint64, err error) {
	v, t, _, e := jsonparser.Get(data, keys...)
	if e != nil {
		return 0, e
	}
	if t != jsonparser.Number {
		return 0, fmt.Errorf("value is not a number: %s", string(v))
	}
	return strconv.ParseUint(string(v), 10, 64)
}

func getUint64WithOk(data []byte, path ...string) (uint64, bool) {
	val, err := getUint64(data, path...)
	if err == nil {
		return val, true
	}
	return 0, false
}

func (c *Client) handleMessage(message []byte) {
	// 带 id 的消息是订阅请求的应答，result 为订阅号，后续通知都用它路由
	requestID, ok := getUint64WithOk(message, "id")
	if ok {
		subID, _ := getUint64WithOk(message, "result")
		c.handleNewSubscriptionMessage(requestID, subID)
		return
	}

	subID, _ := getUint64WithOk(message, "params", "subscription")
	c.handleSubscriptionMessage(subID, message)
}

func (c *Client) handleNewSubscriptionMessage(requestID, subID uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if tracer.Enabled() {
		zlog.Debug("received new subscription message",
			zap.Uint64("message_id", requestID),
			zap.Uint64("subscription_id", subID),
		)
	}

	sub, found := c.subscriptionByRequestID[requestID]
	if !found {
		zlog.Error("cannot find websocket message handler for a new stream",
			zap.Uint64("request_id", requestID),
			zap.Uint64("subscription_id", subID),
		)
		return
	}
	sub.subID = subID
	c.subscriptionByWSSubID[subID] = sub

	zlog.Debug("registered ws subscription",
		zap.Uint64("subscription_id", subID),
		zap.Uint64("request_id", requestID),
		zap.Int("subscription_count", len(c.subscriptionByWSSubID)),
	)
}

func (c *Client) handleSubscriptionMessage(subID uint64, message []byte) {
	if tracer.Enabled() {
		zlog.Debug("received subscription message", zap.Uint64("subscription_id", subID))
	}

	c.lock.RLock()
	sub, found := c.subscriptionByWSSubID[subID]
	c.lock.RUnlock()
	if !found {
		zlog.Warn("unable to find subscription for ws message", zap.Uint64("subscription_id", subID))
		return
	}

	result, err := sub.decoderFunc(message)
	if err != nil {
		c.closeSubscription(sub.req.ID, fmt.Errorf("unable to decode client response: %w", err))
		return
	}

	// 这里不能阻塞，否则会卡住其它订阅的消息
	if len(sub.stream) >= cap(sub.stream) {
		zlog.Warn("closing ws client subscription, not consuming fast enough",
			zap.Uint64("request_id", sub.req.ID),
		)
		c.closeSubscription(sub.req.ID, fmt.Errorf("reached channel max capacity %d", len(sub.stream)))
		return
	}

	if !sub.closed {
		sub.stream <- result
	}
}

func (c *Client) closeAllSubscription(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	for _, sub := range c.subscriptionByRequestID {
		sub.err <- err
	}

	c.subscriptionByRequestID = map[uint64]*Subscription{}
	c.subscriptionByWSSubID = map[uint64]*Subscription{}
}

func (c *Client) closeSubscription(reqID uint64, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	sub, found := c.subscriptionByRequestID[reqID]
	if !found {
		return
	}
	if err != nil {
		sub.err <- err
	}

	if err := c.unsubscribe(sub.subID, sub.unsubscribeMethod); err != nil {
		zlog.Warn("unable to send rpc unsubscribe call", zap.Error(err))
	}

	delete(c.subscriptionByRequestID, sub.req.ID)
	delete(c.subscriptionByWSSubID, sub.subID)
}

func (c *Client) unsubscribe(subID uint64, method string) error {
	req := newRequest([]interface{}{subID}, method, nil, c.shortID)
	data, err := req.encode()
	if err != nil {
		return fmt.Errorf("unable to encode unsubscription message for subID %d and method %s", subID, method)
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("unable to send unsubscription message for subID %d and method %s: %w", subID, method, err)
	}
	return nil
}

func (c *Client) subscribe(
	params []interface{},
	conf map[string]interface{},
	subscriptionMethod string,
	unsubscribeMethod string,
	decoderFunc decoderFunc,
) (*Subscription, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	req := newRequest(params, subscriptionMethod, conf, c.shortID)
	data, err := req.encode()
	if err != nil {
		return nil, fmt.Errorf("subscribe: unable to encode subscription request: %w", err)
	}

	sub := newSubscription(
		req,
		func(err error) {
			c.closeSubscription(req.ID, err)
		},
		unsubscribeMethod,
		decoderFunc,
	)

	c.subscriptionByRequestID[req.ID] = sub
	zlog.Info("added new subscription to websocket client",
		zap.String("method", subscriptionMethod),
		zap.Int("count", len(c.subscriptionByRequestID)),
	)

	if tracer.Enabled() {
		zlog.Debug("writing data to conn", zap.String("data", string(data)))
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		delete(c.subscriptionByRequestID, req.ID)
		return nil, fmt.Errorf("unable to write request: %w", err)
	}

	return sub, nil
}

func decodeResponseFromMessage(r []byte, reply interface{}) (err error) {
	var c *response
	if err := json.Unmarshal(r, &c); err != nil {
		return err
	}

	if c.Error != nil {
		jsonErr := &json2.Error{}
		if err := json.Unmarshal(*c.Error, jsonErr); err != nil {
			return &json2.Error{
				Code:    json2.E_SERVER,
				Message: string(*c.Error),
			}
		}
		return jsonErr
	}

	if c.Params == nil || c.Params.Result == nil {
		return json2.ErrNullResult
	}

	return json.Unmarshal(*c.Params.Result, reply)
}
