package memo

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/unive3sal/memo/program"
	"github.com/unive3sal/memo/ws"
)

// Client 备忘录程序客户端，状态变更全部交给链上程序判定
type Client struct {
	wallet      *Wallet
	programID   solana.PublicKey
	maxMemoSize int
}

// Dial 按配置创建钱包并返回客户端
func Dial(ctx context.Context, option ...Option) (*Client, error) {
	op, err := NewDefaultOption(ctx, option...)
	if err != nil {
		return nil, err
	}
	wallet, err := NewWallet(ctx, op)
	if err != nil {
		return nil, err
	}
	return NewClient(wallet, op.ProgramID), nil
}

func NewClient(wallet *Wallet, programID solana.PublicKey) *Client {
	return &Client{
		wallet:      wallet,
		programID:   programID,
		maxMemoSize: program.MaxMemoSize,
	}
}

func (c *Client) Wallet() *Wallet {
	return c.wallet
}

func (c *Client) ProgramID() solana.PublicKey {
	return c.programID
}

// FindMemoAddress 推导 owner 的备忘录账户地址
func (c *Client) FindMemoAddress(owner solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := program.FindMemoAddress(c.programID, owner)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(err, "find memo address of %s", owner)
	}
	return addr, nil
}

func (c *Client) CreateMemo(ctx context.Context, content string) (solana.Signature, error) {
	inst, err := NewCreateMemoInstruction(c.programID, c.wallet.PublicKey(), content)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.send(ctx, inst)
}

func (c *Client) UpdateMemo(ctx context.Context, content string) (solana.Signature, error) {
	inst, err := NewUpdateMemoInstruction(c.programID, c.wallet.PublicKey(), content)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.send(ctx, inst)
}

func (c *Client) DeleteMemo(ctx context.Context) (solana.Signature, error) {
	inst, err := NewDeleteMemoInstruction(c.programID, c.wallet.PublicKey())
	if err != nil {
		return solana.Signature{}, err
	}
	return c.send(ctx, inst)
}

func (c *Client) send(ctx context.Context, inst *MemoInstruction) (solana.Signature, error) {
	typ := inst.dataCoder.(*MemoData).Instruction.Type()
	zlog.Debug("sending memo instruction",
		zap.Stringer("type", typ),
		zap.Stringer("memo", inst.Memo),
		zap.Stringer("user", inst.User),
	)
	sig, err := c.wallet.SendTransaction(ctx, []solana.Instruction{inst})
	if err != nil {
		return sig, errors.Wrapf(err, "%s memo", typ)
	}
	return sig, nil
}

// RentExemptBalance 备忘录账户免租所需的最低余额
func (c *Client) RentExemptBalance(ctx context.Context) (uint64, error) {
	size := uint64(program.MemoAccountSize(c.maxMemoSize))
	lamports, err := c.wallet.GetClient().GetMinimumBalanceForRentExemption(ctx, size, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, errors.Wrap(err, "get minimum balance for rent exemption")
	}
	return lamports, nil
}

// GetMemo 读取 owner 的备忘录
//
// 账户不存在返回 ErrMemoNotFound，账户为空返回 ErrMemoEmpty
func (c *Client) GetMemo(ctx context.Context, owner solana.PublicKey) (*program.Memo, error) {
	addr, err := c.FindMemoAddress(owner)
	if err != nil {
		return nil, err
	}
	out, err := c.wallet.GetClient().GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, errors.Wrapf(ErrMemoNotFound, "memo %s", addr)
		}
		return nil, errors.Wrapf(err, "get memo account %s", addr)
	}
	return c.decodeAccount(addr, out.Value)
}

// GetMemos 批量读取备忘录，结果与 owners 顺序一致，不存在或为空的位置为 nil
func (c *Client) GetMemos(ctx context.Context, owners ...solana.PublicKey) ([]*program.Memo, error) {
	if len(owners) == 0 {
		return nil, nil
	}
	addrs := make([]solana.PublicKey, len(owners))
	for i, owner := range owners {
		addr, err := c.FindMemoAddress(owner)
		if err != nil {
			return nil, err
		}
		addrs[i] = addr
	}
	out, err := c.wallet.GetClient().GetMultipleAccountsWithOpts(ctx, addrs, &rpc.GetMultipleAccountsOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, errors.Wrap(err, "get memo accounts")
	}
	if len(out.Value) != len(addrs) {
		return nil, errors.Errorf("get memo accounts: expected %d accounts, got %d", len(addrs), len(out.Value))
	}

	memos := make([]*program.Memo, len(addrs))
	for i, acc := range out.Value {
		if acc == nil {
			continue
		}
		m, err := c.decodeAccount(addrs[i], acc)
		if errors.Is(err, ErrMemoEmpty) {
			continue
		}
		if err != nil {
			return nil, err
		}
		memos[i] = m
	}
	return memos, nil
}

func (c *Client) decodeAccount(addr solana.PublicKey, acc *rpc.Account) (*program.Memo, error) {
	if acc == nil || acc.Data == nil {
		return nil, errors.Wrapf(ErrMemoNotFound, "memo %s", addr)
	}
	if !acc.Owner.Equals(c.programID) {
		return nil, errors.Errorf("memo %s: account owned by %s", addr, acc.Owner)
	}
	data := acc.Data.GetBinary()
	if program.IsEmpty(data) {
		return nil, errors.Wrapf(ErrMemoEmpty, "memo %s", addr)
	}
	m, err := program.DecodeMemo(data, c.maxMemoSize)
	if err != nil {
		return nil, errors.Wrapf(err, "decode memo %s", addr)
	}
	return m, nil
}

// MemoWatcher 备忘录账户变更订阅
type MemoWatcher struct {
	client *Client
	addr   solana.PublicKey
	sub    *ws.AccountSubscription
}

// MemoEvent 一次账户变更，Memo 为 nil 表示备忘录已被删除
type MemoEvent struct {
	Slot uint64
	Memo *program.Memo
}

// WatchMemo 订阅 owner 的备忘录账户
func (c *Client) WatchMemo(owner solana.PublicKey, commitment rpc.CommitmentType) (*MemoWatcher, error) {
	addr, err := c.FindMemoAddress(owner)
	if err != nil {
		return nil, err
	}
	wsClient := c.wallet.GetWsClient()
	if wsClient == nil {
		return nil, errors.New("websocket client not configured")
	}
	sub, err := wsClient.AccountSubscribe(addr, commitment)
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe memo %s", addr)
	}
	zlog.Info("watching memo", zap.Stringer("memo", addr), zap.Stringer("owner", owner))
	return &MemoWatcher{client: c, addr: addr, sub: sub}, nil
}

func (mw *MemoWatcher) Address() solana.PublicKey {
	return mw.addr
}

// Recv 阻塞等待下一次变更
func (mw *MemoWatcher) Recv(ctx context.Context) (*MemoEvent, error) {
	got, err := mw.sub.Recv(ctx)
	if err != nil {
		return nil, err
	}
	acc := got.Value.Account
	m, err := mw.client.decodeAccount(mw.addr, &acc)
	if errors.Is(err, ErrMemoEmpty) {
		return &MemoEvent{Slot: got.Context.Slot}, nil
	}
	if err != nil {
		return nil, err
	}
	return &MemoEvent{Slot: got.Context.Slot, Memo: m}, nil
}

func (mw *MemoWatcher) Close() {
	mw.sub.Unsubscribe()
}
