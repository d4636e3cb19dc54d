package memo

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/unive3sal/memo/ws"
)

// DefaultConfirmTimeout 等待交易确认的默认超时
var DefaultConfirmTimeout = 30 * time.Second

type Wallet struct {
	pool       *RPCPool
	wsRpc      *ws.Client
	HTTPClient *http.Client
	Address    string
	Base58Pkey string // base58格式的私钥
	HashPkey   string // hex格式的私钥

	ConfirmTimeout time.Duration

	*solana.Wallet
}

func NewWallet(ctx context.Context, option ...Option) (*Wallet, error) {
	op, err := NewDefaultOption(ctx, option...)
	if err != nil {
		return nil, err
	}
	wall, err := solana.WalletFromPrivateKeyBase58(op.Pkey)
	if err != nil {
		return nil, errors.Wrap(err, "load wallet")
	}

	zlog.Info("wallet loaded", zap.Stringer("address", wall.PublicKey()))
	return newWallet(wall, op.Pool, op.WsClient, op.HTTPClient), nil
}

func newWallet(wall *solana.Wallet, pool *RPCPool, wsClient *ws.Client, httpClient *http.Client) *Wallet {
	return &Wallet{
		pool:           pool,
		wsRpc:          wsClient,
		HTTPClient:     httpClient,
		Address:        wall.PublicKey().String(),
		Base58Pkey:     wall.PrivateKey.String(),
		HashPkey:       hexutil.Encode(wall.PrivateKey),
		ConfirmTimeout: DefaultConfirmTimeout,
		Wallet:         wall,
	}
}

// GetClient 轮询返回一个 rpc 节点
func (w *Wallet) GetClient() *rpc.Client {
	return w.pool.Client()
}

func (w *Wallet) GetWsClient() *ws.Client {
	return w.wsRpc
}

func (w *Wallet) GetBalance(ctx context.Context) (uint64, error) {
	out, err := w.GetClient().GetBalance(ctx, w.PublicKey(), rpc.CommitmentConfirmed)
	if err != nil {
		return 0, errors.Wrap(err, "get balance")
	}
	return out.Value, nil
}

// RequestAirdrop 向钱包空投 lamports 并等待确认，只在测试网和本地链可用
func (w *Wallet) RequestAirdrop(ctx context.Context, lamports uint64) (solana.Signature, error) {
	sig, err := w.GetClient().RequestAirdrop(ctx, w.PublicKey(), lamports, rpc.CommitmentConfirmed)
	if err != nil {
		return sig, errors.Wrap(err, "request airdrop")
	}
	zlog.Info("airdrop requested", zap.Stringer("signature", sig), zap.Uint64("lamports", lamports))
	if _, err := w.GetTransaction(ctx, sig, rpc.CommitmentConfirmed); err != nil {
		return sig, err
	}
	return sig, nil
}

// SendTransaction 构造、签名并广播交易，然后等待确认
//
// 钱包本身总是付款方和签名者，signer 为额外的签名私钥
func (w *Wallet) SendTransaction(ctx context.Context, instruction []solana.Instruction, signer ...solana.PrivateKey) (solana.Signature, error) {
	var sig solana.Signature
	recentBlockHash, err := w.GetClient().GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return sig, errors.Wrap(err, "get latest blockhash")
	}
	tx, err := solana.NewTransaction(
		instruction,
		recentBlockHash.Value.Blockhash,
		solana.TransactionPayer(w.PublicKey()),
	)
	if err != nil {
		return sig, errors.Wrap(err, "build transaction")
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.PublicKey()) {
			return &w.Wallet.PrivateKey
		}
		for i := range signer {
			if key.Equals(signer[i].PublicKey()) {
				return &signer[i]
			}
		}
		return nil
	}); err != nil {
		return sig, errors.Wrap(err, "sign transaction")
	}

	sig, err = w.GetClient().SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentProcessed,
		},
	)
	if err != nil {
		return sig, errors.Wrap(fromRPCError(err), "send transaction")
	}
	zlog.Info("transaction sent", zap.Stringer("signature", sig))
	if tracer.Enabled() {
		zlog.Debug("transaction detail", zap.String("tx", tx.String()))
	}

	if _, err := w.GetTransaction(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// GetTransaction 订阅交易状态直到确认
//
// 默认确认等级 processed，交易执行失败时返回 ParseTransactionError 的结果
func (w *Wallet) GetTransaction(ctx context.Context, sign solana.Signature, option ...rpc.CommitmentType) (bool, error) {
	var commitment = rpc.CommitmentProcessed
	if len(option) > 0 {
		commitment = option[0]
	}
	if w.wsRpc == nil {
		return false, errors.New("websocket client not configured")
	}
	sub, err := w.wsRpc.SignatureSubscribe(sign, commitment)
	if err != nil {
		return false, errors.Wrap(err, "subscribe signature")
	}
	defer sub.Unsubscribe()

	txErr, err := ws.WaitForSignature(ctx, sub, w.ConfirmTimeout)
	if err != nil {
		return false, errors.Wrapf(err, "confirm %s", sign)
	}
	if txErr != nil {
		err := ParseTransactionError(txErr)
		zlog.Info("transaction failed", zap.Stringer("signature", sign), zap.Error(err))
		return false, err
	}
	zlog.Info("transaction confirmed", zap.Stringer("signature", sign))
	return true, nil
}
