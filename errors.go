package memo

import (
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/pkg/errors"

	"github.com/unive3sal/memo/program"
)

var (
	ErrMemoNotFound = errors.New("memo not found")
	// ErrMemoEmpty 账户存在但没有备忘录（已删除或尚未写入）
	ErrMemoEmpty = errors.New("memo account is empty")
)

// TransactionError 交易中某条指令执行失败
type TransactionError struct {
	Index int
	// program.MemoError 或 program.ProgramError，无法识别时为原始描述
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("instruction %d failed: %s", e.Index, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// ParseTransactionError 解析交易状态中的 err 字段
//
//	{"InstructionError":[0,{"Custom":1}]} => program.OwnershipMismatch
//	{"InstructionError":[0,"InvalidSeeds"]} => program.InvalidSeeds
//
// txErr 为 nil 时返回 nil
func ParseTransactionError(txErr interface{}) error {
	if txErr == nil {
		return nil
	}
	obj, ok := txErr.(map[string]interface{})
	if !ok {
		return errors.Errorf("transaction failed: %v", txErr)
	}
	raw, ok := obj["InstructionError"]
	if !ok {
		return errors.Errorf("transaction failed: %v", txErr)
	}
	pair, ok := raw.([]interface{})
	if !ok || len(pair) != 2 {
		return errors.Errorf("transaction failed: malformed instruction error %v", raw)
	}
	index, ok := toUint64(pair[0])
	if !ok {
		return errors.Errorf("transaction failed: malformed instruction index %v", pair[0])
	}
	return &TransactionError{Index: int(index), Err: parseInstructionError(pair[1])}
}

func parseInstructionError(v interface{}) error {
	switch detail := v.(type) {
	case string:
		if progErr, ok := program.BuiltinProgramError(detail); ok {
			return progErr
		}
		return errors.New(detail)
	case map[string]interface{}:
		if custom, found := detail["Custom"]; found {
			code, ok := toUint64(custom)
			if !ok || code > uint64(^uint32(0)) {
				return errors.Errorf("malformed custom error %v", custom)
			}
			if memoErr, ok := program.MemoErrorFromCode(uint32(code)); ok {
				return memoErr
			}
			return program.Custom(uint32(code))
		}
	}
	return errors.Errorf("%v", v)
}

// fromRPCError 预检失败时节点把交易错误放在 RPCError.Data.err 中
func fromRPCError(err error) error {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return err
	}
	data, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return err
	}
	txErr, ok := data["err"]
	if !ok || txErr == nil {
		return err
	}
	if logs, ok := data["logs"].([]interface{}); ok && tracer.Enabled() {
		for _, l := range logs {
			zlog.Debug(fmt.Sprint(l))
		}
	}
	return ParseTransactionError(txErr)
}

func toUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 || n != float64(uint64(n)) {
			return 0, false
		}
		return uint64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil || i < 0 {
			return 0, false
		}
		return uint64(i), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint64:
		return n, true
	}
	return 0, false
}
