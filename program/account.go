package program

import (
	"github.com/gagliardetto/solana-go"
)

// AccountInfo 宿主运行时交给程序的账户句柄
//
// Data 为账户数据的可写视图，处理器只会修改目标备忘录账户的 Data 与 Owner
type AccountInfo struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey // 账户所属程序
	Lamports   uint64
	Data       []byte
	IsSigner   bool
	IsWritable bool
}

// accountIter 按调用约定的位置依次取出账户
type accountIter struct {
	accounts []*AccountInfo
	pos      int
}

func (it *accountIter) next() (*AccountInfo, error) {
	if it.pos >= len(it.accounts) {
		return nil, NotEnoughAccountKeys
	}
	acc := it.accounts[it.pos]
	it.pos++
	if acc == nil {
		return nil, NotEnoughAccountKeys
	}
	return acc, nil
}
