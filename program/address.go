package program

import (
	"github.com/gagliardetto/solana-go"
)

// MemoSeed 备忘录账户 PDA 的固定种子前缀
const MemoSeed = "memo"

// FindMemoAddress 推导 owner 在 programID 下唯一的备忘录账户地址
func FindMemoAddress(programID, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		[]byte(MemoSeed),
		owner[:],
	}, programID)
}
