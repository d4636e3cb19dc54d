package program

import (
	"github.com/gagliardetto/solana-go"
)

var defaultProcessor = NewProcessor(DefaultConfig())

// Entrypoint 宿主运行时的入口，使用默认配置处理一条指令
func Entrypoint(programID solana.PublicKey, accounts []*AccountInfo, data []byte) error {
	return defaultProcessor.ProcessInstruction(programID, accounts, data)
}
