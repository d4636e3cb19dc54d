package memo

import (
	"github.com/gagliardetto/solana-go"

	"github.com/unive3sal/memo/program"
)

var _ solana.Instruction = &BaseInstruction{}

// BaseInstruction 基础指令实现，数据由 DataCoder 负责序列化
type BaseInstruction struct {
	programID solana.PublicKey
	accounts  []*solana.AccountMeta
	data      []byte
	dataCoder DataCoder
}

func (bi *BaseInstruction) ProgramID() solana.PublicKey {
	return bi.programID
}

func (bi *BaseInstruction) Accounts() []*solana.AccountMeta {
	return bi.accounts
}

func (bi *BaseInstruction) Data() ([]byte, error) {
	if bi.dataCoder != nil {
		return bi.dataCoder.Encode()
	}
	return bi.data, nil
}

// DataCoder 数据编码接口
type DataCoder interface {
	Encode() ([]byte, error)
	Decode([]byte) error
}

// MemoData 备忘录指令数据编码器
type MemoData struct {
	Instruction program.Instruction
}

func (md *MemoData) Encode() ([]byte, error) {
	return md.Instruction.Encode()
}

func (md *MemoData) Decode(data []byte) error {
	inst, err := program.DecodeInstruction(data)
	if err != nil {
		return err
	}
	md.Instruction = inst
	return nil
}

// MemoInstruction 备忘录程序指令
//
// 账户顺序：[0] 备忘录 PDA（可写）[1] 用户（签名、可写）[2] 系统程序
type MemoInstruction struct {
	BaseInstruction
	Memo solana.PublicKey
	User solana.PublicKey
}

func newMemoInstruction(programID, user solana.PublicKey, inst program.Instruction) (*MemoInstruction, error) {
	memoAddr, _, err := program.FindMemoAddress(programID, user)
	if err != nil {
		return nil, err
	}
	return &MemoInstruction{
		BaseInstruction: BaseInstruction{
			programID: programID,
			accounts: []*solana.AccountMeta{
				{PublicKey: memoAddr, IsSigner: false, IsWritable: true},
				{PublicKey: user, IsSigner: true, IsWritable: true},
				{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
			},
			dataCoder: &MemoData{Instruction: inst},
		},
		Memo: memoAddr,
		User: user,
	}, nil
}

func NewCreateMemoInstruction(programID, user solana.PublicKey, content string) (*MemoInstruction, error) {
	return newMemoInstruction(programID, user, program.Create{Content: content})
}

func NewUpdateMemoInstruction(programID, user solana.PublicKey, content string) (*MemoInstruction, error) {
	return newMemoInstruction(programID, user, program.Update{Content: content})
}

func NewDeleteMemoInstruction(programID, user solana.PublicKey) (*MemoInstruction, error) {
	return newMemoInstruction(programID, user, program.Delete{})
}
