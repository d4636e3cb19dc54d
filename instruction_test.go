package memo

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unive3sal/memo/program"
)

func TestMemoInstructions(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()
	memoAddr, _, err := program.FindMemoAddress(programID, user)
	require.NoError(t, err)

	create, err := NewCreateMemoInstruction(programID, user, "hello")
	require.NoError(t, err)
	update, err := NewUpdateMemoInstruction(programID, user, "hello world")
	require.NoError(t, err)
	del, err := NewDeleteMemoInstruction(programID, user)
	require.NoError(t, err)

	cases := []struct {
		inst *MemoInstruction
		want program.Instruction
	}{
		{create, program.Create{Content: "hello"}},
		{update, program.Update{Content: "hello world"}},
		{del, program.Delete{}},
	}
	for _, c := range cases {
		t.Run(c.want.Type().String(), func(t *testing.T) {
			assert.Equal(t, programID, c.inst.ProgramID())
			assert.Equal(t, memoAddr, c.inst.Memo)
			assert.Equal(t, []*solana.AccountMeta{
				{PublicKey: memoAddr, IsSigner: false, IsWritable: true},
				{PublicKey: user, IsSigner: true, IsWritable: true},
				{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
			}, c.inst.Accounts())

			data, err := c.inst.Data()
			require.NoError(t, err)
			want, err := c.want.Encode()
			require.NoError(t, err)
			assert.Equal(t, want, data)

			// 链上程序能解出同一条指令
			decoded := &MemoData{}
			require.NoError(t, decoded.Decode(data))
			assert.Equal(t, c.want, decoded.Instruction)
		})
	}
}

func TestBaseInstruction_rawData(t *testing.T) {
	bi := &BaseInstruction{programID: solana.SystemProgramID, data: []byte{9}}
	data, err := bi.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, data)
}
