package program

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialKey() solana.PublicKey {
	var key solana.PublicKey
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestMemoEncodeGolden(t *testing.T) {
	memo := &Memo{
		Owner:     sequentialKey(),
		Content:   "hello",
		Timestamp: 1700000000,
	}
	data, err := memo.Encode()
	require.NoError(t, err)
	assert.Len(t, data, memo.Size())

	goldie.New(t).Assert(t, "memo_record", []byte(hex.EncodeToString(data)))
}

func TestMemoRoundTrip(t *testing.T) {
	for _, memo := range []*Memo{
		{Owner: sequentialKey(), Content: "hello", Timestamp: 1700000000},
		{Owner: solana.NewWallet().PublicKey(), Content: "", Timestamp: 0},
		{Owner: solana.NewWallet().PublicKey(), Content: strings.Repeat("m", MaxMemoSize), Timestamp: -1},
		{Owner: solana.NewWallet().PublicKey(), Content: "备忘录", Timestamp: 1 << 40},
	} {
		data, err := memo.Encode()
		require.NoError(t, err)

		got, err := DecodeMemo(data, MaxMemoSize)
		require.NoError(t, err)
		assert.Equal(t, memo, got)
	}
}

func TestDecodeMemoFromPaddedAccount(t *testing.T) {
	memo := &Memo{Owner: sequentialKey(), Content: "short", Timestamp: 42}
	data, err := memo.Encode()
	require.NoError(t, err)

	slot := make([]byte, MemoAccountSize(MaxMemoSize))
	copy(slot, data)

	got, err := DecodeMemo(slot, MaxMemoSize)
	require.NoError(t, err)
	assert.Equal(t, memo, got)

	slot[len(slot)-1] = 1
	_, err = DecodeMemo(slot, MaxMemoSize)
	assert.Error(t, err)
}

func TestDecodeMemoRejects(t *testing.T) {
	long := &Memo{Owner: sequentialKey(), Content: strings.Repeat("x", 16)}
	data, err := long.Encode()
	require.NoError(t, err)

	_, err = DecodeMemo(data, 8)
	assert.ErrorIs(t, err, errContentTooLong)

	got, err := DecodeMemo(data, 0)
	require.NoError(t, err)
	assert.Equal(t, long, got)

	_, err = DecodeMemo(data[:20], 0)
	assert.Error(t, err)

	bad := &Memo{Owner: sequentialKey(), Content: string([]byte{0xff})}
	data, err = bad.Encode()
	require.NoError(t, err)
	_, err = DecodeMemo(data, 0)
	assert.ErrorIs(t, err, errInvalidUTF8)
}

func TestMemoAccountSize(t *testing.T) {
	assert.Equal(t, 244, MemoAccountSize(MaxMemoSize))
	assert.Equal(t, 52, MemoAccountSize(8))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(make([]byte, 10)))
	assert.True(t, IsEmpty(make([]byte, MemoAccountSize(MaxMemoSize))))

	occupied := make([]byte, MemoAccountSize(MaxMemoSize))
	occupied[31] = 1
	assert.False(t, IsEmpty(occupied))

	// 只看 owner 字段
	tail := make([]byte, MemoAccountSize(MaxMemoSize))
	tail[40] = 1
	assert.True(t, IsEmpty(tail))
}
