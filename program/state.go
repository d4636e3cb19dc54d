package program

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// MaxMemoSize 单条备忘录内容允许的最大字节数
const MaxMemoSize = 200

const (
	ownerSize     = solana.PublicKeyLength
	lengthSize    = 4
	timestampSize = 8
)

// MemoAccountSize 返回能容纳内容上限为 maxMemoSize 的备忘录所需的账户空间
//
//	owner(32) || len(u32) || content(maxMemoSize) || timestamp(i64)
func MemoAccountSize(maxMemoSize int) int {
	return ownerSize + lengthSize + maxMemoSize + timestampSize
}

var (
	errContentTooLong = errors.New("memo content exceeds ceiling")
	errInvalidUTF8    = errors.New("memo content is not valid utf-8")
)

// Memo 链上持久化的备忘录记录，每个账户一条
type Memo struct {
	Owner     solana.PublicKey
	Content   string
	Timestamp int64 // unix 秒
}

// Size 序列化后的字节数
func (m *Memo) Size() int {
	return ownerSize + lengthSize + len(m.Content) + timestampSize
}

func (m Memo) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBytes(m.Owner[:], false); err != nil {
		return err
	}
	if err := encoder.WriteString(m.Content); err != nil {
		return err
	}
	return encoder.WriteInt64(m.Timestamp, bin.LE)
}

func (m *Memo) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	owner, err := decoder.ReadNBytes(ownerSize)
	if err != nil {
		return fmt.Errorf("read owner: %w", err)
	}
	m.Owner = solana.PublicKeyFromBytes(owner)

	if m.Content, err = decoder.ReadString(); err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	if !utf8.ValidString(m.Content) {
		return errInvalidUTF8
	}

	if m.Timestamp, err = decoder.ReadInt64(bin.LE); err != nil {
		return fmt.Errorf("read timestamp: %w", err)
	}
	return nil
}

// Encode 按 borsh 布局编码备忘录
func (m *Memo) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := m.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMemo 从账户数据中解析备忘录，记录之后的零填充会被忽略
//
// maxMemoSize 用于拒绝超出上限的内容，传 0 表示不限制
func DecodeMemo(data []byte, maxMemoSize int) (*Memo, error) {
	memo := new(Memo)
	decoder := bin.NewBorshDecoder(data)
	if err := memo.UnmarshalWithDecoder(decoder); err != nil {
		return nil, err
	}
	if maxMemoSize > 0 && len(memo.Content) > maxMemoSize {
		return nil, fmt.Errorf("%w: %d > %d", errContentTooLong, len(memo.Content), maxMemoSize)
	}
	for _, b := range data[decoder.Position():] {
		if b != 0 {
			return nil, errors.New("unexpected trailing bytes after memo")
		}
	}
	return memo, nil
}

// IsEmpty 账户数据为空或 owner 字段全零时视为未初始化（新分配或已删除）
func IsEmpty(data []byte) bool {
	prefix := data
	if len(prefix) > ownerSize {
		prefix = prefix[:ownerSize]
	}
	for _, b := range prefix {
		if b != 0 {
			return false
		}
	}
	return true
}
