package program

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
)

// InstructionType borsh 枚举标签
type InstructionType uint8

const (
	InstructionCreate InstructionType = iota
	InstructionUpdate
	InstructionDelete
)

func (t InstructionType) String() string {
	switch t {
	case InstructionCreate:
		return "Create"
	case InstructionUpdate:
		return "Update"
	case InstructionDelete:
		return "Delete"
	}
	return fmt.Sprintf("InstructionType(%d)", uint8(t))
}

// Instruction 调用方可发起的三种操作，集合是封闭的
type Instruction interface {
	Type() InstructionType
	Encode() ([]byte, error)
	isInstruction()
}

// Create 创建并写入一条新的备忘录
type Create struct {
	Content string
}

// Update 替换已有备忘录的内容与时间戳
type Update struct {
	Content string
}

// Delete 删除已有备忘录
type Delete struct{}

func (Create) Type() InstructionType { return InstructionCreate }
func (Update) Type() InstructionType { return InstructionUpdate }
func (Delete) Type() InstructionType { return InstructionDelete }

func (Create) isInstruction() {}
func (Update) isInstruction() {}
func (Delete) isInstruction() {}

func (i Create) Encode() ([]byte, error) { return encodeInstruction(InstructionCreate, &i.Content) }
func (i Update) Encode() ([]byte, error) { return encodeInstruction(InstructionUpdate, &i.Content) }
func (Delete) Encode() ([]byte, error)   { return encodeInstruction(InstructionDelete, nil) }

func encodeInstruction(typ InstructionType, content *string) ([]byte, error) {
	buf := new(bytes.Buffer)
	encoder := bin.NewBorshEncoder(buf)
	if err := encoder.WriteUint8(uint8(typ)); err != nil {
		return nil, err
	}
	if content != nil {
		if err := encoder.WriteString(*content); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeInstruction 解析指令数据，任何不符合三种格式的输入都返回 InvalidInstructionData
func DecodeInstruction(data []byte) (Instruction, error) {
	decoder := bin.NewBorshDecoder(data)
	tag, err := decoder.ReadUint8()
	if err != nil {
		return nil, InvalidInstructionData
	}

	var inst Instruction
	switch InstructionType(tag) {
	case InstructionCreate, InstructionUpdate:
		content, err := decoder.ReadString()
		if err != nil || !utf8.ValidString(content) {
			return nil, InvalidInstructionData
		}
		if InstructionType(tag) == InstructionCreate {
			inst = Create{Content: content}
		} else {
			inst = Update{Content: content}
		}
	case InstructionDelete:
		inst = Delete{}
	default:
		return nil, InvalidInstructionData
	}

	if decoder.HasRemaining() {
		return nil, InvalidInstructionData
	}
	return inst, nil
}
