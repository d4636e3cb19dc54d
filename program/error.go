package program

import (
	"errors"
	"fmt"
)

// MemoError 备忘录程序自定义错误，数值即链上 Custom 错误码
type MemoError uint32

const (
	InsufficientBalance MemoError = iota
	OwnershipMismatch
	ExceedMaxMemoLen
)

// 错误码、错误描述与日志输出均由同一张表派生
var memoErrors = [...]struct {
	name    string
	err     string
	message string
}{
	InsufficientBalance: {"InsufficientBalance", "user balance is insufficient", "Error: insufficient balance for current user"},
	OwnershipMismatch:   {"OwnershipMismatch", "user is not the owner of current memo", "Error: user doesn't own memo"},
	ExceedMaxMemoLen:    {"ExceedMaxMemoLen", "exceed max memo length", "Error: user content exceeds max limit"},
}

func (e MemoError) valid() bool {
	return int(e) < len(memoErrors)
}

// Code 返回调用方可编程处理的错误码
func (e MemoError) Code() uint32 {
	return uint32(e)
}

func (e MemoError) Error() string {
	if !e.valid() {
		return fmt.Sprintf("unknown memo error %d", uint32(e))
	}
	return memoErrors[e].err
}

// Message 程序日志中打印的诊断信息
func (e MemoError) Message() string {
	if !e.valid() {
		return fmt.Sprintf("Error: unknown memo error %d", uint32(e))
	}
	return memoErrors[e].message
}

func (e MemoError) String() string {
	if !e.valid() {
		return fmt.Sprintf("MemoError(%d)", uint32(e))
	}
	return memoErrors[e].name
}

// ProgramError 转换为运行时可见的 Custom 错误
func (e MemoError) ProgramError() ProgramError {
	return Custom(uint32(e))
}

// MemoErrorFromCode 根据 Custom 错误码还原 MemoError
func MemoErrorFromCode(code uint32) (MemoError, bool) {
	e := MemoError(code)
	return e, e.valid()
}

// ProgramError 运行时可见的 64 位错误码
//
// 低 32 位为 Custom 错误码，内置错误占用高 32 位
type ProgramError uint64

const builtinShift = 32

const (
	customZero                ProgramError = 1 << builtinShift
	InvalidArgument           ProgramError = 2 << builtinShift
	InvalidInstructionData    ProgramError = 3 << builtinShift
	InvalidAccountData        ProgramError = 4 << builtinShift
	AccountDataTooSmall       ProgramError = 5 << builtinShift
	InsufficientFunds         ProgramError = 6 << builtinShift
	IncorrectProgramId        ProgramError = 7 << builtinShift
	MissingRequiredSignature  ProgramError = 8 << builtinShift
	AccountAlreadyInitialized ProgramError = 9 << builtinShift
	UninitializedAccount      ProgramError = 10 << builtinShift
	NotEnoughAccountKeys      ProgramError = 11 << builtinShift
	AccountBorrowFailed       ProgramError = 12 << builtinShift
	MaxSeedLengthExceeded     ProgramError = 13 << builtinShift
	InvalidSeeds              ProgramError = 14 << builtinShift
)

var builtinNames = map[ProgramError]string{
	InvalidArgument:           "InvalidArgument",
	InvalidInstructionData:    "InvalidInstructionData",
	InvalidAccountData:        "InvalidAccountData",
	AccountDataTooSmall:       "AccountDataTooSmall",
	InsufficientFunds:         "InsufficientFunds",
	IncorrectProgramId:        "IncorrectProgramId",
	MissingRequiredSignature:  "MissingRequiredSignature",
	AccountAlreadyInitialized: "AccountAlreadyInitialized",
	UninitializedAccount:      "UninitializedAccount",
	NotEnoughAccountKeys:      "NotEnoughAccountKeys",
	AccountBorrowFailed:       "AccountBorrowFailed",
	MaxSeedLengthExceeded:     "MaxSeedLengthExceeded",
	InvalidSeeds:              "InvalidSeeds",
}

// Custom 构造自定义错误，Custom(0) 按运行时约定编码为 1<<32
func Custom(code uint32) ProgramError {
	if code == 0 {
		return customZero
	}
	return ProgramError(code)
}

// BuiltinProgramError 根据运行时错误名称查找内置错误
func BuiltinProgramError(name string) (ProgramError, bool) {
	for e, n := range builtinNames {
		if n == name {
			return e, true
		}
	}
	return 0, false
}

// IsCustom 是否为程序自定义错误，是则返回自定义错误码
func (e ProgramError) IsCustom() (uint32, bool) {
	if e == customZero {
		return 0, true
	}
	if e>>builtinShift == 0 {
		return uint32(e), true
	}
	return 0, false
}

// Code 运行时错误码
func (e ProgramError) Code() uint64 {
	return uint64(e)
}

func (e ProgramError) Error() string {
	if code, ok := e.IsCustom(); ok {
		if memoErr, ok := MemoErrorFromCode(code); ok {
			return fmt.Sprintf("custom program error: %#x (%s)", code, memoErr.String())
		}
		return fmt.Sprintf("custom program error: %#x", code)
	}
	if name, ok := builtinNames[e]; ok {
		return name
	}
	return fmt.Sprintf("program error: %#x", uint64(e))
}

// ToProgramError 把处理器返回的任意错误映射为运行时错误码
func ToProgramError(err error) ProgramError {
	if err == nil {
		return 0
	}
	var memoErr MemoError
	if errors.As(err, &memoErr) {
		return memoErr.ProgramError()
	}
	var progErr ProgramError
	if errors.As(err, &progErr) {
		return progErr
	}
	return InvalidArgument
}
