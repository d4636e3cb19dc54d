package program

import (
	"time"
)

// Clock 提供当前链上时间（unix 秒）
type Clock interface {
	UnixTimestamp() int64
}

// ClockFunc 函数适配 Clock
type ClockFunc func() int64

func (f ClockFunc) UnixTimestamp() int64 { return f() }

// SystemClock 使用本地时间的默认时钟
var SystemClock Clock = ClockFunc(func() int64 { return time.Now().Unix() })

// Rent 给出账户长期保留所需的最低余额
type Rent interface {
	MinimumBalance(dataLen int) uint64
}

const (
	// AccountStorageOverhead 每个账户在数据之外额外计费的字节数
	AccountStorageOverhead = 128
	// DefaultLamportsPerByteYear 每字节每年的租金
	DefaultLamportsPerByteYear = 3480
	// DefaultExemptionThreshold 免租需要预存的年数
	DefaultExemptionThreshold = 2.0
)

// RentSchedule 按运行时的免租公式计算
type RentSchedule struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

// DefaultRent 主网当前的租金参数
var DefaultRent = RentSchedule{
	LamportsPerByteYear: DefaultLamportsPerByteYear,
	ExemptionThreshold:  DefaultExemptionThreshold,
}

func (r RentSchedule) MinimumBalance(dataLen int) uint64 {
	bytes := uint64(AccountStorageOverhead + dataLen)
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// FixedRent 与数据长度无关的固定门槛，一般由宿主环境直接给定
type FixedRent uint64

func (r FixedRent) MinimumBalance(int) uint64 { return uint64(r) }
