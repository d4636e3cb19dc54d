package program

import (
	"go.uber.org/zap"
)

// Config 处理器的可变参数
type Config struct {
	// MaxMemoSize 内容字节数上限
	MaxMemoSize int
	// Rent 创建备忘录时调用方需要满足的最低余额
	Rent Rent
	// Clock 写入时间戳使用的时钟
	Clock Clock
	// Logger 程序日志，为空时使用包级 logger
	Logger *zap.Logger
}

// DefaultConfig 默认配置：200 字节上限、运行时免租公式、本地时钟
func DefaultConfig() Config {
	return Config{
		MaxMemoSize: MaxMemoSize,
		Rent:        DefaultRent,
		Clock:       SystemClock,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxMemoSize <= 0 {
		c.MaxMemoSize = def.MaxMemoSize
	}
	if c.Rent == nil {
		c.Rent = def.Rent
	}
	if c.Clock == nil {
		c.Clock = def.Clock
	}
	if c.Logger == nil {
		c.Logger = zlog
	}
	return c
}

// AccountSize 在当前上限下一条备忘录占用的账户空间
func (c Config) AccountSize() int {
	return MemoAccountSize(c.withDefaults().MaxMemoSize)
}
