package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/unive3sal/memo"
)

// Config 命令行配置文件
type Config struct {
	RpcURL    string        `yaml:"rpc_url" validate:"required,url"`
	WsURL     string        `yaml:"ws_url" validate:"required,url"`
	Proxy     string        `yaml:"proxy,omitempty" validate:"omitempty,url"`
	WsProxy   string        `yaml:"ws_proxy,omitempty" validate:"omitempty,url"`
	Keypair   string        `yaml:"keypair"`                        // solana-keygen 生成的私钥文件
	ProgramID string        `yaml:"program_id" validate:"required"` // base58
	Timeout   time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
	RPS       int           `yaml:"rps,omitempty" validate:"gte=0"`
}

var configValidator = newValidator()

// 校验错误里使用 yaml 字段名
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (cfg *Config) validate() error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (%v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

const defaultConfigFileName = "memo.yaml"

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultConfigFileName
	}
	return filepath.Join(home, ".config", "memo", defaultConfigFileName)
}

func defaultKeypairPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "solana", "id.json")
}

// loadConfig 读取配置文件，required 为 false 时文件不存在不算错误
func loadConfig(path string, required bool) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
		zlog.Debug("config loaded", zap.String("path", path))
	case os.IsNotExist(err) && !required:
	default:
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.RpcURL == "" {
		cfg.RpcURL = rpc.LocalNet_RPC
	}
	if cfg.WsURL == "" {
		cfg.WsURL = rpc.LocalNet_WS
	}
	if cfg.Keypair == "" {
		cfg.Keypair = defaultKeypairPath()
	}
	if cfg.ProgramID == "" {
		cfg.ProgramID = memo.DefaultProgramID.String()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
}

func (cfg *Config) programID() (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(err, "invalid program id %q", cfg.ProgramID)
	}
	return key, nil
}

// privateKey 私钥文件不存在时返回 nil，由调用方决定是否生成临时钱包
func (cfg *Config) privateKey() (solana.PrivateKey, error) {
	if cfg.Keypair == "" {
		return nil, nil
	}
	if _, err := os.Stat(cfg.Keypair); os.IsNotExist(err) {
		return nil, nil
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(cfg.Keypair)
	if err != nil {
		return nil, errors.Wrapf(err, "load keypair %s", cfg.Keypair)
	}
	return key, nil
}

func (cfg *Config) option() (memo.Option, error) {
	programID, err := cfg.programID()
	if err != nil {
		return memo.Option{}, err
	}
	op := memo.Option{
		RpcUrl:    cfg.RpcURL,
		WsUrl:     cfg.WsURL,
		Proxy:     cfg.Proxy,
		WsProxy:   cfg.WsProxy,
		ProgramID: programID,
		TimeOut:   cfg.Timeout,
		RPS:       cfg.RPS,
	}
	key, err := cfg.privateKey()
	if err != nil {
		return op, err
	}
	if key != nil {
		op.Pkey = key.String()
	}
	return op, nil
}

func (cfg *Config) dial(ctx context.Context) (*memo.Client, error) {
	op, err := cfg.option()
	if err != nil {
		return nil, err
	}
	return memo.Dial(ctx, op)
}
