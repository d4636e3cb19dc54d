package main

import (
	"github.com/spf13/cobra"
	"github.com/streamingfast/logging"
	"go.uber.org/zap/zapcore"
)

// RootOptions 所有子命令共享的全局参数
type RootOptions struct {
	ConfigPath string
	RpcURL     string
	WsURL      string
	Keypair    string
	ProgramID  string
	Proxy      string
	Verbose    bool

	config *Config
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "memo",
		Short:         "Manage a single on-chain memo per wallet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zapcore.InfoLevel
			if opts.Verbose {
				level = zapcore.DebugLevel
			}
			logging.InstantiateLoggers(
				logging.WithDefaultLevel(level),
				logging.WithConsoleToStderr(),
			)

			cfg, err := loadConfig(opts.ConfigPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			opts.overlay(cmd, cfg)
			if err := cfg.validate(); err != nil {
				return err
			}
			opts.config = cfg
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", defaultConfigPath(), "config file")
	flags.StringVar(&opts.RpcURL, "rpc", "", "rpc endpoint")
	flags.StringVar(&opts.WsURL, "ws", "", "websocket endpoint")
	flags.StringVar(&opts.Keypair, "keypair", "", "solana-keygen keypair file")
	flags.StringVar(&opts.ProgramID, "program", "", "memo program id")
	flags.StringVar(&opts.Proxy, "proxy", "", "http proxy for rpc and websocket")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewAddressCommand(opts))
	cmd.AddCommand(NewAirdropCommand(opts))

	return cmd
}

// overlay 命令行参数覆盖配置文件
func (opts *RootOptions) overlay(cmd *cobra.Command, cfg *Config) {
	flags := cmd.Flags()
	if flags.Changed("rpc") {
		cfg.RpcURL = opts.RpcURL
	}
	if flags.Changed("ws") {
		cfg.WsURL = opts.WsURL
	}
	if flags.Changed("keypair") {
		cfg.Keypair = opts.Keypair
	}
	if flags.Changed("program") {
		cfg.ProgramID = opts.ProgramID
	}
	if flags.Changed("proxy") {
		cfg.Proxy = opts.Proxy
		cfg.WsProxy = opts.Proxy
	}
}
