package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unive3sal/memo"
	"github.com/unive3sal/memo/program"
)

func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <content>",
		Short: "Create the memo of the current wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, rootOpts, func(ctx context.Context, client *memo.Client) error {
				sig, err := client.CreateMemo(ctx, args[0])
				if err != nil {
					return err
				}
				return printSignature(cmd.OutOrStdout(), client, sig)
			})
		},
	}
}

func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <content>",
		Short: "Replace the content of the current wallet's memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, rootOpts, func(ctx context.Context, client *memo.Client) error {
				sig, err := client.UpdateMemo(ctx, args[0])
				if err != nil {
					return err
				}
				return printSignature(cmd.OutOrStdout(), client, sig)
			})
		},
	}
}

func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the memo of the current wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, rootOpts, func(ctx context.Context, client *memo.Client) error {
				sig, err := client.DeleteMemo(ctx)
				if err != nil {
					return err
				}
				return printSignature(cmd.OutOrStdout(), client, sig)
			})
		},
	}
}

func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show [owner...]",
		Short: "Print memos, defaults to the current wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, rootOpts, func(ctx context.Context, client *memo.Client) error {
				owners, err := parseOwners(args, client.Wallet().PublicKey())
				if err != nil {
					return err
				}
				memos, err := client.GetMemos(ctx, owners...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for i, owner := range owners {
					addr, err := client.FindMemoAddress(owner)
					if err != nil {
						return err
					}
					if err := printMemo(out, addr, owner, memos[i], raw); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "also print the hex encoded record")
	return cmd
}

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [owner]",
		Short: "Stream changes of a memo until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, rootOpts, func(ctx context.Context, client *memo.Client) error {
				owners, err := parseOwners(args, client.Wallet().PublicKey())
				if err != nil {
					return err
				}
				watcher, err := client.WatchMemo(owners[0], rpc.CommitmentConfirmed)
				if err != nil {
					return err
				}
				defer watcher.Close()

				out := cmd.OutOrStdout()
				for {
					ev, err := watcher.Recv(ctx)
					if err != nil {
						if ctx.Err() != nil {
							return nil
						}
						return err
					}
					fmt.Fprintf(out, "slot %d\n", ev.Slot)
					if err := printMemo(out, watcher.Address(), owners[0], ev.Memo, false); err != nil {
						return err
					}
				}
			})
		},
	}
}

// NewAddressCommand 只做地址推导，不连接节点
func NewAddressCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "address [owner]",
		Short: "Print the memo account address of an owner",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.config
			programID, err := cfg.programID()
			if err != nil {
				return err
			}
			var owner solana.PublicKey
			if len(args) > 0 {
				if owner, err = solana.PublicKeyFromBase58(args[0]); err != nil {
					return errors.Wrapf(err, "invalid owner %q", args[0])
				}
			} else {
				key, err := cfg.privateKey()
				if err != nil {
					return err
				}
				if key == nil {
					return errors.Errorf("keypair %s not found, pass an owner", cfg.Keypair)
				}
				owner = key.PublicKey()
			}
			addr, bump, err := program.FindMemoAddress(programID, owner)
			if err != nil {
				return errors.Wrap(err, "find memo address")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (bump %d)\n", addr, bump)
			return nil
		},
	}
}

func NewAirdropCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop [sol]",
		Short: "Request SOL on a test cluster, 10 by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sol := 10.0
			if len(args) > 0 {
				v, err := strconv.ParseFloat(args[0], 64)
				if err != nil || v <= 0 {
					return errors.Errorf("invalid amount %q", args[0])
				}
				sol = v
			}
			return withClient(cmd, rootOpts, func(ctx context.Context, client *memo.Client) error {
				sig, err := client.Wallet().RequestAirdrop(ctx, uint64(sol*float64(solana.LAMPORTS_PER_SOL)))
				if err != nil {
					return err
				}
				return printSignature(cmd.OutOrStdout(), client, sig)
			})
		},
	}
}

func withClient(cmd *cobra.Command, rootOpts *RootOptions, fn func(ctx context.Context, client *memo.Client) error) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	client, err := rootOpts.config.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Wallet().GetWsClient().Close()

	zlog.Debug("memo client ready",
		zap.Stringer("program", client.ProgramID()),
		zap.String("wallet", client.Wallet().Address),
	)
	return fn(ctx, client)
}

func parseOwners(args []string, fallback solana.PublicKey) ([]solana.PublicKey, error) {
	if len(args) == 0 {
		return []solana.PublicKey{fallback}, nil
	}
	owners := make([]solana.PublicKey, len(args))
	for i, arg := range args {
		key, err := solana.PublicKeyFromBase58(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid owner %q", arg)
		}
		owners[i] = key
	}
	return owners, nil
}

func printSignature(out io.Writer, client *memo.Client, sig solana.Signature) error {
	_, err := fmt.Fprintf(out, "wallet:    %s\nsignature: %s\n", client.Wallet().Address, sig)
	return err
}

func printMemo(out io.Writer, addr, owner solana.PublicKey, m *program.Memo, raw bool) error {
	if m == nil {
		_, err := fmt.Fprintf(out, "memo:      %s\nowner:     %s\ncontent:   <none>\n", addr, owner)
		return err
	}
	fmt.Fprintf(out, "memo:      %s\nowner:     %s\ncontent:   %s\nupdated:   %s\n",
		addr, m.Owner, m.Content, time.Unix(m.Timestamp, 0).UTC().Format(time.RFC3339))
	if raw {
		data, err := m.Encode()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "record:    %s\n", hexutil.Encode(data))
	}
	return nil
}
