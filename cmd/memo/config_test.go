package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unive3sal/memo"
	"github.com/unive3sal/memo/program"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
rpc_url: https://api.devnet.solana.com
ws_url: wss://api.devnet.solana.com
proxy: http://127.0.0.1:7890
keypair: /tmp/id.json
program_id: 9MmgBLZf5wEYbrMwp37o3SGP3r7fXfB5dZWigMYeGkLc
timeout: 10s
rps: 4
`)
	cfg, err := loadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		RpcURL:    rpc.DevNet_RPC,
		WsURL:     rpc.DevNet_WS,
		Proxy:     "http://127.0.0.1:7890",
		Keypair:   "/tmp/id.json",
		ProgramID: "9MmgBLZf5wEYbrMwp37o3SGP3r7fXfB5dZWigMYeGkLc",
		Timeout:   10 * time.Second,
		RPS:       4,
	}, cfg)
}

func TestLoadConfig_missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	cfg, err := loadConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, rpc.LocalNet_RPC, cfg.RpcURL)
	assert.Equal(t, rpc.LocalNet_WS, cfg.WsURL)
	assert.Equal(t, memo.DefaultProgramID.String(), cfg.ProgramID)
	assert.Equal(t, 5*time.Second, cfg.Timeout)

	_, err = loadConfig(path, true)
	require.Error(t, err)

	_, err = loadConfig(writeConfig(t, "rpc_url: [unterminated"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadConfig_invalid(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "rpc_url: not a url\nrps: -1\n"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_url")
	assert.Contains(t, err.Error(), "rps")
	assert.NotContains(t, err.Error(), "ws_url")
}

func TestConfig_option(t *testing.T) {
	wallet := solana.NewWallet()
	keypair := filepath.Join(t.TempDir(), "id.json")
	var ints []string
	for _, b := range wallet.PrivateKey {
		ints = append(ints, strconv.Itoa(int(b)))
	}
	require.NoError(t, os.WriteFile(keypair, []byte("["+strings.Join(ints, ",")+"]"), 0o600))

	cfg := &Config{Keypair: keypair}
	applyDefaults(cfg)
	op, err := cfg.option()
	require.NoError(t, err)
	assert.Equal(t, wallet.PrivateKey.String(), op.Pkey)
	assert.Equal(t, memo.DefaultProgramID, op.ProgramID)

	cfg.Keypair = filepath.Join(t.TempDir(), "absent.json")
	op, err = cfg.option()
	require.NoError(t, err)
	assert.Empty(t, op.Pkey)

	cfg.ProgramID = "not-a-key"
	_, err = cfg.option()
	require.Error(t, err)
}

func TestAddressCommand(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	path := writeConfig(t, "program_id: "+solana.SystemProgramID.String()+"\n")

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"address", owner.String(), "--config", path, "--program", programID.String()})
	require.NoError(t, cmd.Execute())

	addr, bump, err := program.FindMemoAddress(programID, owner)
	require.NoError(t, err)
	assert.Equal(t, addr.String()+" (bump "+strconv.Itoa(int(bump))+")\n", out.String())
}

func TestAddressCommand_badOwner(t *testing.T) {
	path := writeConfig(t, "")
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"address", "nope", "--config", path})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid owner")
}

func TestPrintMemo(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	addr := solana.NewWallet().PublicKey()
	m := &program.Memo{Owner: owner, Content: "hello", Timestamp: 1700000000}

	out := &bytes.Buffer{}
	require.NoError(t, printMemo(out, addr, owner, m, true))
	assert.Contains(t, out.String(), "content:   hello\n")
	assert.Contains(t, out.String(), "updated:   2023-11-14T22:13:20Z\n")
	assert.Contains(t, out.String(), "record:    0x")
	assert.True(t, strings.HasSuffix(out.String(), "0500000068656c6c6f00f1536500000000\n"))

	out.Reset()
	require.NoError(t, printMemo(out, addr, owner, nil, false))
	assert.Contains(t, out.String(), "content:   <none>\n")
}
