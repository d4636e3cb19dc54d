package main

import (
	"fmt"
	"os"

	"github.com/streamingfast/logging"
)

var zlog, _ = logging.RootLogger("memo-cli", "github.com/unive3sal/memo/cmd/memo")

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
