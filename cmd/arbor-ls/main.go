package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/jward/arbor/internal/lsp"
)

const version = "0.1.0"

var (
	flagTCP     bool
	flagWS      bool
	flagHost    string
	flagPort    int
	flagLogFile string
	flagVerbose int
	flagWorkers int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "arbor-ls",
	Short:         "Language server for behavior-tree scripts",
	Long:          "arbor-ls serves completion, hover, go-to-definition, and find-references for behavior-tree scripts over the Language Server Protocol. It speaks stdio by default, or TCP/WebSocket for remote editors.",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runServe,
}

func init() {
	rootCmd.Flags().BoolVar(&flagTCP, "tcp", false, "serve over TCP instead of stdio")
	rootCmd.Flags().BoolVar(&flagWS, "ws", false, "serve over WebSocket instead of stdio")
	rootCmd.Flags().StringVar(&flagHost, "host", "127.0.0.1", "bind host for --tcp/--ws")
	rootCmd.Flags().IntVar(&flagPort, "port", 2087, "bind port for --tcp/--ws")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.Flags().CountVarP(&flagVerbose, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.Flags().IntVar(&flagWorkers, "scan-workers", 0, "max concurrent file scans (default: number of CPUs)")
}

func runServe(cmd *cobra.Command, args []string) error {
	var logPath *string
	if flagLogFile != "" {
		logPath = &flagLogFile
	}
	commonlog.Configure(flagVerbose, logPath)

	server := lsp.New(version,
		lsp.WithScanWorkers(flagWorkers),
		lsp.WithDebug(flagVerbose > 1),
	)

	if flagTCP && flagWS {
		return fmt.Errorf("--tcp and --ws are mutually exclusive")
	}
	address := fmt.Sprintf("%s:%d", flagHost, flagPort)
	switch {
	case flagTCP:
		return server.RunTCP(address)
	case flagWS:
		return server.RunWebSocket(address)
	default:
		return server.RunStdio()
	}
}
