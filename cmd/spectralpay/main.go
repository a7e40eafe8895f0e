// Command spectralpay is a command line client for the job marketplace,
// pseudonym registry, escrow and ZK verifier contracts.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rampop01/spectralpay/internal/cli"
	"github.com/Rampop01/spectralpay/internal/config"
	"github.com/Rampop01/spectralpay/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("spectralpay", flag.ContinueOnError)
	global.SetOutput(stderr)
	simulate := global.Bool("simulate", false, "Run against an in-memory chain instead of the configured node")
	logLevel := global.String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	showMetrics := global.Bool("metrics", false, "Print call metrics to stderr on exit")
	global.Usage = func() { printUsage(stderr) }

	if err := global.Parse(args); err != nil {
		return 2
	}
	rest := global.Args()
	if len(rest) == 0 || rest[0] == "help" {
		printUsage(stderr)
		return 2
	}

	status := cli.NewStatus(stderr)
	cfg, err := config.Load()
	if err != nil {
		status.Error(fmt.Sprintf("load config: %v", err))
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	a, err := newApp(ctx, cfg, options{simulate: *simulate, stdout: stdout, stderr: stderr})
	if err != nil {
		status.Error(errors.UserMessage(err))
		return 1
	}
	if *showMetrics {
		defer a.dumpMetrics(stderr)
	}

	if err := a.exec(ctx, rest); err != nil {
		status.Error(errors.UserMessage(err))
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `spectralpay - job marketplace client

Usage:
  spectralpay [-simulate] [-log-level level] [-metrics] <command> [options]

Commands:`)
	for _, c := range commandTable {
		fmt.Fprintf(w, "  %-20s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(w, `
Configuration is read from the environment (SPECTRALPAY_*), an optional .env
file and the YAML file named by SPECTRALPAY_CONFIG. Run
"spectralpay <command> -h" for the options of a command.`)
}
