package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/veranemoloko/media-downloader/internal/worker"
)

func runBatch(args []string) int {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)

	common := addCommonFlags(fs)
	listen := fs.String("listen", "", "Serve live panel status and metrics on this address while running (overrides MD_STATUS_ADDR)")
	file := fs.String("file", "", "YAML file with a jobs list (required)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: mediadl batch -file jobs.yaml [options]

Submit every job of a YAML file. Jobs of one platform run one after
another; different platforms download in parallel.

  jobs:
    - platform: youtube
      url: https://www.youtube.com/watch?v=...
      quality: "720"

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	jobs, err := worker.LoadJobs(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, code := newApp(ctx, common, true)
	if a == nil {
		return code
	}
	defer a.Close()

	status, err := a.startStatusServer(statusAddr(a, *listen))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	defer status.Shutdown(a.logger)

	a.monitor.Poll(ctx)

	runner := worker.NewBatchRunner(a.submitter, a.logger)
	outcomes, err := runner.Run(ctx, jobs)
	a.record(ctx, outcomes...)

	for _, out := range outcomes {
		printOutcome(a, out)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	return ExitSuccess
}
