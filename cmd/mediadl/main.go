package main

import (
	"errors"
	"fmt"
	"os"

	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidArgs      = 2
	ExitConfigError      = 3
	ExitValidationFailed = 4
	ExitNetworkError     = 5
	ExitNotFound         = 6
	ExitRestricted       = 7
	ExitServerError      = 8
	ExitStorageError     = 9
	ExitBackendOffline   = 10
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "download":
		return runDownload(cmdArgs)
	case "batch":
		return runBatch(cmdArgs)
	case "info":
		return runInfo(cmdArgs)
	case "formats":
		return runFormats(cmdArgs)
	case "health":
		return runHealth(cmdArgs)
	case "watch":
		return runWatch(cmdArgs)
	case "history":
		return runHistory(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: mediadl <command> [options]

Commands:
  download  Download one video or track through the backend
  batch     Download every job listed in a YAML file
  info      Show title, duration and formats of a URL
  formats   List the formats the backend can offer for a URL
  health    Check once whether the backend is reachable
  watch     Poll backend health and serve local status and metrics
  history   Show recent submissions

Run 'mediadl <command> -h' for command-specific help.`)
}

// exitCodeFor maps a submission error to the process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, errpkg.ErrBusy) {
		return ExitGeneralError
	}

	switch errpkg.KindOf(err) {
	case errpkg.KindValidation:
		return ExitValidationFailed
	case errpkg.KindNetwork:
		return ExitNetworkError
	case errpkg.KindNotFound:
		return ExitNotFound
	case errpkg.KindRestricted:
		return ExitRestricted
	case errpkg.KindLocal:
		return ExitStorageError
	default:
		return ExitServerError
	}
}
