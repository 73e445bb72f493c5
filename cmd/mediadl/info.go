package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/veranemoloko/media-downloader/internal/domain"
	"github.com/veranemoloko/media-downloader/internal/ui"
	"github.com/veranemoloko/media-downloader/internal/validation"
)

func runInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)

	common := addCommonFlags(fs)
	platform := fs.String("platform", "", "Platform hint passed to the backend")
	url := fs.String("url", "", "Media URL (required, or pass as the first argument)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: mediadl info [options] [url]

Show a preview of a URL: title, uploader, duration and formats.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	target, code := urlArg(fs, *url)
	if code != ExitSuccess {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, code := newApp(ctx, common, false)
	if a == nil {
		return code
	}

	info, err := a.client.Info(ctx, target, domain.Platform(*platform))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ui.FailureMessage(err))
		return exitCodeFor(err)
	}

	fmt.Fprintf(a.out, "Title:    %s\n", info.Title)
	fmt.Fprintf(a.out, "Uploader: %s\n", info.Uploader)
	fmt.Fprintf(a.out, "Duration: %s\n", time.Duration(info.Duration*float64(time.Second)).Round(time.Second))
	printFormats(a, info.Formats)
	return ExitSuccess
}

func runFormats(args []string) int {
	fs := flag.NewFlagSet("formats", flag.ContinueOnError)

	common := addCommonFlags(fs)
	url := fs.String("url", "", "Media URL (required, or pass as the first argument)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: mediadl formats [options] [url]

List every format the backend can download for a URL.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	target, code := urlArg(fs, *url)
	if code != ExitSuccess {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, code := newApp(ctx, common, false)
	if a == nil {
		return code
	}

	list, err := a.client.Formats(ctx, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ui.FailureMessage(err))
		return exitCodeFor(err)
	}

	fmt.Fprintf(a.out, "Title: %s\n", list.Title)
	printFormats(a, list.Formats)
	return ExitSuccess
}

// urlArg returns the validated URL from the -url flag or the first argument.
func urlArg(fs *flag.FlagSet, flagValue string) (string, int) {
	raw := flagValue
	if raw == "" && fs.NArg() > 0 {
		raw = fs.Arg(0)
	}

	url, err := validation.ValidateURL(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return "", ExitValidationFailed
	}
	return url, ExitSuccess
}

func printFormats(a *app, formats []domain.FormatInfo) {
	if len(formats) == 0 {
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEXT\tQUALITY\tRESOLUTION\tSIZE\tVCODEC\tACODEC")
	for _, f := range formats {
		size := "-"
		if f.FileSize > 0 {
			size = ui.FormatBytes(f.FileSize)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.FormatID, f.Ext, f.Quality, f.Resolution, size, f.VCodec, f.ACodec)
	}
	tw.Flush()
}
