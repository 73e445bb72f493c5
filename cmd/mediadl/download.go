package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/veranemoloko/media-downloader/internal/domain"
	"github.com/veranemoloko/media-downloader/internal/service"
	"github.com/veranemoloko/media-downloader/internal/ui"
)

type formOptions struct {
	url         *string
	format      *string
	quality     *string
	audioFormat *string
	subtitles   *bool
	metadata    *bool
	carousel    *bool
	cover       *bool
}

func addFormFlags(fs *flag.FlagSet) *formOptions {
	return &formOptions{
		url:         fs.String("url", "", "Media URL (required, or pass as the first argument)"),
		format:      fs.String("format", "", "video or audio (youtube, tiktok)"),
		quality:     fs.String("quality", "", "Quality preset, e.g. 1080 or 256"),
		audioFormat: fs.String("audio-format", "", "Audio container for youtube-music (default mp3)"),
		subtitles:   fs.Bool("subtitles", false, "Download subtitles (youtube)"),
		metadata:    fs.Bool("metadata", false, "Embed metadata (youtube-music)"),
		carousel:    fs.Bool("carousel", false, "Download every carousel item (instagram)"),
		cover:       fs.Bool("cover", false, "Download the cover image (tiktok)"),
	}
}

func (o *formOptions) snapshot(fs *flag.FlagSet) domain.FormSnapshot {
	url := *o.url
	if url == "" && fs.NArg() > 0 {
		url = fs.Arg(0)
	}
	return domain.FormSnapshot{
		URL:         url,
		Format:      *o.format,
		Quality:     *o.quality,
		AudioFormat: *o.audioFormat,
		Subtitles:   *o.subtitles,
		Metadata:    *o.metadata,
		Carousel:    *o.carousel,
		Cover:       *o.cover,
	}
}

func runDownload(args []string) int {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)

	common := addCommonFlags(fs)
	listen := fs.String("listen", "", "Serve live panel status and metrics on this address while running (overrides MD_STATUS_ADDR)")
	platform := fs.String("platform", string(domain.PlatformYouTube), "youtube, youtube-music, facebook, instagram or tiktok")
	form := addFormFlags(fs)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: mediadl download [options] [url]

Ask the backend to fetch a video or track and save the returned file into
the download directory (or MD_SAVE_URL bucket).

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
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

	out := a.submitter.Submit(ctx, domain.Platform(*platform), form.snapshot(fs), ui.NewButton(ui.DefaultLabel))
	a.record(ctx, out)
	printOutcome(a, out)

	return exitCodeFor(out.Err)
}

func printOutcome(a *app, out service.Outcome) {
	if out.Err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", out.Platform, out.Message)
		return
	}
	fmt.Fprintf(a.out, "saved %s (%s)\n", out.SavedAs, ui.FormatBytes(out.Bytes))
}
