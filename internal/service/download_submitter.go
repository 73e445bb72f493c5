package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veranemoloko/media-downloader/internal/backend"
	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
	"github.com/veranemoloko/media-downloader/internal/metrics"
	"github.com/veranemoloko/media-downloader/internal/params"
	"github.com/veranemoloko/media-downloader/internal/storage"
	"github.com/veranemoloko/media-downloader/internal/ui"
	"github.com/veranemoloko/media-downloader/internal/validation"
)

// Downloader issues download requests to the backend.
type Downloader interface {
	Download(ctx context.Context, req *domain.DownloadRequest, requestID string) (*backend.Payload, error)
}

// Saver materializes a payload locally and saves it under a file name.
type Saver interface {
	Materialize(ctx context.Context, src io.Reader, onProgress func(int64)) (*storage.TempFile, error)
	Save(ctx context.Context, tmp *storage.TempFile, filename, contentType string) (string, error)
	Release(tmp *storage.TempFile) error
}

// Outcome is the result of one submission.
type Outcome struct {
	SubmissionID uuid.UUID
	Platform     domain.Platform
	URL          string
	State        domain.UIState
	Message      string
	Filename     string
	SavedAs      string
	Bytes        int64
	Err          error
}

// HistoryEntry converts the outcome into a history record.
func (o Outcome) HistoryEntry() *domain.HistoryEntry {
	entry := &domain.HistoryEntry{
		ID:        o.SubmissionID,
		Platform:  o.Platform,
		URL:       o.URL,
		State:     o.State,
		Message:   o.Message,
		SavedAs:   o.SavedAs,
		Bytes:     o.Bytes,
		CreatedAt: time.Now(),
	}
	if o.Err != nil {
		entry.ErrorKind = errpkg.KindOf(o.Err).String()
	}
	return entry
}

// DownloadSubmitter runs the submit workflow for every platform panel.
type DownloadSubmitter struct {
	client Downloader
	store  Saver
	board  *ui.Board
	logger *slog.Logger
}

// NewDownloadSubmitter creates a DownloadSubmitter.
func NewDownloadSubmitter(client Downloader, store Saver, board *ui.Board, logger *slog.Logger) *DownloadSubmitter {
	return &DownloadSubmitter{
		client: client,
		store:  store,
		board:  board,
		logger: logger,
	}
}

// Submit validates form, sends one download request for platform and saves
// the returned file. Every failure is converted into the outcome and the
// panel's status line; Submit never returns an error. For submissions that
// pass validation, ctrl is released exactly once.
func (s *DownloadSubmitter) Submit(ctx context.Context, platform domain.Platform, form domain.FormSnapshot, ctrl ui.Control) Outcome {
	out := Outcome{SubmissionID: uuid.New(), Platform: platform, URL: strings.TrimSpace(form.URL)}
	logger := s.logger.With("submission_id", out.SubmissionID, "platform", platform)

	panel := s.board.Panel(platform)
	if panel == nil {
		err := errpkg.Validation(fmt.Errorf("%w: %q", errpkg.ErrUnsupportedPlatform, platform))
		out.State = domain.StateFailed
		out.Err = err
		out.Message = ui.FailureMessage(err)
		metrics.SubmissionsTotal.WithLabelValues(string(platform), errpkg.KindValidation.String()).Inc()
		logger.Info("submission rejected", "reason", err)
		return out
	}

	prev, ok := panel.TryBegin()
	if !ok {
		return s.busy(panel, out, logger)
	}

	url, err := validation.ValidateURL(form.URL)
	if err != nil {
		return s.fail(panel, out, errpkg.Validation(err), logger)
	}

	if !ctrl.Acquire() {
		panel.SetState(prev)
		return s.busy(panel, out, logger)
	}
	defer func() {
		ctrl.Release()
		panel.ShowProgress(false)
	}()

	panel.SetState(domain.StateSubmitting)
	panel.ShowProgress(true)
	panel.ShowStatus(ui.MsgConnecting, domain.StatusInfo)

	req, err := params.Build(platform, form)
	if err != nil {
		return s.fail(panel, out, errpkg.Validation(err), logger)
	}
	req.URL = url
	req.Platform = platform

	if err := validation.ValidateRequest(req); err != nil {
		return s.fail(panel, out, errpkg.Validation(err), logger)
	}

	logger.Debug("download params", "request", req)

	panel.SetState(domain.StateDownloading)
	panel.ShowStatus(ui.MsgDownloading, domain.StatusInfo)

	start := time.Now()
	payload, err := s.client.Download(ctx, req, out.SubmissionID.String())
	if err != nil {
		return s.fail(panel, out, err, logger)
	}
	defer payload.Body.Close()
	out.Filename = payload.Filename

	body := &readTracker{r: payload.Body}
	tmp, err := s.store.Materialize(ctx, body, func(n int64) {
		panel.UpdateProgress(n, payload.ContentLength)
	})
	if err != nil {
		if body.err != nil || ctx.Err() != nil {
			return s.fail(panel, out, errpkg.FromTransport(err), logger)
		}
		return s.fail(panel, out, errpkg.Local(err), logger)
	}

	key, saveErr := s.store.Save(ctx, tmp, payload.Filename, payload.ContentType)
	if err := s.store.Release(tmp); err != nil {
		logger.Warn("failed to release temp file", "path", tmp.Path, "error", err)
	}
	if saveErr != nil {
		return s.fail(panel, out, errpkg.Local(saveErr), logger)
	}

	out.SavedAs = key
	out.Bytes = tmp.Size
	out.State = domain.StateSucceeded
	out.Message = ui.MsgSuccess

	metrics.SubmissionsTotal.WithLabelValues(string(platform), "success").Inc()
	metrics.DownloadDuration.Observe(time.Since(start).Seconds())
	metrics.DownloadBytes.Add(float64(tmp.Size))

	logger.Info("download completed", "file", key, "bytes", tmp.Size, "duration", time.Since(start))

	panel.SetState(domain.StateSucceeded)
	panel.ShowStatus(ui.MsgSuccess, domain.StatusSuccess)
	return out
}

func (s *DownloadSubmitter) fail(panel *ui.Panel, out Outcome, err error, logger *slog.Logger) Outcome {
	kind := errpkg.KindOf(err)
	msg := ui.FailureMessage(err)

	out.State = domain.StateFailed
	out.Err = err
	out.Message = msg

	metrics.SubmissionsTotal.WithLabelValues(string(out.Platform), kind.String()).Inc()
	if kind == errpkg.KindValidation {
		logger.Info("submission rejected", "reason", err)
	} else {
		logger.Error("download failed", "kind", kind, "error", err)
	}

	panel.SetState(domain.StateFailed)
	panel.ShowStatus(msg, domain.StatusError)
	return out
}

func (s *DownloadSubmitter) busy(panel *ui.Panel, out Outcome, logger *slog.Logger) Outcome {
	out.State = panel.State()
	out.Err = errpkg.ErrBusy
	out.Message = errpkg.ErrBusy.Error()
	logger.Debug("submission ignored", "reason", errpkg.ErrBusy)
	return out
}

// readTracker remembers the first read error so body failures can be told
// apart from local write failures.
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}
