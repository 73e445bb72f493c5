package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/veranemoloko/media-downloader/internal/backend"
	"github.com/veranemoloko/media-downloader/internal/config"
	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
	"github.com/veranemoloko/media-downloader/internal/storage"
	"github.com/veranemoloko/media-downloader/internal/ui"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingControl counts how the submitter drives the control.
type recordingControl struct {
	mu       sync.Mutex
	disabled bool
	acquires int
	releases int
}

func (c *recordingControl) Acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled {
		return false
	}
	c.disabled = true
	c.acquires++
	return true
}

func (c *recordingControl) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = false
	c.releases++
}

func (c *recordingControl) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquires, c.releases
}

// fakeBackend records download requests and answers with handler.
type fakeBackend struct {
	calls  atomic.Int32
	mu     sync.Mutex
	bodies []map[string]any
}

func (f *fakeBackend) server(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == config.EndpointDownload {
			f.calls.Add(1)
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.mu.Lock()
			f.bodies = append(f.bodies, body)
			f.mu.Unlock()
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeBackend) lastBody(t *testing.T) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.bodies)
	return f.bodies[len(f.bodies)-1]
}

type harness struct {
	submitter *DownloadSubmitter
	board     *ui.Board
	bucket    *blob.Bucket
	tempDir   string
}

func newHarness(t *testing.T, backendURL string, maxSize int64) *harness {
	t.Helper()
	return newHarnessWithTimeout(t, backendURL, maxSize, 2*time.Second)
}

func newHarnessWithTimeout(t *testing.T, backendURL string, maxSize int64, timeout time.Duration) *harness {
	t.Helper()

	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { bucket.Close() })

	cfg := &config.Config{BackendURL: backendURL, RequestTimeout: timeout}
	board := ui.NewBoard(nil, config.SuccessStatusTTL)
	tempDir := t.TempDir()
	store := storage.NewFileStorage(bucket, tempDir, maxSize, newTestLogger())
	client := backend.NewClient(cfg, newTestLogger())

	return &harness{
		submitter: NewDownloadSubmitter(client, store, board, newTestLogger()),
		board:     board,
		bucket:    bucket,
		tempDir:   tempDir,
	}
}

func serveFile(disposition, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if disposition != "" {
			w.Header().Set("Content-Disposition", disposition)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.WriteString(w, body)
	}
}

func TestSubmit_InvalidURLNeverCallsNetwork(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, serveFile("", "x"))
	h := newHarness(t, srv.URL, 0)

	inputs := []struct {
		url  string
		want string
	}{
		{url: "", want: ui.MsgEmptyURL},
		{url: "   ", want: ui.MsgEmptyURL},
		{url: "www.youtube.com/watch?v=1", want: ui.MsgInvalidURL},
		{url: "youtube.com", want: ui.MsgInvalidURL},
		{url: "ftp://youtube.com/v", want: ui.MsgInvalidURL},
		{url: "file:///etc/passwd", want: ui.MsgInvalidURL},
	}

	for _, in := range inputs {
		ctrl := &recordingControl{}
		out := h.submitter.Submit(context.Background(), domain.PlatformYouTube, domain.FormSnapshot{URL: in.url}, ctrl)

		assert.Equal(t, domain.StateFailed, out.State, in.url)
		assert.Equal(t, errpkg.KindValidation, errpkg.KindOf(out.Err), in.url)
		assert.Equal(t, in.want, out.Message, in.url)

		acquires, releases := ctrl.counts()
		assert.Zero(t, acquires, in.url)
		assert.Zero(t, releases, in.url)
	}

	assert.Zero(t, fb.calls.Load())
	panel := h.board.Panel(domain.PlatformYouTube)
	assert.Equal(t, domain.StateFailed, panel.State())
	assert.Equal(t, domain.StatusError, panel.Status().Kind)
}

func TestSubmit_OneCallWithPlatformShape(t *testing.T) {
	form := domain.FormSnapshot{
		URL:         "  https://example.com/media/1  ",
		Format:      "video",
		Quality:     "720",
		AudioFormat: "m4a",
		Subtitles:   true,
		Metadata:    true,
		Carousel:    true,
		Cover:       true,
	}

	want := map[domain.Platform]map[string]any{
		domain.PlatformYouTube:      {"format": "video", "quality": "720", "subtitles": true},
		domain.PlatformYouTubeMusic: {"format": "audio", "audio_format": "m4a", "quality": "720", "metadata": true},
		domain.PlatformFacebook:     {"format": "video", "quality": "720"},
		domain.PlatformInstagram:    {"format": "video", "quality": "720", "carousel": true},
		domain.PlatformTikTok:       {"format": "video", "quality": "720", "remove_watermark": false, "cover": true},
	}

	for platform, fields := range want {
		t.Run(string(platform), func(t *testing.T) {
			fb := &fakeBackend{}
			srv := fb.server(t, serveFile(`attachment; filename="clip.mp4"`, "data"))
			h := newHarness(t, srv.URL, 0)

			out := h.submitter.Submit(context.Background(), platform, form, &recordingControl{})
			require.NoError(t, out.Err)
			require.Equal(t, int32(1), fb.calls.Load())

			expected := map[string]any{"url": "https://example.com/media/1", "platform": string(platform)}
			for k, v := range fields {
				expected[k] = v
			}
			assert.Equal(t, expected, fb.lastBody(t))
		})
	}
}

func TestSubmit_SavesUnderDispositionFilename(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, serveFile(`attachment; filename="clip.mp4"`, "video-bytes"))
	h := newHarness(t, srv.URL, 0)
	ctrl := &recordingControl{}

	out := h.submitter.Submit(context.Background(), domain.PlatformYouTube,
		domain.FormSnapshot{URL: "https://www.youtube.com/watch?v=1", Format: "video", Quality: "1080"}, ctrl)

	require.NoError(t, out.Err)
	assert.Equal(t, domain.StateSucceeded, out.State)
	assert.Equal(t, "clip.mp4", out.Filename)
	assert.Equal(t, "clip.mp4", out.SavedAs)
	assert.Equal(t, int64(len("video-bytes")), out.Bytes)
	assert.Equal(t, ui.MsgSuccess, out.Message)

	data, err := h.bucket.ReadAll(context.Background(), "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))

	panel := h.board.Panel(domain.PlatformYouTube)
	assert.Equal(t, domain.StateSucceeded, panel.State())
	assert.Equal(t, domain.StatusSuccess, panel.Status().Kind)
	assert.True(t, panel.Status().Visible)
	assert.False(t, panel.Progressing())

	acquires, releases := ctrl.counts()
	assert.Equal(t, 1, acquires)
	assert.Equal(t, 1, releases)
}

func TestSubmit_DefaultFilename(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, serveFile("", "bytes"))
	h := newHarness(t, srv.URL, 0)

	out := h.submitter.Submit(context.Background(), domain.PlatformFacebook,
		domain.FormSnapshot{URL: "https://facebook.com/watch/1"}, &recordingControl{})

	require.NoError(t, out.Err)
	assert.Equal(t, "download", out.Filename)
	assert.Equal(t, "download", out.SavedAs)

	exists, err := h.bucket.Exists(context.Background(), "download")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSubmit_RestrictedError(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"private video"}`)
	})
	h := newHarness(t, srv.URL, 0)
	ctrl := &recordingControl{}

	out := h.submitter.Submit(context.Background(), domain.PlatformInstagram,
		domain.FormSnapshot{URL: "https://instagram.com/p/1"}, ctrl)

	assert.Equal(t, domain.StateFailed, out.State)
	assert.Equal(t, errpkg.KindRestricted, errpkg.KindOf(out.Err))
	assert.Contains(t, out.Message, "private or restricted")

	panel := h.board.Panel(domain.PlatformInstagram)
	assert.Contains(t, panel.Status().Text, "private or restricted")
	assert.False(t, panel.Progressing())

	acquires, releases := ctrl.counts()
	assert.Equal(t, 1, acquires)
	assert.Equal(t, 1, releases)
}

func TestSubmit_ServerMessagePassedThrough(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"success":false,"error":"Downloaded file missing"}`)
	})
	h := newHarness(t, srv.URL, 0)

	out := h.submitter.Submit(context.Background(), domain.PlatformTikTok,
		domain.FormSnapshot{URL: "https://tiktok.com/@a/video/1"}, &recordingControl{})

	assert.Equal(t, "❌ Download failed: Downloaded file missing", out.Message)
}

func TestSubmit_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	h := newHarness(t, url, 0)
	ctrl := &recordingControl{}

	out := h.submitter.Submit(context.Background(), domain.PlatformYouTube,
		domain.FormSnapshot{URL: "https://youtube.com/watch?v=1"}, ctrl)

	assert.Equal(t, errpkg.KindNetwork, errpkg.KindOf(out.Err))
	assert.Contains(t, out.Message, "Cannot connect to server")

	_, releases := ctrl.counts()
	assert.Equal(t, 1, releases)
}

func TestSubmit_TooLargeIsLocalFailure(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, serveFile(`attachment; filename=big.bin`, strings.Repeat("x", 64)))
	h := newHarness(t, srv.URL, 16)

	out := h.submitter.Submit(context.Background(), domain.PlatformYouTube,
		domain.FormSnapshot{URL: "https://youtube.com/watch?v=1"}, &recordingControl{})

	assert.Equal(t, errpkg.KindLocal, errpkg.KindOf(out.Err))
	assert.ErrorIs(t, out.Err, errpkg.ErrFileTooLarge)

	exists, err := h.bucket.Exists(context.Background(), "big.bin")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubmit_TikTokWatermark(t *testing.T) {
	for quality, want := range map[string]bool{"1080": true, "720": false} {
		fb := &fakeBackend{}
		srv := fb.server(t, serveFile("", "x"))
		h := newHarness(t, srv.URL, 0)

		out := h.submitter.Submit(context.Background(), domain.PlatformTikTok,
			domain.FormSnapshot{URL: "https://www.tiktok.com/@a/video/1", Format: "video", Quality: quality}, &recordingControl{})
		require.NoError(t, out.Err)
		assert.Equal(t, want, fb.lastBody(t)["remove_watermark"], "quality %s", quality)
	}
}

func TestSubmit_DisabledControlIsIgnored(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, serveFile("", "x"))
	h := newHarness(t, srv.URL, 0)

	ctrl := &recordingControl{disabled: true}
	out := h.submitter.Submit(context.Background(), domain.PlatformYouTube,
		domain.FormSnapshot{URL: "https://youtube.com/watch?v=1"}, ctrl)

	assert.ErrorIs(t, out.Err, errpkg.ErrBusy)
	assert.Zero(t, fb.calls.Load())
	_, releases := ctrl.counts()
	assert.Zero(t, releases)

	panel := h.board.Panel(domain.PlatformYouTube)
	assert.Equal(t, domain.StateIdle, panel.State())
	assert.False(t, panel.Status().Visible)
}

func TestSubmit_DisabledControlKeepsPreviousState(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, serveFile("", "x"))
	h := newHarness(t, srv.URL, 0)

	first := h.submitter.Submit(context.Background(), domain.PlatformFacebook,
		domain.FormSnapshot{URL: "https://facebook.com/watch/1"}, &recordingControl{})
	require.NoError(t, first.Err)

	out := h.submitter.Submit(context.Background(), domain.PlatformFacebook,
		domain.FormSnapshot{URL: "https://facebook.com/watch/2"}, &recordingControl{disabled: true})
	assert.ErrorIs(t, out.Err, errpkg.ErrBusy)

	panel := h.board.Panel(domain.PlatformFacebook)
	assert.Equal(t, domain.StateSucceeded, panel.State())
	assert.Equal(t, ui.MsgSuccess, panel.Status().Text)
}

func TestSubmit_PanelValidatingIsIgnored(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, serveFile("", "x"))
	h := newHarness(t, srv.URL, 0)

	panel := h.board.Panel(domain.PlatformInstagram)
	_, ok := panel.TryBegin()
	require.True(t, ok)

	ctrl := &recordingControl{}
	out := h.submitter.Submit(context.Background(), domain.PlatformInstagram,
		domain.FormSnapshot{URL: "not a url"}, ctrl)

	assert.ErrorIs(t, out.Err, errpkg.ErrBusy)
	assert.Equal(t, domain.StateValidating, panel.State())
	assert.False(t, panel.Status().Visible)

	acquires, _ := ctrl.counts()
	assert.Zero(t, acquires)
	assert.Zero(t, fb.calls.Load())
}

func TestSubmit_BodyStallIsNetworkFailure(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="partial.mp4"`)
		w.Header().Set("Content-Length", "1024")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, strings.Repeat("x", 16))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
	h := newHarnessWithTimeout(t, srv.URL, 0, 300*time.Millisecond)
	ctrl := &recordingControl{}

	out := h.submitter.Submit(context.Background(), domain.PlatformYouTube,
		domain.FormSnapshot{URL: "https://youtube.com/watch?v=1"}, ctrl)

	assert.Equal(t, domain.StateFailed, out.State)
	assert.Equal(t, errpkg.KindNetwork, errpkg.KindOf(out.Err))
	assert.Contains(t, out.Message, "Cannot connect to server")

	acquires, releases := ctrl.counts()
	assert.Equal(t, 1, acquires)
	assert.Equal(t, 1, releases)

	entries, err := os.ReadDir(h.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	exists, err := h.bucket.Exists(context.Background(), "partial.mp4")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.False(t, h.board.Panel(domain.PlatformYouTube).Progressing())
}

func TestSubmit_BusyPanelIsIgnored(t *testing.T) {
	release := make(chan struct{})
	fb := &fakeBackend{}
	srv := fb.server(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, "x")
	})
	h := newHarness(t, srv.URL, 0)
	button := ui.NewButton("Download")

	done := make(chan Outcome)
	go func() {
		done <- h.submitter.Submit(context.Background(), domain.PlatformYouTube,
			domain.FormSnapshot{URL: "https://youtube.com/watch?v=1"}, button)
	}()

	panel := h.board.Panel(domain.PlatformYouTube)
	require.Eventually(t, func() bool { return panel.State() == domain.StateDownloading }, time.Second, 5*time.Millisecond)
	assert.False(t, button.Enabled())
	assert.Equal(t, ui.LoadingLabel, button.Label())

	second := h.submitter.Submit(context.Background(), domain.PlatformYouTube,
		domain.FormSnapshot{URL: "https://youtube.com/watch?v=2"}, button)
	assert.ErrorIs(t, second.Err, errpkg.ErrBusy)

	other := h.board.Panel(domain.PlatformFacebook)
	assert.Equal(t, domain.StateIdle, other.State())

	close(release)
	first := <-done
	require.NoError(t, first.Err)
	assert.Equal(t, int32(1), fb.calls.Load())
	assert.True(t, button.Enabled())
	assert.Equal(t, "Download", button.Label())
}

func TestSubmit_UnknownPlatform(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, serveFile("", "x"))
	h := newHarness(t, srv.URL, 0)

	out := h.submitter.Submit(context.Background(), "vimeo",
		domain.FormSnapshot{URL: "https://vimeo.com/1"}, &recordingControl{})

	assert.ErrorIs(t, out.Err, errpkg.ErrUnsupportedPlatform)
	assert.Zero(t, fb.calls.Load())
}

func TestOutcome_HistoryEntry(t *testing.T) {
	fb := &fakeBackend{}
	srv := fb.server(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Video unavailable"}`)
	})
	h := newHarness(t, srv.URL, 0)

	out := h.submitter.Submit(context.Background(), domain.PlatformYouTube,
		domain.FormSnapshot{URL: " https://youtube.com/watch?v=9 "}, &recordingControl{})

	entry := out.HistoryEntry()
	assert.Equal(t, out.SubmissionID, entry.ID)
	assert.Equal(t, "https://youtube.com/watch?v=9", entry.URL)
	assert.Equal(t, domain.StateFailed, entry.State)
	assert.Equal(t, "not_found", entry.ErrorKind)
	assert.False(t, entry.CreatedAt.IsZero())
}
