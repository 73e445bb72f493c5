package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/veranemoloko/media-downloader/internal/config"
	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 * 1024

// Payload is a successful download response. The caller owns Body.
type Payload struct {
	Filename      string
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}

// Client talks to the media download backend.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client whose requests are bounded by the configured
// request timeout.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

// Download posts req to the download endpoint. On success the returned
// payload streams the file body; failures are returned as *errors.Error.
func (c *Client) Download(ctx context.Context, req *domain.DownloadRequest, requestID string) (*Payload, error) {
	resp, err := c.postJSON(ctx, config.EndpointDownload, req, requestID)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		failure := decodeFailure(resp)
		c.logger.Warn("download rejected by backend",
			"request_id", requestID,
			"status", resp.StatusCode,
			"kind", failure.Kind,
			"error", failure.Message,
		)
		return nil, failure
	}

	return &Payload{
		Filename:      FilenameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
	}, nil
}

// Info fetches the preview for url.
func (c *Client) Info(ctx context.Context, url string, platform domain.Platform) (*domain.VideoInfo, error) {
	var out struct {
		Data *domain.VideoInfo `json:"data"`
	}
	if err := c.callJSON(ctx, config.EndpointInfo, domain.InfoRequest{URL: url, Platform: platform}, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, &errpkg.Error{Kind: errpkg.KindServer, Message: "info response has no data"}
	}
	return out.Data, nil
}

// Formats lists the formats the source offers for url.
func (c *Client) Formats(ctx context.Context, url string) (*domain.FormatList, error) {
	var out domain.FormatList
	if err := c.callJSON(ctx, config.EndpointFormats, domain.InfoRequest{URL: url}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health performs one health check and returns the decoded JSON body.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, config.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL(config.EndpointHealth), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errpkg.FromTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeFailure(resp)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return body, nil
}

func (c *Client) callJSON(ctx context.Context, endpoint string, in, out any) error {
	resp, err := c.postJSON(ctx, endpoint, in, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeFailure(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errpkg.Error{Kind: errpkg.KindServer, Status: resp.StatusCode, Message: "invalid response body", Err: err}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, in any, requestID string) (*http.Response, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	c.logger.Debug("backend request", "endpoint", endpoint, "request_id", requestID, "body", string(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed", "endpoint", endpoint, "request_id", requestID, "error", err)
		return nil, errpkg.FromTransport(err)
	}
	return resp, nil
}

// decodeFailure reads the {error, code} body of a failed response. An
// undecodable body yields the generic message.
func decodeFailure(resp *http.Response) *errpkg.Error {
	var body domain.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err != nil || body.Error == "" {
		return errpkg.FromResponse(resp.StatusCode, body.Code, errpkg.DefaultServerMessage)
	}
	return errpkg.FromResponse(resp.StatusCode, body.Code, body.Error)
}
