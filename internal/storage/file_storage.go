package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/veranemoloko/media-downloader/internal/config"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
)

const (
	copyBufferSize = 32 * 1024
	maxNameTries   = 1000
	fallbackName   = "download"
)

// OpenBucket opens the bucket saved files go to: SaveURL when set, otherwise
// a directory bucket at DownloadDir.
func OpenBucket(ctx context.Context, cfg *config.Config) (*blob.Bucket, error) {
	if cfg.SaveURL != "" {
		bucket, err := blob.OpenBucket(ctx, cfg.SaveURL)
		if err != nil {
			return nil, fmt.Errorf("open bucket %s: %w", cfg.SaveURL, err)
		}
		return bucket, nil
	}

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}
	bucket, err := fileblob.OpenBucket(cfg.DownloadDir, &fileblob.Options{
		Metadata:  fileblob.MetadataDontWrite,
		NoTempDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open download directory %s: %w", cfg.DownloadDir, err)
	}
	return bucket, nil
}

// TempFile is a downloaded payload materialized on local disk.
type TempFile struct {
	Path string
	Size int64
}

// FileStorage materializes payloads into temporary files and saves them into
// a bucket under a free name.
type FileStorage struct {
	bucket  *blob.Bucket
	tempDir string
	maxSize int64
	logger  *slog.Logger

	// reserved holds keys picked by a Save that has not committed yet.
	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewFileStorage creates a FileStorage. An empty tempDir uses the system
// default; maxSize <= 0 disables the size limit.
func NewFileStorage(bucket *blob.Bucket, tempDir string, maxSize int64, logger *slog.Logger) *FileStorage {
	return &FileStorage{
		bucket:   bucket,
		tempDir:  tempDir,
		maxSize:  maxSize,
		logger:   logger,
		reserved: make(map[string]struct{}),
	}
}

// Materialize copies src into a new temporary file, calling onProgress with
// the running byte count. The file is removed on failure.
func (s *FileStorage) Materialize(ctx context.Context, src io.Reader, onProgress func(int64)) (*TempFile, error) {
	file, err := os.CreateTemp(s.tempDir, "mediadl-*.part")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	reader := src
	if s.maxSize > 0 {
		reader = io.LimitReader(src, s.maxSize+1)
	}

	written, copyErr := copyWithContext(ctx, file, reader, onProgress)
	closeErr := file.Close()

	switch {
	case copyErr != nil:
		os.Remove(file.Name())
		return nil, fmt.Errorf("copy payload: %w", copyErr)
	case closeErr != nil:
		os.Remove(file.Name())
		return nil, fmt.Errorf("close temp file: %w", closeErr)
	case s.maxSize > 0 && written > s.maxSize:
		os.Remove(file.Name())
		return nil, fmt.Errorf("%w: %d bytes", errpkg.ErrFileTooLarge, s.maxSize)
	}

	s.logger.Debug("payload materialized", "path", file.Name(), "bytes", written)
	return &TempFile{Path: file.Name(), Size: written}, nil
}

// Save copies tmp into the bucket under filename, or under "name (n).ext" if
// that key is taken. It returns the key used.
func (s *FileStorage) Save(ctx context.Context, tmp *TempFile, filename, contentType string) (string, error) {
	key, err := s.reserveKey(ctx, SanitizeFilename(filename))
	if err != nil {
		return "", err
	}
	defer s.unreserve(key)

	src, err := os.Open(tmp.Path)
	if err != nil {
		return "", fmt.Errorf("open temp file: %w", err)
	}
	defer src.Close()

	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("create writer for %s: %w", key, err)
	}

	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("commit %s: %w", key, err)
	}

	s.logger.Debug("file saved", "key", key, "bytes", tmp.Size)
	return key, nil
}

// Release removes the temporary file.
func (s *FileStorage) Release(tmp *TempFile) error {
	if tmp == nil {
		return nil
	}
	if err := os.Remove(tmp.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove temp file: %w", err)
	}
	return nil
}

// FileExists checks whether key exists in the bucket.
func (s *FileStorage) FileExists(ctx context.Context, key string) (bool, error) {
	return s.bucket.Exists(ctx, key)
}

// Close closes the underlying bucket.
func (s *FileStorage) Close() error {
	return s.bucket.Close()
}

// reserveKey picks a key that neither exists in the bucket nor is held by a
// concurrent Save, and holds it until unreserve.
func (s *FileStorage) reserveKey(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.freeKey(ctx, name)
	if err != nil {
		return "", err
	}
	s.reserved[key] = struct{}{}
	return key, nil
}

func (s *FileStorage) unreserve(key string) {
	s.mu.Lock()
	delete(s.reserved, key)
	s.mu.Unlock()
}

// freeKey is called with s.mu held.
func (s *FileStorage) freeKey(ctx context.Context, name string) (string, error) {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for i := 0; i < maxNameTries; i++ {
		key := name
		if i > 0 {
			key = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
		if _, taken := s.reserved[key]; taken {
			continue
		}

		exists, err := s.bucket.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", key, err)
		}
		if !exists {
			return key, nil
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", name, maxNameTries)
}

// SanitizeFilename keeps only the base name and drops characters that are
// invalid in file names.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return -1
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == ".." {
		return fallbackName
	}
	return name
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader, onProgress func(int64)) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var total int64

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
			nr, err := src.Read(buf)
			if nr > 0 {
				nw, werr := dst.Write(buf[0:nr])
				if nw > 0 {
					total += int64(nw)
					if onProgress != nil {
						onProgress(total)
					}
				}
				if werr != nil {
					return total, werr
				}
				if nr != nw {
					return total, io.ErrShortWrite
				}
			}
			if err != nil {
				if err == io.EOF {
					return total, nil
				}
				return total, err
			}
		}
	}
}
