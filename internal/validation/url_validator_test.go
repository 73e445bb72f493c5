package validation

import (
	"errors"
	"testing"

	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "valid https URL",
			input: "https://www.youtube.com/watch?v=abc",
			want:  "https://www.youtube.com/watch?v=abc",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  http://vm.tiktok.com/xyz \n",
			want:  "http://vm.tiktok.com/xyz",
		},
		{
			name:  "localhost allowed",
			input: "http://localhost:8080/clip",
			want:  "http://localhost:8080/clip",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: errpkg.ErrEmptyURL,
		},
		{
			name:    "whitespace only",
			input:   " \t ",
			wantErr: errpkg.ErrEmptyURL,
		},
		{
			name:    "no scheme",
			input:   "www.youtube.com/watch?v=abc",
			wantErr: errpkg.ErrInvalidURL,
		},
		{
			name:    "ftp scheme",
			input:   "ftp://example.com/file",
			wantErr: errpkg.ErrInvalidURL,
		},
		{
			name:    "javascript scheme",
			input:   "javascript:alert(1)",
			wantErr: errpkg.ErrInvalidURL,
		},
		{
			name:    "missing host",
			input:   "https:///path",
			wantErr: errpkg.ErrInvalidURL,
		},
		{
			name:    "unparseable",
			input:   "http://[::1",
			wantErr: errpkg.ErrInvalidURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateURL(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValidatePlatform(t *testing.T) {
	for _, p := range domain.Platforms {
		if err := ValidatePlatform(p); err != nil {
			t.Errorf("platform %s: unexpected error: %v", p, err)
		}
	}

	if err := ValidatePlatform("vimeo"); !errors.Is(err, errpkg.ErrUnsupportedPlatform) {
		t.Errorf("expected ErrUnsupportedPlatform, got %v", err)
	}
}

func TestValidateRequest(t *testing.T) {
	ok := &domain.DownloadRequest{URL: "https://facebook.com/v/1", Platform: domain.PlatformFacebook}
	if err := ValidateRequest(ok); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := &domain.DownloadRequest{URL: "facebook.com/v/1", Platform: domain.PlatformFacebook}
	if err := ValidateRequest(bad); err == nil {
		t.Errorf("expected error for URL without scheme")
	}

	badPlatform := &domain.DownloadRequest{URL: "https://vimeo.com/1", Platform: "vimeo"}
	if err := ValidateRequest(badPlatform); err == nil {
		t.Errorf("expected error for unknown platform")
	}
}
