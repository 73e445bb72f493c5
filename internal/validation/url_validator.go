package validation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("web_url", validateWebURL)
	_ = validate.RegisterValidation("platform", validatePlatform)
}

// ValidateURL trims raw and checks it is an absolute http or https URL.
// It returns the trimmed URL.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errpkg.ErrEmptyURL
	}
	if err := validate.Var(trimmed, "web_url"); err != nil {
		return "", fmt.Errorf("%w: %q", errpkg.ErrInvalidURL, trimmed)
	}
	return trimmed, nil
}

// ValidatePlatform rejects platforms the backend does not know.
func ValidatePlatform(p domain.Platform) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", errpkg.ErrUnsupportedPlatform, p)
	}
	return nil
}

// ValidateRequest checks a built request before it is sent.
func ValidateRequest(req *domain.DownloadRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid download request: %w", err)
	}
	return nil
}

// IsWebURL reports whether s is an absolute http or https URL with a host.
func IsWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}

func validateWebURL(fl validator.FieldLevel) bool {
	return IsWebURL(fl.Field().String())
}

func validatePlatform(fl validator.FieldLevel) bool {
	return domain.Platform(fl.Field().String()).Valid()
}
