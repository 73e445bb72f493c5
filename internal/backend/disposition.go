package backend

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultFilename is used when the response names no file.
const DefaultFilename = "download"

// filenamePattern matches the first filename directive; quoted values may
// contain ';'.
var filenamePattern = regexp.MustCompile(`(?i)filename([^;=\n]*)=\s*(?:"([^"]*)"|'([^']*)'|([^;\n]*))`)

// FilenameFromDisposition extracts the file name from a Content-Disposition
// header value, tolerating quoted and bare values.
func FilenameFromDisposition(header string) string {
	if header == "" {
		return DefaultFilename
	}

	m := filenamePattern.FindStringSubmatch(header)
	if m == nil {
		return DefaultFilename
	}

	value := m[2] + m[3] + m[4]
	if strings.TrimSpace(m[1]) == "*" {
		value = decodeExtValue(value)
	}

	value = strings.NewReplacer(`"`, "", `'`, "").Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultFilename
	}
	return value
}

// decodeExtValue decodes an RFC 5987 value such as UTF-8''na%C3%AFve.mp4.
func decodeExtValue(v string) string {
	_, encoded, ok := strings.Cut(v, "''")
	if !ok {
		return v
	}
	decoded, err := url.PathUnescape(encoded)
	if err != nil {
		return encoded
	}
	return decoded
}
