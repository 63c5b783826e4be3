package upload

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/permavault/internal/common"
)

// AllowedMimeTypes are the content types accepted for upload.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":               true,
	"image/png":                true,
	"image/gif":                true,
	"image/webp":               true,
	"application/pdf":          true,
	"text/plain":               true,
	"application/json":         true,
	"application/zip":          true,
	"application/octet-stream": true,
	"video/mp4":                true,
	"audio/mpeg":               true,
}

// DetectMimeType guesses the content type from the extension, then from
// the leading bytes. Parameters such as charset are dropped.
func DetectMimeType(name string, data []byte) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if t == "" {
		t = http.DetectContentType(data)
	}
	if base, _, err := mime.ParseMediaType(t); err == nil {
		return base
	}
	return "application/octet-stream"
}

// CheckMimeType rejects content types outside AllowedMimeTypes.
func CheckMimeType(t string) error {
	if !AllowedMimeTypes[t] {
		return fmt.Errorf("%w: file type %s is not supported", common.ErrValidation, t)
	}
	return nil
}
