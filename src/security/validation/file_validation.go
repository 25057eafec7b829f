package validation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/username/dealfolio/backend/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed
// client-declared MIME types for trade-report uploads.
var AllowedClientContentTypes = map[string]bool{
	"text/html":                true,
	"application/xhtml+xml":    true,
	"text/xml":                 true,
	"application/xml":          true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true, // .xlsx
	"application/vnd.ms-excel": true, // .xls
	"text/plain":               true, // sniffed later
	"application/octet-stream": true, // fallback, but be more cautious
}

// oleSignature is the compound-file header legacy .xls workbooks start
// with; http.DetectContentType reports those as octet-stream.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// ValidateClientContentType checks the Content-Type header provided by the
// client.
func ValidateClientContentType(contentType string) error {
	normalized := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !AllowedClientContentTypes[normalized] {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for report upload", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the actual file content signature.
// It returns the detected content type and an error if the content cannot
// be an HTML, XML or spreadsheet report.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	// Reset the read pointer so the actual parser sees the full file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if bytes.HasPrefix(buffer[:n], oleSignature) {
		return "application/vnd.ms-excel", nil
	}

	detectedContentType := http.DetectContentType(buffer[:n])
	detectedContentType = strings.ToLower(strings.Split(detectedContentType, ";")[0])

	allowedDetectedTypes := map[string]bool{
		"text/html":                true,
		"text/xml":                 true,
		"application/xml":          true,
		"text/plain":               true, // HTML fragments detect as plain text
		"application/zip":          true, // .xlsx is a zip container
		"application/octet-stream": true, // strict parsing rejects later
	}

	if !allowedDetectedTypes[detectedContentType] {
		logger.L.Warn("Disallowed detected file content type (magic bytes)", "detectedContentType", detectedContentType)
		return detectedContentType, fmt.Errorf("detected file content type '%s' is not consistent with a trade report", detectedContentType)
	}

	logger.L.Debug("File content type (magic bytes) validated", "detectedContentType", detectedContentType)
	return detectedContentType, nil
}
