// Package extract pulls plain text out of uploaded poll documents so the
// description can be shown inline without the reader downloading the file.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text extracts the plain text of a document by content type. Supported types
// are text/plain and application/pdf; anything else is an error for the caller
// to surface as a validation failure.
func Text(contentType string, data []byte) (string, error) {
	const op = "extract.Text"

	switch {
	case strings.HasPrefix(contentType, "text/plain"):
		return string(data), nil
	case contentType == "application/pdf":
		text, err := pdfText(data)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%s: unsupported content type %q", op, contentType)
	}
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", err
	}

	return sb.String(), nil
}
