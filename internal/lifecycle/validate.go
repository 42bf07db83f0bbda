package lifecycle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
	"github.com/gabriel-vasile/mimetype"
)

const pdfMIME = "application/pdf"

var ErrInvalidFile = errors.New("only PDF documents can be uploaded")

// sniffLen matches the header size mimetype inspects for PDFs.
const sniffLen = 512

// ValidatePDF checks the name, the declared type and the leading bytes of
// file. The returned file replays the sniffed bytes, so it must be used in
// place of the original.
func ValidatePDF(file gateway.UploadFile) (gateway.UploadFile, error) {
	if file.Reader == nil {
		return file, fmt.Errorf("%w: no content", ErrInvalidFile)
	}
	if strings.ToLower(filepath.Ext(file.Name)) != ".pdf" {
		return file, fmt.Errorf("%w: %q is not a .pdf file", ErrInvalidFile, file.Name)
	}
	if file.ContentType != "" && !strings.HasPrefix(file.ContentType, pdfMIME) {
		return file, fmt.Errorf("%w: declared type %s", ErrInvalidFile, file.ContentType)
	}
	if file.Size == 0 {
		return file, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return file, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return file, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}
	if detected := mimetype.Detect(head); !detected.Is(pdfMIME) {
		return file, fmt.Errorf("%w: content looks like %s", ErrInvalidFile, detected.String())
	}

	file.Reader = io.MultiReader(bytes.NewReader(head), file.Reader)
	file.ContentType = pdfMIME
	return file, nil
}
