package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
)

// ProgressFunc receives integer percentages in [0,100]. Values never
// decrease.
type ProgressFunc func(percent int)

// UploadFile describes the document to send. Size < 0 means the length is
// unknown, in which case no progress is reported.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// UploadResult is the gateway's 2xx reply. Raw is set when the body was JSON,
// Text when it was not.
type UploadResult struct {
	DocumentID entity.ID
	Raw        json.RawMessage
	Text       string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadDocument sends file to the project as multipart form data with the
// fields `proyecto_id` and `documento`. It is not retried and not timed out by
// the client; cancel ctx to abort.
func (c *Client) UploadDocument(ctx context.Context, projectID entity.ID, file UploadFile, onProgress ProgressFunc) (*UploadResult, error) {
	const op = "upload-documento"

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	// The multipart framing is rendered up front so the total length is known
	// before the file is streamed.
	var frame bytes.Buffer
	mw := multipart.NewWriter(&frame)
	if err := mw.WriteField("proyecto_id", projectID.String()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="documento"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", contentType)
	if _, err := mw.CreatePart(header); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	prefix := append([]byte(nil), frame.Bytes()...)
	frame.Reset()
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	suffix := append([]byte(nil), frame.Bytes()...)

	var body io.Reader = io.MultiReader(bytes.NewReader(prefix), file.Reader, bytes.NewReader(suffix))
	contentLength := int64(-1)
	if file.Size >= 0 {
		contentLength = int64(len(prefix)) + file.Size + int64(len(suffix))
		if onProgress != nil {
			body = newProgressReader(body, contentLength, onProgress)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.uploadPath, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.ContentLength = contentLength
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, err := c.send(ctx, op, req)
	if err != nil {
		return nil, err
	}
	return parseUploadResult(raw), nil
}

func parseUploadResult(raw []byte) *UploadResult {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return &UploadResult{}
	}

	var payload struct {
		DocumentID entity.ID `json:"documento_id"`
		ID         entity.ID `json:"id"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return &UploadResult{Text: string(raw)}
	}

	result := &UploadResult{Raw: json.RawMessage(trimmed), DocumentID: payload.DocumentID}
	if result.DocumentID.IsZero() {
		result.DocumentID = payload.ID
	}
	return result
}

type progressReader struct {
	r          io.Reader
	total      int64
	sent       int64
	last       int
	onProgress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, onProgress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, last: -1, onProgress: onProgress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.total <= 0 {
		return
	}
	sent := p.sent
	if sent > p.total {
		sent = p.total
	}
	percent := int(sent * 100 / p.total)
	if percent > p.last {
		p.last = percent
		p.onProgress(percent)
	}
}
