package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/chargedocs/chargedocs/internal/core/domain"
	"github.com/chargedocs/chargedocs/internal/core/ports"
)

// Upload submits the multipart form. The socket id, when present, lets
// the backend route progress events for this submission onto the push
// channel the client opened beforehand.
func (c *Client) Upload(ctx context.Context, req ports.UploadRequest) (*domain.Document, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"documentName":  req.DocumentName,
		"procedureDate": req.ProcedureDate,
		"hospital":      req.Hospital,
		"doctor":        req.Doctor,
		"procedure":     req.Procedure,
		"billingNo":     req.BillingNo,
	}
	if req.SocketID != "" {
		fields["socketId"] = req.SocketID
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write upload field %s: %w", name, err)
		}
	}

	part, err := createFilePart(writer, req.Filename, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("create upload file part: %w", err)
	}
	if _, err := io.Copy(part, req.Body); err != nil {
		return nil, fmt.Errorf("copy upload file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize upload form: %w", err)
	}

	var doc domain.Document
	call := func(ctx context.Context) error {
		resp, err := c.send(ctx, http.MethodPost, "/upload", &body, writer.FormDataContentType(), "documents.upload")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := decodeJSONBody(resp.Body, &doc); err != nil {
			return fmt.Errorf("decode upload response: %w", err)
		}
		return nil
	}
	if err := c.execute(ctx, "documents.upload", call); err != nil {
		return nil, err
	}
	return &doc, nil
}

func createFilePart(writer *multipart.Writer, filename, contentType string) (io.Writer, error) {
	if contentType == "" {
		return writer.CreateFormFile("file", filename)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)
	return writer.CreatePart(header)
}

func escapeQuotes(s string) string {
	replacer := strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
	return replacer.Replace(s)
}
