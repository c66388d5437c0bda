package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chargedocs/chargedocs/internal/core/domain"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export fetches the spreadsheet for the inclusive date range. The
// backend answers either the workbook binary or a JSON error; a JSON
// body on a 2xx still counts as a failure.
func (c *Client) Export(ctx context.Context, start, end time.Time) ([]byte, error) {
	payload := map[string]string{
		"startDate": start.Format(time.RFC3339),
		"endDate":   end.Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal export request: %w", err)
	}

	var workbook []byte
	call := func(ctx context.Context) error {
		resp, err := c.send(ctx, http.MethodPost, "/export", bytes.NewReader(body), "application/json", "documents.export")
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		contentType := resp.Header.Get("Content-Type")
		if strings.Contains(contentType, "json") {
			var failure struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Error != "" {
				return domain.WrapError(domain.ErrTemporary, "documents.export", errors.New(failure.Error))
			}
			return domain.WrapError(domain.ErrTemporary, "documents.export", errors.New("backend returned JSON instead of a workbook"))
		}
		if contentType != "" && !strings.Contains(contentType, xlsxMIME) && !strings.Contains(contentType, "octet-stream") {
			return domain.WrapError(domain.ErrTemporary, "documents.export", fmt.Errorf("unexpected content type %s", contentType))
		}

		workbook, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read export body: %w", err)
		}
		return nil
	}
	if err := c.execute(ctx, "documents.export", call); err != nil {
		return nil, err
	}
	return workbook, nil
}
