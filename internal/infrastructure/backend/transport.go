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

func (c *Client) getJSON(ctx context.Context, path string, out any, operation string) error {
	return c.roundTrip(ctx, http.MethodGet, path, nil, "", out, operation)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}
	return c.roundTrip(ctx, method, path, bytes.NewReader(body), "application/json", out, operation)
}

// roundTrip performs one authenticated call, wrapped in the circuit
// breaker and recorded in metrics. out may be nil for empty responses.
func (c *Client) roundTrip(
	ctx context.Context,
	method, path string,
	body io.Reader,
	contentType string,
	out any,
	operation string,
) error {
	call := func(ctx context.Context) error {
		resp, err := c.send(ctx, method, path, body, contentType, operation)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
		return nil
	}
	return c.execute(ctx, operation, call)
}

func (c *Client) execute(ctx context.Context, operation string, call func(context.Context) error) error {
	start := time.Now()
	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(ctx, operation, call, classifyBackendError)
	} else {
		err = call(ctx)
	}
	if c.metrics != nil {
		c.metrics.ObserveBackendRequest(c.service, operation, time.Since(start), err)
	}
	return err
}

// send issues the request and maps non-2xx statuses to typed errors. The
// caller owns the response body on success.
func (c *Client) send(
	ctx context.Context,
	method, path string,
	body io.Reader,
	contentType string,
	operation string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", operation, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrTemporary, operation, err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, c.statusError(operation, resp)
	}
	return resp, nil
}

func (c *Client) statusError(operation string, resp *http.Response) error {
	message := readErrorMessage(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return domain.WrapError(domain.ErrUnauthorized, operation, errors.New(message))
	case resp.StatusCode == http.StatusNotFound:
		return domain.WrapError(domain.ErrDocumentNotFound, operation, errors.New(message))
	case resp.StatusCode == http.StatusConflict:
		return domain.WrapError(domain.ErrNameConflict, operation, errors.New(message))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return domain.WrapError(domain.ErrInvalidInput, operation, errors.New(message))
	default:
		return domain.WrapError(domain.ErrTemporary, operation, errors.New(message))
	}
}

func decodeJSONBody(body io.Reader, out any) error {
	return json.NewDecoder(body).Decode(out)
}

// readErrorMessage prefers the backend's JSON error field, falling back
// to the raw body or the status line.
func readErrorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return msg
	}
	return resp.Status
}
