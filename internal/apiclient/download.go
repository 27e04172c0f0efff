package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/me/uniportal/pkg/model"
)

// Saver stores a downloaded document under a filename and returns where it
// ended up.
type Saver interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// DirSaver writes downloads into a directory. Each file is written to a
// temp file first and renamed into place; the temp file is removed on any
// failure.
type DirSaver struct {
	Dir string
}

// Save implements Saver.
func (d DirSaver) Save(_ context.Context, filename string, data []byte) (string, error) {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	dest := filepath.Join(dir, filepath.Base(filename))
	tmp, err := os.CreateTemp(dir, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename temp file: %w", err)
	}
	return dest, nil
}

// Download fetches a binary document and hands it to the saver under
// filename. It shares the 401 handling of Do; a 2xx response with an empty
// body fails with ErrEmptyDownload.
func (c *Client) Download(ctx context.Context, path string, query url.Values, filename string) (string, error) {
	op := http.MethodGet + " " + path
	reqID := uuid.NewString()
	logger := c.logger.With("op", op, "request_id", reqID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.url(model.Request{Path: path, Query: query}), nil)
	if err != nil {
		return "", fmt.Errorf("%s: create request: %w", op, err)
	}
	httpReq.Header.Set("Accept", "application/pdf, application/octet-stream")
	httpReq.Header.Set("X-Request-ID", reqID)
	if token := c.token(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", c.expire(ctx, op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		var env model.Response
		if json.Unmarshal(body, &env) == nil && env.ErrorText() != "" {
			msg = env.ErrorText()
		}
		logger.Debug("download rejected", "status", resp.StatusCode)
		return "", &RequestError{Op: op, StatusCode: resp.StatusCode, Message: msg, Code: env.Code}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(data) == 0 {
		logger.Warn("server returned an empty document", "status", resp.StatusCode)
		return "", ErrEmptyDownload
	}

	saved, err := c.saver.Save(ctx, filename, data)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", filename, err)
	}
	logger.Debug("download saved", "file", saved, "bytes", len(data), "duration", time.Since(start))
	return saved, nil
}

// IDCardFilename is the name an ID card is saved under.
func IDCardFilename(username string) string {
	return "ID_Card_" + username + ".pdf"
}

// ReceiptFilename is the name a payment receipt is saved under.
func ReceiptFilename(paymentID, username string) string {
	return "Receipt_" + paymentID + "_" + username + ".pdf"
}

// PerformanceReportFilename is the name a performance report downloaded on
// day is saved under.
func PerformanceReportFilename(username string, day time.Time) string {
	return "Performance_Report_" + username + "_" + day.Format(dateLayout) + ".pdf"
}

// fileUsername is the username used in download filenames.
func (c *Client) fileUsername(ctx context.Context) string {
	if u := c.CurrentUser(ctx); u != nil && u.Username != "" {
		return u.Username
	}
	return "user"
}

// DownloadIDCard saves the signed-in student's ID card.
func (c *Client) DownloadIDCard(ctx context.Context) (string, error) {
	return c.Download(ctx, PathStudentIDCard, nil, IDCardFilename(c.fileUsername(ctx)))
}

// DownloadReceipt saves the receipt of one payment.
func (c *Client) DownloadReceipt(ctx context.Context, paymentID string) (string, error) {
	if paymentID == "" {
		return "", &ValidationError{Field: "payment_id", Message: "is required"}
	}
	q := url.Values{"payment_id": {paymentID}}
	return c.Download(ctx, PathStudentReceipt, q, ReceiptFilename(paymentID, c.fileUsername(ctx)))
}

// DownloadPerformanceReport saves the signed-in student's performance
// report, stamped with today's date.
func (c *Client) DownloadPerformanceReport(ctx context.Context) (string, error) {
	name := PerformanceReportFilename(c.fileUsername(ctx), c.now())
	return c.Download(ctx, PathStudentReport, nil, name)
}
