package reportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
)

const (
	// DefaultBaseURL is where the report backend listens in local setups.
	DefaultBaseURL = "http://localhost:3000"
	// DefaultPath is the report collection endpoint.
	DefaultPath = "/api/reports"

	maxErrorBody = 2048
)

// Operation labels used for upstream call observation.
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Observer receives timing for each upstream call.
type Observer interface {
	ObserveUpstream(operation, outcome string, duration time.Duration)
}

// Config holds report API settings.
type Config struct {
	BaseURL string
	Path    string
	Timeout time.Duration
}

// Multipart is an encoded multipart/form-data request body.
type Multipart struct {
	Body        []byte
	ContentType string
}

// Client talks to the remote report API. It performs no caching and no retries.
type Client struct {
	httpClient *http.Client
	config     Config
	observer   Observer
	logger     *zap.Logger
}

// NewClient creates a report API client. A zero timeout leaves calls unbounded.
func NewClient(config Config, observer Observer, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if !strings.HasPrefix(config.Path, "/") {
		config.Path = "/" + config.Path
	}
	config.Path = strings.TrimRight(config.Path, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		observer:   observer,
		logger:     logger,
	}
}

// List fetches every report.
func (c *Client) List(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := c.do(ctx, OpList, http.MethodGet, c.config.Path, nil, "", &reports); err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, nil
}

// Get fetches a single report.
func (c *Client) Get(ctx context.Context, id int64) (*models.Report, error) {
	var report models.Report
	if err := c.do(ctx, OpGet, http.MethodGet, c.itemPath(id), nil, "", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Create posts a new report as multipart form data.
func (c *Client) Create(ctx context.Context, payload Multipart) (*models.Report, error) {
	var report models.Report
	if err := c.do(ctx, OpCreate, http.MethodPost, c.config.Path, payload.Body, payload.ContentType, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Update replaces a report with a full resubmission.
func (c *Client) Update(ctx context.Context, id int64, payload Multipart) (*models.Report, error) {
	var report models.Report
	if err := c.do(ctx, OpUpdate, http.MethodPut, c.itemPath(id), payload.Body, payload.ContentType, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Delete removes a report.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, OpDelete, http.MethodDelete, c.itemPath(id), nil, "", nil)
}

// ProofURL turns a server-relative proof path into an absolute URL on the API origin.
func (c *Client) ProofURL(proof string) string {
	if proof == "" {
		return ""
	}
	if strings.HasPrefix(proof, "http://") || strings.HasPrefix(proof, "https://") {
		return proof
	}
	if !strings.HasPrefix(proof, "/") {
		proof = "/" + proof
	}
	return c.config.BaseURL + proof
}

func (c *Client) itemPath(id int64) string {
	return c.config.Path + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, contentType string, result any) error {
	url := c.config.BaseURL + path
	start := time.Now()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report request")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("report api request", zap.String("method", method), zap.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, "transport_error", start)
		c.logger.Warn("report api unreachable", zap.String("operation", op), zap.String("url", url), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.observe(op, strconv.Itoa(resp.StatusCode), start)
		c.logger.Warn("report api rejected request",
			zap.String("operation", op),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		if resp.StatusCode == http.StatusNotFound {
			return appErrors.Wrap(fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode), appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report not found")
		}
		return appErrors.Wrap(fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode), appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.observe(op, "ok", start)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && err != io.EOF {
		c.observe(op, "decode_error", start)
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "invalid response from report service")
	}
	c.observe(op, "ok", start)
	return nil
}

func (c *Client) observe(op, outcome string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveUpstream(op, outcome, time.Since(start))
}
