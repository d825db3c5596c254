package appsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/odyssey-erp/prodmon/internal/production"
)

const (
	defaultBaseURL  = "https://api.appsheet.com/api/v2"
	defaultTable    = "Bảng theo dõi sản xuất"
	defaultLocale   = "vi-VN"
	defaultTimezone = "Asia/Ho_Chi_Minh"
	defaultTimeout  = 15 * time.Second
	maxBodyBytes    = 16 << 20
)

// ErrNotConfigured reports that credentials are missing.
var ErrNotConfigured = errors.New("appsheet: app id and access key required")

// Config holds the backend connection settings.
type Config struct {
	AppID     string
	AccessKey string
	Table     string
	BaseURL   string
	Locale    string
	Timezone  string
	Timeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = defaultTable
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Configured reports whether live fetches can be attempted.
func (c Config) Configured() bool {
	return c.AppID != "" && c.AccessKey != ""
}

// Client reads production rows from the AppSheet table API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a client. A nil httpClient gets one bounded by cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, httpClient: httpClient, logger: logger}
}

type findProperties struct {
	Locale   string `json:"Locale"`
	Timezone string `json:"Timezone"`
}

type findRequest struct {
	Action     string         `json:"Action"`
	Properties findProperties `json:"Properties"`
	Rows       []any          `json:"Rows"`
	Selector   string         `json:"Selector,omitempty"`
}

// FetchRows implements production.RowSource. Missing credentials and every
// transport or decoding failure yield the fallback rows instead of an error.
func (c *Client) FetchRows(ctx context.Context, opts production.FetchOptions) (production.FetchResult, error) {
	if !c.cfg.Configured() {
		c.logger.Warn("appsheet not configured, using fallback rows")
		return c.fallback(), nil
	}
	requestID := uuid.NewString()
	rows, err := c.find(ctx, requestID, opts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return production.FetchResult{}, ctxErr
		}
		c.logger.Warn("appsheet fetch failed, using fallback rows",
			slog.String("request_id", requestID),
			slog.String("table", c.cfg.Table),
			slog.Any("error", err),
		)
		return c.fallback(), nil
	}
	c.logger.Debug("appsheet rows fetched",
		slog.String("request_id", requestID),
		slog.Int("rows", len(rows)),
	)
	production.ObserveFetch(production.SourceLive)
	return production.FetchResult{Rows: rows}, nil
}

func (c *Client) fallback() production.FetchResult {
	production.ObserveFetch(production.SourceFallback)
	return production.FetchResult{Rows: production.SampleRows(), Fallback: true}
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/apps/%s/tables/%s/Action", c.cfg.BaseURL, url.PathEscape(c.cfg.AppID), url.PathEscape(c.cfg.Table))
}

func (c *Client) find(ctx context.Context, requestID string, opts production.FetchOptions) ([]production.RawRow, error) {
	payload, err := json.Marshal(findRequest{
		Action:     "Find",
		Properties: findProperties{Locale: c.cfg.Locale, Timezone: c.cfg.Timezone},
		Rows:       []any{},
		Selector:   Selector(opts),
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("ApplicationAccessKey", c.cfg.AccessKey)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("appsheet returned status %d", resp.StatusCode)
	}
	return decodeRows(body)
}

// decodeRows accepts either a bare array of rows or an object carrying them
// under "Rows". Any other well-formed JSON shape yields no rows.
func decodeRows(body []byte) ([]production.RawRow, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []production.RawRow{}, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("appsheet: malformed response body")
	}
	doc := gjson.ParseBytes(body)
	list := doc
	if !doc.IsArray() {
		list = doc.Get("Rows")
	}
	rows := []production.RawRow{}
	if !list.IsArray() {
		return rows, nil
	}
	list.ForEach(func(_, item gjson.Result) bool {
		if obj, ok := item.Value().(map[string]any); ok {
			rows = append(rows, production.RawRow(obj))
		}
		return true
	})
	return rows, nil
}
