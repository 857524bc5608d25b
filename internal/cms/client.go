package cms

import (
	"context"
	"encoding/json"
	"expert-api/internal/logger"
	"expert-api/internal/metrics"
	"expert-api/internal/utils"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetcher retrieves a full collection, paginated to the end and filtered
// of archived/hidden items.
type Fetcher interface {
	FetchCollection(ctx context.Context, c Collection) ([]Item, error)
}

// RawFetcher retrieves a full collection without the retrieval-boundary filter.
type RawFetcher interface {
	FetchRaw(ctx context.Context, c Collection) ([]Item, error)
}

const (
	defaultBaseURL  = "https://api.webflow.com/v2"
	defaultPageSize = 100
	// hard stop for a store that keeps reporting a larger total than it serves
	maxPages = 1000
)

// Client talks to the content store REST API.
type Client struct {
	base     string
	token    string
	ids      map[Collection]string
	pageSize int
	http     *http.Client
}

// New builds a client. ids maps logical collections to store collection ids.
// A nil httpClient gets a 10s timeout client.
func New(base, token string, ids map[Collection]string, httpClient *http.Client) *Client {
	if base == "" {
		base = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		token:    token,
		ids:      ids,
		pageSize: defaultPageSize,
		http:     httpClient,
	}
}

// NewFromEnv reads CMS_API_BASE, CMS_API_TOKEN, CMS_TIMEOUT, CMS_PAGE_SIZE and
// CMS_COLLECTION_<NAME> for every collection.
func NewFromEnv() *Client {
	ids := make(map[Collection]string, len(All))
	for _, c := range All {
		if v := utils.EnvString("CMS_COLLECTION_"+strings.ToUpper(string(c)), ""); v != "" {
			ids[c] = v
		}
	}
	c := New(
		utils.EnvString("CMS_API_BASE", defaultBaseURL),
		utils.EnvString("CMS_API_TOKEN", ""),
		ids,
		&http.Client{Timeout: utils.EnvDuration("CMS_TIMEOUT", 10*time.Second)},
	)
	if n := utils.EnvInt("CMS_PAGE_SIZE", defaultPageSize); n > 0 {
		c.pageSize = n
	}
	logger.L().Debug("cms_env", "base", c.base, "collections", len(ids), "page_size", c.pageSize)
	return c
}

type pageResponse struct {
	Items      []Item `json:"items"`
	Pagination struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
		Total  int `json:"total"`
	} `json:"pagination"`
}

// FetchCollection implements Fetcher.
func (c *Client) FetchCollection(ctx context.Context, col Collection) ([]Item, error) {
	items, err := c.FetchRaw(ctx, col)
	if err != nil {
		return nil, err
	}
	return Filter(col, items), nil
}

// FetchRaw walks every page of a collection.
func (c *Client) FetchRaw(ctx context.Context, col Collection) ([]Item, error) {
	id, ok := c.ids[col]
	if !ok || id == "" {
		return nil, &FetchError{Collection: col, Err: ErrUnknownCollection}
	}
	t0 := time.Now()
	var out []Item
	offset := 0
	for page := 0; page < maxPages; page++ {
		p, err := c.fetchPage(ctx, col, id, offset)
		if err != nil {
			metrics.CMSFetchTotal.WithLabelValues(string(col), "fail").Inc()
			logger.L().Error("cms_fetch_error", "collection", col, "offset", offset, "err", err)
			return nil, err
		}
		out = append(out, p.Items...)
		offset += len(p.Items)
		if len(p.Items) == 0 || offset >= p.Pagination.Total {
			break
		}
	}
	dur := time.Since(t0).Milliseconds()
	metrics.CMSFetchTotal.WithLabelValues(string(col), "ok").Inc()
	metrics.CMSFetchDurationMs.WithLabelValues(string(col)).Observe(float64(dur))
	logger.L().Debug("cms_fetch_done", "collection", col, "items", len(out), "duration_ms", dur)
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, col Collection, id string, offset int) (*pageResponse, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(c.pageSize))
	u := c.base + "/collections/" + url.PathEscape(id) + "/items?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Collection: col, Err: err}
	}
	req.Header.Set("accept", "application/json")
	if c.token != "" {
		req.Header.Set("authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Collection: col, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Collection: col, Status: resp.StatusCode, Err: ErrUpstreamStatus}
	}
	var p pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, &FetchError{Collection: col, Status: resp.StatusCode, Err: fmt.Errorf("decode page: %w", err)}
	}
	return &p, nil
}
