package jobsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"wikijobs/internal/config"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/pkg/utils"
)

const serviceName = "adzuna"

// Query describes one job search
type Query struct {
	Role           string
	Location       string
	Country        string // ISO 3166 alpha-2, lower case
	ResultsPerPage int
}

// Client calls the Adzuna job search API
type Client struct {
	appID          string
	appKey         string
	baseURL        string
	country        string
	resultsPerPage int
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxTries       uint
	retryInterval  time.Duration
	logger         types.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL points the client at a different API root
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRetryInterval sets the initial backoff between retried requests
func WithRetryInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryInterval = d
	}
}

// NewClient creates a job search client from configuration
func NewClient(cfg *config.Config, opts ...ClientOption) *Client {
	perSecond := rate.Inf
	if cfg.JobSearch.RateLimit > 0 {
		perSecond = rate.Limit(float64(cfg.JobSearch.RateLimit) / 60.0)
	}

	c := &Client{
		appID:          cfg.JobSearch.AppID,
		appKey:         cfg.JobSearch.AppKey,
		baseURL:        strings.TrimRight(cfg.JobSearch.BaseURL, "/"),
		country:        utils.GetStringOrDefault(cfg.JobSearch.Country, "gb"),
		resultsPerPage: cfg.JobSearch.ResultsPerPage,
		httpClient:     &http.Client{Timeout: cfg.JobSearch.Timeout},
		limiter:        rate.NewLimiter(perSecond, 1),
		maxTries:       uint(max(cfg.JobSearch.MaxRetries, 0)) + 1,
		retryInterval:  500 * time.Millisecond,
		logger:         logging.ForComponent("jobsearch"),
	}
	if c.resultsPerPage <= 0 {
		c.resultsPerPage = 10
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether API credentials are present
func (c *Client) Configured() bool {
	return c.appID != "" && c.appKey != ""
}

// Search runs a query and returns the raw results in API order.
// Missing credentials fail with a ConfigurationError before any request is
// made. 429 and gateway errors are retried with exponential backoff; other
// failures, and retries that run out, fail with a job-search-failed
// UpstreamError.
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	if !c.Configured() {
		return nil, utils.NewConfigurationError("ADZUNA_APP_ID/ADZUNA_APP_KEY", "API credentials not configured")
	}

	endpoint := c.searchURL(q)
	startTime := time.Now()

	c.logger.Debug("Searching jobs", map[string]interface{}{
		"role":     q.Role,
		"location": q.Location,
		"country":  c.countryFor(q),
	})

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	bo.MaxInterval = 10 * c.retryInterval

	body, err := backoff.Retry(ctx, func() (*SearchResponse, error) {
		return c.fetch(ctx, endpoint)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithMaxElapsedTime(30*time.Second),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("Job search attempt failed, retrying", map[string]interface{}{
				types.FieldError: err.Error(),
				"retry_in":       next.String(),
			})
		}),
	)
	if err != nil {
		if !IsJobSearchError(err) {
			err = NewJobSearchError("Failed to fetch jobs", 0, err)
		}
		return nil, err
	}

	c.logger.Info("Job search completed", map[string]interface{}{
		"role":            q.Role,
		"results":         len(body.Results),
		"total":           body.Count,
		"processing_time": time.Since(startTime).String(),
	})

	return body.Results, nil
}

// fetch makes one request. Errors worth retrying are returned plain, all
// others wrapped in backoff.Permanent.
func (c *Client) fetch(ctx context.Context, endpoint string) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(NewJobSearchError("rate limiter wait failed", 0, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(NewJobSearchError("failed to create request", 0, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, backoff.Permanent(NewJobSearchError("Failed to fetch jobs", 0, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		jobErr := NewJobSearchError("Failed to fetch jobs", resp.StatusCode, nil)
		if retryableStatus(resp.StatusCode) {
			return nil, jobErr
		}
		return nil, backoff.Permanent(jobErr)
	}

	var body SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, backoff.Permanent(NewJobSearchError("invalid search response", resp.StatusCode, err))
	}
	return &body, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (c *Client) countryFor(q Query) string {
	return strings.ToLower(utils.GetStringOrDefault(q.Country, c.country))
}

func (c *Client) searchURL(q Query) string {
	perPage := q.ResultsPerPage
	if perPage <= 0 {
		perPage = c.resultsPerPage
	}

	params := url.Values{}
	params.Set("app_id", c.appID)
	params.Set("app_key", c.appKey)
	params.Set("what", q.Role)
	params.Set("where", q.Location)
	params.Set("results_per_page", strconv.Itoa(perPage))
	params.Set("content-type", "application/json")

	return fmt.Sprintf("%s/%s/search/1?%s", c.baseURL, url.PathEscape(c.countryFor(q)), params.Encode())
}

// NewJobSearchError builds the job-search-failed error. Pass status 0 when no
// response was received.
func NewJobSearchError(message string, status int, err error) *utils.UpstreamError {
	return utils.NewUpstreamError(utils.KindJobSearchFailed, serviceName, message, status, err)
}

// IsJobSearchError reports whether err is a job-search-failed error
func IsJobSearchError(err error) bool {
	return utils.IsUpstreamKind(err, utils.KindJobSearchFailed)
}
