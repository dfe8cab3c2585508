package jobsearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikijobs/internal/config"
	"wikijobs/pkg/utils"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.JobSearch.AppID = "id"
	cfg.JobSearch.AppKey = "key"
	cfg.JobSearch.BaseURL = baseURL
	cfg.JobSearch.RateLimit = 0
	cfg.JobSearch.Timeout = 5 * time.Second
	return cfg
}

func TestSearchMissingCredentials(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.JobSearch.AppKey = ""

	_, err := NewClient(cfg).Search(context.Background(), Query{Role: "nurse"})

	require.Error(t, err)
	assert.True(t, utils.IsConfigurationError(err))
	assert.False(t, called)
}

func TestSearchBuildsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gb/search/1", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "id", q.Get("app_id"))
		assert.Equal(t, "key", q.Get("app_key"))
		assert.Equal(t, "project manager", q.Get("what"))
		assert.Equal(t, "London", q.Get("where"))
		assert.Equal(t, "10", q.Get("results_per_page"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count":2,"results":[
			{"title":"PM","company":{"display_name":"Acme"},"location":{"display_name":"London"},
			 "salary_min":40000,"salary_max":50000,"salary_is_predicted":"0","contract_time":"full_time",
			 "category":{"label":"IT Jobs"},"description":"desc","redirect_url":"https://x","created":"2024-01-15T10:00:00Z"},
			{"title":"Analyst","company":{"display_name":"Beta"},"location":{"display_name":"Leeds"},
			 "salary_is_predicted":"1","category":{"label":"Finance"},"created":"2024-01-16T10:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	results, err := NewClient(testConfig(srv.URL)).Search(context.Background(), Query{Role: "project manager", Location: "London"})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "PM", results[0].Title)
	require.NotNil(t, results[0].SalaryMin)
	assert.Equal(t, 40000.0, *results[0].SalaryMin)
	assert.False(t, bool(results[0].SalaryIsPredicted))
	assert.True(t, bool(results[1].SalaryIsPredicted))
	assert.Nil(t, results[1].SalaryMin)
	assert.Equal(t, "Estimated: £0", Normalize(results[1], 0).Salary)
}

func TestSearchUsesQueryCountry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/us/search/1", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("results_per_page"))
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	results, err := NewClient(testConfig(srv.URL)).Search(context.Background(), Query{Role: "x", Country: "US", ResultsPerPage: 5})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL)).Search(context.Background(), Query{Role: "x"})

	require.Error(t, err)
	assert.True(t, IsJobSearchError(err))

	var upErr *utils.UpstreamError
	require.True(t, errors.As(err, &upErr))
	require.NotNil(t, upErr.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, *upErr.StatusCode)
}

func TestSearchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(testConfig(url)).Search(context.Background(), Query{Role: "x"})

	require.Error(t, err)
	assert.True(t, IsJobSearchError(err))
	var upErr *utils.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Nil(t, upErr.StatusCode)
}

func TestSearchInvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL)).Search(context.Background(), Query{Role: "x"})
	assert.True(t, IsJobSearchError(err))
}

func TestSearchRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"count":1,"results":[{"title":"PM"}]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), WithRetryInterval(time.Millisecond))
	results, err := client.Search(context.Background(), Query{Role: "x"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.JobSearch.MaxRetries = 1
	_, err := NewClient(cfg, WithRetryInterval(time.Millisecond)).Search(context.Background(), Query{Role: "x"})

	require.Error(t, err)
	var upErr *utils.UpstreamError
	require.True(t, errors.As(err, &upErr))
	require.NotNil(t, upErr.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, *upErr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), WithRetryInterval(time.Millisecond)).Search(context.Background(), Query{Role: "x"})
	assert.True(t, IsJobSearchError(err))
	assert.Equal(t, int32(1), calls.Load())
}
