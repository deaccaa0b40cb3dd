package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/pdfmentor-backend/internal/platform/envutil"
	"github.com/yungbote/pdfmentor-backend/internal/platform/httpx"
	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

const defaultBaseURL = "https://api.tavily.com"

type Config struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MaxResults  int
	SearchDepth string
	MaxRetries  int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:      envutil.String("TAVILY_API_KEY", ""),
		BaseURL:     envutil.String("TAVILY_BASE_URL", defaultBaseURL),
		Timeout:     envutil.Seconds("TAVILY_TIMEOUT_SECONDS", 15*time.Second),
		MaxResults:  envutil.Int("TAVILY_MAX_RESULTS", 5),
		SearchDepth: envutil.String("TAVILY_SEARCH_DEPTH", "basic"),
		MaxRetries:  envutil.Int("TAVILY_MAX_RETRIES", 2),
	}
}

// Client calls the Tavily search API.
type Client struct {
	log        *logger.Logger
	httpClient *http.Client
	apiKey     string
	baseURL    string
	maxResults int
	depth      string
	maxRetries int
}

type searchRequest struct {
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
	IncludeAnswer bool   `json:"include_answer"`
}

func New(cfg Config, log *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing TAVILY_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		log:        log.With("client", "TavilyClient"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		maxResults: cfg.MaxResults,
		depth:      cfg.SearchDepth,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Search returns Tavily's JSON response as a generic object.
func (c *Client) Search(ctx context.Context, query string) (map[string]any, error) {
	body := searchRequest{
		Query:         query,
		SearchDepth:   c.depth,
		MaxResults:    c.maxResults,
		IncludeAnswer: true,
	}
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, "/search", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpx.StatusError{Service: "tavily", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("tavily decode error: %w", uErr)
			}
			return nil
		}
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return err
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 5*time.Second))
		c.log.Warn("Tavily request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}
	return fmt.Errorf("unreachable retry loop")
}
