package prereq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/coursemate/internal/courses"
	"github.com/jonathan/coursemate/internal/orderedjson"
	"github.com/jonathan/coursemate/internal/types"
)

// DefaultTimeout bounds a single lookup round trip.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a lookup response is read.
const maxBodyBytes = 1 << 20

// Options configures the lookup client.
type Options struct {
	// Timeout per request; zero leaves the transport default in place.
	Timeout   time.Duration
	UserAgent string
	// Observe, when set, is called after every lookup with its result.
	Observe func(course types.CourseCode, result Result)
}

// DefaultOptions returns sensible defaults for the client.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: "coursemate/1.0",
	}
}

// Client calls GET {BaseURL}/api/{course}. It performs one round trip per
// call, with no retry and no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	options    *Options
}

// NewClient creates a client for the lookup service at baseURL.
func NewClient(baseURL string, opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		options:    opts,
	}
}

// lookupResponse is the endpoint's body. Courses is either a flat array or
// an object of group label -> array.
type lookupResponse struct {
	Courses json.RawMessage `json:"courses"`
}

// Lookup fetches and flattens the prerequisites of course. Any failure yields
// an empty Result with Err set.
func (c *Client) Lookup(ctx context.Context, course types.CourseCode) Result {
	result := c.lookup(ctx, course)
	if c.options.Observe != nil {
		c.options.Observe(course, result)
	}
	return result
}

func (c *Client) lookup(ctx context.Context, course types.CourseCode) Result {
	if course.IsZero() {
		return Failed(&Error{Message: "empty course code"})
	}

	endpoint := c.baseURL + "/api/" + url.PathEscape(string(course))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Failed(&Error{Course: string(course), Message: "failed to create request", Cause: err})
	}
	req.Header.Set("Accept", "application/json")
	if c.options.UserAgent != "" {
		req.Header.Set("User-Agent", c.options.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Failed(&Error{Course: string(course), Message: "HTTP request failed", Cause: err})
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Failed(&Error{Course: string(course), Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Failed(&Error{Course: string(course), Message: "failed to read response body", Cause: err})
	}

	codes, err := ParseResponse(body)
	if err != nil {
		return Failed(&Error{Course: string(course), Message: "malformed response", Cause: err})
	}
	return Result{Courses: codes}
}

// ParseResponse extracts the prerequisite codes from a lookup response body,
// flattening any group structure in document order. Entries are normalized
// and empty ones dropped.
func ParseResponse(body []byte) ([]types.CourseCode, error) {
	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Courses) == 0 || string(resp.Courses) == "null" {
		return nil, fmt.Errorf("missing courses field")
	}

	values, err := orderedjson.Strings(resp.Courses)
	if err != nil {
		return nil, err
	}

	codes := make([]types.CourseCode, 0, len(values))
	for _, v := range values {
		if code := courses.NormalizeCode(v); !code.IsZero() {
			codes = append(codes, code)
		}
	}
	return codes, nil
}
