// Package placesearch queries a Nominatim-compatible place-search API.
package placesearch

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sells-group/transcript-geo/internal/resilience"
)

const (
	// DefaultBaseURL is the public OpenStreetMap Nominatim endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent identifies this service to the search API.
	DefaultUserAgent = "transcript-geo/1.0 (podcast transcript location resolver)"
	// DefaultLimit is the number of records requested per query.
	DefaultLimit = 10
)

// Searcher resolves one query to zero or more place records.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, error)
}

// Query is either a free-text search or a structured city+country search.
type Query struct {
	Text    string `json:"text,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// FreeText builds a single-term query.
func FreeText(text string) Query { return Query{Text: text} }

// Structured builds a city+country query.
func Structured(city, country string) Query { return Query{City: city, Country: country} }

// IsStructured reports whether q is a city+country query.
func (q Query) IsStructured() bool { return q.City != "" || q.Country != "" }

// Mode returns "structured" or "free_text".
func (q Query) Mode() string {
	if q.IsStructured() {
		return "structured"
	}
	return "free_text"
}

func (q Query) String() string {
	if q.IsStructured() {
		return q.City + " | " + q.Country
	}
	return q.Text
}

// Result is one record returned by the search API.
type Result struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
	Class       string  `json:"class"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
	PlaceRank   int     `json:"place_rank"`
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL points the client at a different Nominatim-compatible server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables the cap.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLimit sets the maximum number of records requested per query.
func WithLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithRetryPolicy replaces the retry policy. The sleeper already configured
// on the client is kept when p has none.
func WithRetryPolicy(p resilience.RetryPolicy) Option {
	return func(c *Client) {
		if p.Sleeper == nil {
			p.Sleeper = c.retry.Sleeper
		}
		c.retry = p
	}
}

// WithSleeper sets the sleeper used for retry backoff.
func WithSleeper(s resilience.Sleeper) Option {
	return func(c *Client) {
		c.retry.Sleeper = s
	}
}

// WithCircuitBreaker guards every request attempt with cb.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// Client talks to a Nominatim-compatible /search endpoint. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	limit      int
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.RetryPolicy
	breaker    *resilience.CircuitBreaker
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		limit:      DefaultLimit,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(1, 1), // public Nominatim policy: 1 req/s
		retry:      resilience.DefaultRetryPolicy(),
	}
	c.retry.Sleeper = resilience.WallClock
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs q against the API. 429s, other non-2xx responses and
// transport failures are retried with exponential backoff; the final error is
// returned once attempts run out. A 404 or an empty array yields no results
// and no error.
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	p := c.retry
	p.Retryable = resilience.IsTransient
	p.OnRetry = resilience.RetryLogger("placesearch", q.Mode())

	return resilience.Retry(ctx, p, func(ctx context.Context) ([]Result, error) {
		return resilience.Guard(ctx, c.breaker, func(ctx context.Context) ([]Result, error) {
			return c.do(ctx, q)
		})
	})
}
