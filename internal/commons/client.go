// Package commons is the client for the Wikimedia Commons web services used by
// the Commons app: the toolforge statistics tool, the Wikidata SPARQL endpoint,
// the campaigns feed and the Commons MediaWiki API.
//
// Every operation performs exactly one GET when called and returns its result
// together with an error. On failure the result is the operation's neutral
// value (0, nil or an empty slice), so callers that only want the legacy
// "empty on failure" behavior can ignore the error.
package commons

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/olgasafonova/commons-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/commons-mcp-server/internal/errors"
	"github.com/olgasafonova/commons-mcp-server/internal/infra"
	"github.com/olgasafonova/commons-mcp-server/internal/kvstore"
)

// Default upstream endpoints
const (
	DefaultToolforgeURL     = "https://tools.wmflabs.org/commons-android-app/tool-commons-android-app"
	DefaultSparqlURL        = "https://query.wikidata.org/sparql"
	DefaultCampaignsURL     = "https://raw.githubusercontent.com/commons-app/campaigns/master/campaigns.json"
	DefaultCommonsAPIURL    = "https://commons.wikimedia.org/w/api.php"
	DefaultAchievementsPath = "/feedback.py"
)

// Service labels used for metrics, spans and errors
const (
	serviceToolforge = "toolforge"
	serviceSparql    = "sparql"
	serviceCampaigns = "campaigns"
	serviceCommons   = "commons"
)

// Endpoints holds the immutable upstream configuration.
type Endpoints struct {
	ToolforgeURL  string
	SparqlURL     string
	CampaignsURL  string
	CommonsAPIURL string

	// AchievementsPath is appended to ToolforgeURL. A "{user}" placeholder is
	// replaced with the escaped page-title form of the user name.
	AchievementsPath string

	// Language requested for image metadata (iiextmetadatalanguage). Blank omits it.
	Language string
}

// DefaultEndpoints returns the production Wikimedia endpoints
func DefaultEndpoints() Endpoints {
	return Endpoints{
		ToolforgeURL:     DefaultToolforgeURL,
		SparqlURL:        DefaultSparqlURL,
		CampaignsURL:     DefaultCampaignsURL,
		CommonsAPIURL:    DefaultCommonsAPIURL,
		AchievementsPath: DefaultAchievementsPath,
		Language:         "en",
	}
}

// Client talks to the Commons services. It is safe for concurrent use.
type Client struct {
	*base.Client

	endpoints Endpoints
	store     kvstore.Store
	keys      *infra.KeyedMutex
	now       func() time.Time

	randMu sync.Mutex
	rand   *rand.Rand
}

// ClientOption configures the Client
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseOpts []base.ClientOption
	now      func() time.Time
	rand     *rand.Rand
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) {
		cfg.baseOpts = append(cfg.baseOpts, base.WithHTTPClient(c))
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(cfg *clientConfig) {
		cfg.baseOpts = append(cfg.baseOpts, base.WithLogger(l))
	}
}

// WithUserAgent sets the User-Agent sent to Wikimedia
func WithUserAgent(ua string) ClientOption {
	return func(cfg *clientConfig) {
		cfg.baseOpts = append(cfg.baseOpts, base.WithUserAgent(ua))
	}
}

// WithClock overrides the time source (picture-of-the-day date, recent-changes start)
func WithClock(now func() time.Time) ClientOption {
	return func(cfg *clientConfig) {
		cfg.now = now
	}
}

// WithRandom overrides the random source used for the recent-changes start.
// The Client serializes access to r.
func WithRandom(r *rand.Rand) ClientOption {
	return func(cfg *clientConfig) {
		cfg.rand = r
	}
}

// NewClient creates a Commons client. A nil store falls back to an in-memory one.
func NewClient(endpoints Endpoints, store kvstore.Store, opts ...ClientOption) *Client {
	cfg := clientConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rand == nil {
		cfg.rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	if store == nil {
		store = kvstore.NewMemoryStore(0)
	}

	return &Client{
		Client:    base.NewClient(cfg.baseOpts...),
		endpoints: endpoints,
		store:     store,
		keys:      infra.NewKeyedMutex(),
		now:       cfg.now,
		rand:      cfg.rand,
	}
}

// Endpoints returns the configured endpoints
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// get performs one GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, service, action, reqURL string) ([]byte, error) {
	body, _, err := c.DoRequest(ctx, base.RequestConfig{
		URL:     reqURL,
		Service: service,
		Action:  action,
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// getJSON performs one GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, service, action, reqURL string, out any) error {
	body, err := c.get(ctx, service, action, reqURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &apierrors.DecodeError{Service: service, Action: action, Err: err}
	}
	return nil
}

// apiURL builds a Commons API URL with action=query&format=json plus params.
func (c *Client) apiURL(params url.Values) string {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return base.JoinURL(c.endpoints.CommonsAPIURL, "", q)
}

// pageTitleText converts a user name to its wiki page-title form: underscores
// for spaces and an upper-case first letter.
func pageTitleText(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	name = strings.ReplaceAll(name, " ", "_")
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
