package rancher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/gbme/platform-assistant/logger"
)

// ErrUnreachable is returned when the Rancher API cannot be reached at all.
var ErrUnreachable = errors.New("cannot connect to Rancher")

// APIError is a non-2xx answer from the Rancher API.
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rancher api %s: HTTP %d %s", e.Path, e.StatusCode, e.Body)
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string
	VerifySSL bool
	Timeout   time.Duration
	Retries   int
	CacheTTL  time.Duration
}

const clustersKey = "clusters"

// Client talks to the Rancher v3 REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *retryablehttp.Client
	clusters   *expirable.LRU[string, []Cluster] // nil when caching is disabled
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	hc := retryablehttp.NewClient()
	hc.RetryMax = opts.Retries
	hc.RetryWaitMin = 200 * time.Millisecond
	hc.RetryWaitMax = 2 * time.Second
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	hc.Logger = retryLogger{logger.Component("rancher")}
	hc.HTTPClient = &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !opts.VerifySSL, //nolint:gosec // opt-in via RANCHER_VERIFY_SSL=false
			},
		},
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		httpClient: hc,
	}
	if opts.CacheTTL > 0 {
		c.clusters = expirable.NewLRU[string, []Cluster](1, nil, opts.CacheTTL)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w at %s: %v", ErrUnreachable, c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 10<<20)) // 10 MB cap
	if resp.StatusCode >= 400 {
		return &APIError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("rancher api %s: decode: %w", path, err)
	}
	return nil
}

// Clusters lists every cluster visible to the token. The list is cached for the configured TTL.
func (c *Client) Clusters(ctx context.Context) ([]Cluster, error) {
	if c.clusters != nil {
		if cached, ok := c.clusters.Get(clustersKey); ok {
			return cached, nil
		}
	}

	var out collection[apiCluster]
	if err := c.get(ctx, "/v3/clusters", nil, &out); err != nil {
		return nil, err
	}
	clusters := make([]Cluster, 0, len(out.Data))
	for _, ac := range out.Data {
		clusters = append(clusters, ac.toCluster())
	}

	if c.clusters != nil {
		c.clusters.Add(clustersKey, clusters)
	}
	return clusters, nil
}

// Nodes lists the nodes of one cluster.
func (c *Client) Nodes(ctx context.Context, clusterID string) ([]Node, error) {
	var out collection[apiNode]
	if err := c.get(ctx, "/v3/nodes", url.Values{"clusterId": {clusterID}}, &out); err != nil {
		return nil, err
	}
	nodes := make([]Node, 0, len(out.Data))
	for _, an := range out.Data {
		nodes = append(nodes, an.toNode())
	}
	return nodes, nil
}

// retryLogger adapts zerolog to retryablehttp.LeveledLogger.
type retryLogger struct {
	l zerolog.Logger
}

func (r retryLogger) Error(msg string, kv ...interface{}) { r.l.Error().Fields(kv).Msg(msg) }
func (r retryLogger) Info(msg string, kv ...interface{})  { r.l.Debug().Fields(kv).Msg(msg) }
func (r retryLogger) Debug(msg string, kv ...interface{}) { r.l.Trace().Fields(kv).Msg(msg) }
func (r retryLogger) Warn(msg string, kv ...interface{})  { r.l.Warn().Fields(kv).Msg(msg) }
