package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const module = "Gateway"

// ObserveFunc receives one call per finished request. status is 0 when the
// request never got a response.
type ObserveFunc func(op string, status int, elapsed time.Duration)

type Options struct {
	BaseURL     string
	GraphQLPath string
	UploadPath  string

	// RequestTimeout bounds REST and GraphQL calls. Uploads are never timed
	// out by the client.
	RequestTimeout time.Duration

	// RateLimit paces outgoing requests per second; zero disables pacing.
	RateLimit float64
	RateBurst int

	HTTPClient *http.Client
	Logger     logger.ILogger
	Observe    ObserveFunc
}

// Client talks to the API gateway over REST, GraphQL and multipart upload.
// The bearer token travels in the request context.
type Client struct {
	baseURL     string
	graphqlPath string
	uploadPath  string
	timeout     time.Duration
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      logger.ILogger
	observe     ObserveFunc
}

func New(opts Options) *Client {
	if opts.GraphQLPath == "" {
		opts.GraphQLPath = "/graphql"
	}
	if opts.UploadPath == "" {
		opts.UploadPath = "/upload-documento"
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Observe == nil {
		opts.Observe = func(string, int, time.Duration) {}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		graphqlPath: opts.GraphQLPath,
		uploadPath:  opts.UploadPath,
		timeout:     opts.RequestTimeout,
		httpClient:  httpClient,
		limiter:     limiter,
		logger:      opts.Logger,
		observe:     opts.Observe,
	}
}

type tokenKey struct{}

func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// send executes req and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, op string, req *http.Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, 0, time.Since(start))
		c.logger.Warn(module, "Request failed", map[string]interface{}{"op": op, "error": err.Error()})
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observe(op, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	c.logger.Debug(module, "Request finished", map[string]interface{}{
		"op":          op,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return body, nil
}

// rest sends a JSON request and decodes the JSON response into out when out
// is non-nil.
func (c *Client) rest(ctx context.Context, op, method, path string, query url.Values, in, out interface{}) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	raw, err := c.send(ctx, op, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return malformed(op, err)
	}
	return nil
}

func pathf(format string, args ...interface{}) string {
	escaped := make([]interface{}, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(fmt.Sprint(a))
	}
	return fmt.Sprintf(format, escaped...)
}
