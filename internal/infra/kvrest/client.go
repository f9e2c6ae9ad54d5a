package kvrest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/jx"
	"golang.org/x/time/rate"

	"staysee-store/internal/kvstore"
)

const backendName = "kv-rest"

// Client talks to an Upstash/Vercel KV compatible REST endpoint.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithRateLimit(rps float64, burst int) Option {
	return func(cl *Client) {
		cl.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func New(baseURL, token string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string {
	return backendName
}

// Get returns the stored JSON document. A null result is reported as
// kvstore.ErrNotFound.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	body, err := c.do(ctx, http.MethodGet, "/get/"+escapeComponent(key))
	if err != nil {
		return nil, err
	}

	var (
		result []byte
		found  bool
	)
	d := jx.DecodeBytes(body)
	err = d.ObjBytes(func(d *jx.Decoder, k []byte) error {
		switch string(k) {
		case "result":
			if d.Next() == jx.Null {
				return d.Null()
			}
			s, err := d.Str()
			if err != nil {
				return fmt.Errorf("result: %w", err)
			}
			result, found = []byte(s), true
			return nil
		case "error":
			msg, err := d.Str()
			if err != nil {
				return err
			}
			return fmt.Errorf("kv error: %s", msg)
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("decode get %s: %w", key, err)
	}
	if !found {
		return nil, kvstore.ErrNotFound
	}
	return result, nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	path := "/set/" + escapeComponent(key) + "/" + escapeComponent(string(value))
	if secs := int64(ttl / time.Second); secs > 0 {
		path = "/setex/" + escapeComponent(key) + "/" + strconv.FormatInt(secs, 10) + "/" + escapeComponent(string(value))
	}

	_, err := c.do(ctx, http.MethodPost, path)
	return err
}

func (c *Client) do(ctx context.Context, method, path string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("KV REST request rejected", "method", method, "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// componentEscaper encodes what url.PathEscape leaves alone in a segment,
// so "+7 999" or "a=b&c" reach the server as sent.
var componentEscaper = strings.NewReplacer(
	"$", "%24",
	"&", "%26",
	"+", "%2B",
	",", "%2C",
	":", "%3A",
	";", "%3B",
	"=", "%3D",
	"@", "%40",
)

func escapeComponent(s string) string {
	return componentEscaper.Replace(url.PathEscape(s))
}
