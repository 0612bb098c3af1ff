// Package api implements the client for the fallback HTTP download service:
// a two-step token-then-stream protocol against a base URL published at a
// well-known text endpoint.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mediafetch/media"
)

// Defaults mirror the production deployment; every value is overridable via
// Config.
const (
	// DefaultURLEndpoint publishes the current base URL as plain text.
	DefaultURLEndpoint = "https://pastebin.com/raw/rLsBhAQa"
	// DefaultFallbackURL is used when the published URL cannot be fetched.
	DefaultFallbackURL = "https://shrutibots.site"

	defaultResolveTimeout = 10 * time.Second
	defaultTokenTimeout   = 60 * time.Second
	defaultAudioTimeout   = 300 * time.Second
	defaultVideoTimeout   = 600 * time.Second

	// streamChunkSize is the buffer size used when copying the stream to
	// disk.
	streamChunkSize = 16 * 1024
)

// Config holds fallback-service client settings.
type Config struct {
	// URLEndpoint is the text endpoint publishing the current base URL.
	URLEndpoint string
	// FallbackURL is used when URLEndpoint cannot be fetched.
	FallbackURL string
	// BaseURL pins the base URL, skipping resolution entirely.
	BaseURL string

	// ResolveTimeout bounds the one-shot base URL fetch.
	ResolveTimeout time.Duration
	// TokenTimeout bounds the download-token request.
	TokenTimeout time.Duration
	// AudioStreamTimeout and VideoStreamTimeout bound the stream request;
	// video gets longer in proportion to expected payload size.
	AudioStreamTimeout time.Duration
	VideoStreamTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		URLEndpoint:        DefaultURLEndpoint,
		FallbackURL:        DefaultFallbackURL,
		ResolveTimeout:     defaultResolveTimeout,
		TokenTimeout:       defaultTokenTimeout,
		AudioStreamTimeout: defaultAudioTimeout,
		VideoStreamTimeout: defaultVideoTimeout,
	}
}

// Client talks to the fallback download service. It is the last tier of the
// resolution chain.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *Breaker
	log     *logrus.Entry

	mu   sync.Mutex
	base string
}

// New creates a client. The base URL is not resolved until ResolveBaseURL is
// called (normally once at startup) or the first fetch needs it.
func New(cfg Config, logger *logrus.Logger) *Client {
	def := DefaultConfig()
	if cfg.URLEndpoint == "" {
		cfg.URLEndpoint = def.URLEndpoint
	}
	if cfg.FallbackURL == "" {
		cfg.FallbackURL = def.FallbackURL
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = def.ResolveTimeout
	}
	if cfg.TokenTimeout <= 0 {
		cfg.TokenTimeout = def.TokenTimeout
	}
	if cfg.AudioStreamTimeout <= 0 {
		cfg.AudioStreamTimeout = def.AudioStreamTimeout
	}
	if cfg.VideoStreamTimeout <= 0 {
		cfg.VideoStreamTimeout = def.VideoStreamTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{},
		breaker: NewBreaker(0, 0),
		log:     logger.WithField("tier", "fallback-api"),
		base:    cfg.BaseURL,
	}
}

// Name identifies the tier in logs.
func (c *Client) Name() string { return "fallback-api" }

// ResolveBaseURL fetches the published base URL once, best effort. On any
// failure the hard-coded fallback is installed instead, so the client is
// always usable afterward.
func (c *Client) ResolveBaseURL(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ResolveTimeout)
	defer cancel()

	resolved := c.cfg.FallbackURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URLEndpoint, nil)
	if err == nil {
		resp, err := c.http.Do(req)
		if err == nil {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
				if err == nil && len(strings.TrimSpace(string(body))) > 0 {
					resolved = strings.TrimSpace(string(body))
					c.log.Info("base url loaded")
				}
			}
		}
	}
	if resolved == c.cfg.FallbackURL {
		c.log.Info("using fallback base url")
	}

	c.mu.Lock()
	c.base = resolved
	c.mu.Unlock()
}

// baseURL returns the resolved base URL, re-attempting resolution only when
// none was ever obtained.
func (c *Client) baseURL(ctx context.Context) string {
	c.mu.Lock()
	base := c.base
	c.mu.Unlock()
	if base != "" {
		return base
	}
	c.ResolveBaseURL(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base
}

// tokenResponse is the body of the download-token endpoint.
type tokenResponse struct {
	DownloadToken string `json:"download_token"`
}

func (c *Client) streamTimeout(kind media.Kind) time.Duration {
	if kind == media.KindVideo {
		return c.cfg.VideoStreamTimeout
	}
	return c.cfg.AudioStreamTimeout
}

// Fetch requests a download token for ref and streams the media to dest.
// A non-200 on either step aborts the tier; no file is created at dest
// unless the stream opened successfully.
func (c *Client) Fetch(ctx context.Context, ref media.Ref, dest string) error {
	if err := c.breaker.Allow(); err != nil {
		return err
	}

	token, err := c.requestToken(ctx, ref)
	if err != nil {
		c.recordOutcome(err)
		return err
	}

	err = c.stream(ctx, ref, token, dest)
	c.recordOutcome(err)
	return err
}

// recordOutcome feeds the breaker. Misses (4xx, missing token) are completed
// responses, so they count as successes: the service answered, which is what
// a half-open probe needs to see for the circuit to close again.
func (c *Client) recordOutcome(err error) {
	if err == nil {
		c.breaker.RecordSuccess()
		return
	}
	var httpErr *HTTPError
	if errors.Is(err, ErrNoToken) || (errors.As(err, &httpErr) && httpErr.StatusCode < 500) {
		c.breaker.RecordSuccess()
		return
	}
	c.breaker.RecordFailure()
}

func (c *Client) requestToken(ctx context.Context, ref media.Ref) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TokenTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/download?url=%s&type=%s",
		c.baseURL(ctx), url.QueryEscape(ref.ID), ref.Kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, Step: "download"}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.DownloadToken == "" {
		return "", ErrNoToken
	}
	return tr.DownloadToken, nil
}

func (c *Client) stream(ctx context.Context, ref media.Ref, token, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, c.streamTimeout(ref.Kind))
	defer cancel()

	endpoint := fmt.Sprintf("%s/stream/%s?type=%s",
		c.baseURL(ctx), url.PathEscape(ref.ID), ref.Kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("X-Download-Token", token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{StatusCode: resp.StatusCode, Step: "stream"}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer f.Close()

	// The destination is wrapped so io.CopyBuffer cannot bypass the buffer
	// via *os.File's ReaderFrom.
	buf := make([]byte, streamChunkSize)
	if _, err := io.CopyBuffer(struct{ io.Writer }{f}, resp.Body, buf); err != nil {
		return fmt.Errorf("stream %s: %w", ref.ID, err)
	}

	info, err := os.Stat(dest)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("stream %s: empty file", ref.ID)
	}
	c.log.WithFields(logrus.Fields{"video_id": ref.ID, "kind": ref.Kind, "bytes": info.Size()}).Info("downloaded via fallback api")
	return nil
}
