package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

const (
	defaultMinBody     = 100
	defaultBackoffBase = 500 * time.Millisecond
	defaultTimeout     = 10 * time.Second
	maxBodyBytes       = 5 << 20
)

// HTTPDoer abstracts HTTP requests to simplify testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options tunes a single Fetch call.
type Options struct {
	Retries int
	Timeout time.Duration
}

// Result is a successfully retrieved page.
type Result struct {
	HTML       string
	FinalURL   string
	StatusCode int
	Class      Class
}

// Client retrieves HTML with retry, backoff and user agent rotation.
type Client struct {
	http        HTTPDoer
	log         logrus.FieldLogger
	minBody     int
	backoffBase time.Duration
}

// Option configures optional dependencies.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithBackoff overrides the base delay between retries.
func WithBackoff(base time.Duration) Option {
	return func(c *Client) {
		if base >= 0 {
			c.backoffBase = base
		}
	}
}

// WithMinBody overrides the minimum accepted body length.
func WithMinBody(n int) Option {
	return func(c *Client) {
		c.minBody = n
	}
}

// NewClient builds a fetch client with sensible defaults.
func NewClient(log logrus.FieldLogger, opts ...Option) *Client {
	c := &Client{
		http:        NewHTTPClient(),
		log:         log,
		minBody:     defaultMinBody,
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logrus.New()
	}
	return c
}

// Fetch retrieves rawURL. Certificate errors abort at once, 403/404 get exactly one
// attempt against the www-toggled host, and server or network failures are retried
// with exponential backoff until opts.Retries attempts are spent.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	attempts := opts.Retries
	if attempts <= 0 {
		attempts = 1
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.backoff(attempt)); err != nil {
				return nil, &Error{Class: ClassNetworkError, URL: rawURL, Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
			}
		}

		res, err := c.get(ctx, rawURL, UserAgent(attempt), timeout)
		if err == nil {
			return res, nil
		}
		lastErr = err

		var ferr *Error
		if !errors.As(err, &ferr) {
			return nil, err
		}

		c.log.WithFields(logrus.Fields{
			"url":     rawURL,
			"attempt": attempt + 1,
			"class":   ferr.Class.String(),
			"status":  ferr.StatusCode,
		}).Debug("fetch attempt failed")

		switch {
		case errors.Is(err, ErrCertificate):
			return nil, err
		case ferr.StatusCode == http.StatusForbidden || ferr.StatusCode == http.StatusNotFound:
			alt := ToggleWWW(rawURL)
			if alt == "" || alt == rawURL {
				return nil, err
			}
			return c.get(ctx, alt, UserAgent(attempt+1), timeout)
		case ferr.Class == ClassClientError && !errors.Is(err, ErrBodyTooShort):
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, rawURL, userAgent string, timeout time.Duration) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Class: ClassClientError, URL: rawURL, Err: fmt.Errorf("%w: %v", ErrClientStatus, err)}
	}
	setBrowserHeaders(req, userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(rawURL, err)
	}
	defer resp.Body.Close()

	if class := classifyStatus(resp.StatusCode); class != ClassSuccess {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		sentinel := ErrClientStatus
		if class == ClassServerError {
			sentinel = ErrServerStatus
		}
		return nil, &Error{Class: class, URL: rawURL, StatusCode: resp.StatusCode, Err: sentinel}
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, transportError(rawURL, err)
	}
	if len(strings.TrimSpace(body)) < c.minBody {
		return nil, &Error{Class: ClassClientError, URL: rawURL, StatusCode: resp.StatusCode, Err: ErrBodyTooShort}
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &Result{HTML: body, FinalURL: final, StatusCode: resp.StatusCode, Class: ClassSuccess}, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	return c.backoffBase << (attempt - 1)
}

func readBody(resp *http.Response) (string, error) {
	limited := io.LimitReader(resp.Body, maxBodyBytes)
	reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = limited
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func transportError(rawURL string, err error) error {
	if isCertificateError(err) {
		return &Error{Class: ClassNetworkError, URL: rawURL, Err: fmt.Errorf("%w: %v", ErrCertificate, err)}
	}
	return &Error{Class: ClassNetworkError, URL: rawURL, Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
}

func classifyStatus(code int) Class {
	switch {
	case code >= 200 && code < 400:
		return ClassSuccess
	case code == http.StatusTooManyRequests || code >= 500:
		return ClassServerError
	default:
		return ClassClientError
	}
}

func setBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

// ToggleWWW adds or removes the "www." host prefix. It returns "" for unparsable input.
func ToggleWWW(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := u.Hostname()
	port := u.Port()
	if strings.HasPrefix(strings.ToLower(host), "www.") {
		host = host[4:]
	} else {
		host = "www." + host
	}
	if port != "" {
		host = host + ":" + port
	}
	u.Host = host
	return u.String()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
