package utils

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ResumerHTTPClient struct {
	client *http.Client
	config HTTPClientConfig
	tokens oauth2.TokenSource
}

// NewResumerHTTPClient builds the shared client. cfg.Timeout bounds a whole
// attempt, body included, so a stalled transfer surfaces as a retryable error.
func NewResumerHTTPClient(cfg HTTPClientConfig) *ResumerHTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = DefaultKATimeout
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		IdleConnTimeout:     cfg.KATimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		DisableCompression:  true, // byte offsets must match what lands on disk
		MaxConnsPerHost:     0,
	}
	if cfg.HighThreadMode {
		transport.DialContext = (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
			Control: func(network, address string, c syscall.RawConn) error {
				return c.Control(func(fd uintptr) {
					setSocketOptions(fd)
				})
			},
		}).DialContext
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err == nil {
			if cfg.ProxyUsername != "" {
				if cfg.ProxyPassword != "" {
					proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
				} else {
					proxyURL.User = url.User(cfg.ProxyUsername)
				}
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		// Range belongs to the resume logic
		if http.CanonicalHeaderKey(k) == "Range" {
			log.Warn().Str("op", "utils/http-client").Msgf("Ignoring custom header %s: %s", k, v)
			continue
		}
		headers[k] = v
	}
	cfg.Headers = headers
	c := &ResumerHTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config: cfg,
	}
	if cfg.BearerToken != "" {
		c.tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.BearerToken, TokenType: "Bearer"})
	}
	return c
}

func (c *ResumerHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	} else {
		req.Header.Set("User-Agent", ToolUserAgent)
	}
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	// must stay a request header: net/http strips it on cross-host redirects
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("error getting bearer token: %w", err)
		}
		token.SetAuthHeader(req)
	}
	return c.client.Do(req)
}
