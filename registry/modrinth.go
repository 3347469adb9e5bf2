package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.modrinth.com"
	UserAgent      = "CHUJ-Pack-Resolver"
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 3
)

// Client is a read-only Modrinth API client.
type Client struct {
	baseURL    string
	http       *http.Client
	retries    uint64
	newBackOff func() backoff.BackOff
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after DefaultTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n uint64) Option {
	return func(c *Client) {
		c.retries = n
	}
}

// WithBackOff sets the policy used to space retries.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(c *Client) {
		c.newBackOff = f
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		retries: DefaultRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProjectVersions lists every version of a project.
func (c *Client) ProjectVersions(ctx context.Context, project string) ([]Version, error) {
	var versions []Version
	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.retries), ctx)

	err := backoff.RetryNotify(func() error {
		v, err := c.fetchVersions(ctx, project)
		if err != nil {
			var re *RegistryError
			if errors.As(err, &re) && re.Transient {
				return err
			}
			return backoff.Permanent(err)
		}
		versions = v
		return nil
	}, b, func(err error, wait time.Duration) {
		log.WithError(err).Warnf("Lookup of %s failed, retrying in %s", project, wait)
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (c *Client) fetchVersions(ctx context.Context, project string) ([]Version, error) {
	endpoint := fmt.Sprintf("%s/v2/project/%s/version", c.baseURL, url.PathEscape(project))
	log.Debugf("GET %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &RegistryError{Project: project, Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &RegistryError{Project: project, Err: err, Transient: ctx.Err() == nil}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Project: project}
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		return nil, &RegistryError{Project: project, StatusCode: res.StatusCode, Transient: true, Err: errors.New(http.StatusText(res.StatusCode))}
	case res.StatusCode != http.StatusOK:
		return nil, &RegistryError{Project: project, StatusCode: res.StatusCode, Err: errors.New(http.StatusText(res.StatusCode))}
	}

	var versions []Version
	if err := json.NewDecoder(res.Body).Decode(&versions); err != nil {
		return nil, &RegistryError{Project: project, Err: fmt.Errorf("unexpected versions response: %w", err)}
	}
	return versions, nil
}
