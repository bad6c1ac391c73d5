// Package shopify is a small client for the Shopify Admin GraphQL API.
package shopify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"
)

// Config holds the Admin API connection settings.
type Config struct {
	StoreDomain string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
	// Endpoint overrides the URL derived from StoreDomain and APIVersion.
	Endpoint string
}

// GraphQLError is a single entry of the response "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
}

// QueryError is returned when the API answers with GraphQL errors.
type QueryError struct {
	Errors []GraphQLError
}

func (e *QueryError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return "graphql errors: " + strings.Join(msgs, "; ")
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsTimeout reports whether err was caused by the request deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// graphqlErrPrefix is how the graphql package renders the first error of a
// response.
const graphqlErrPrefix = "graphql: "

const maxErrorBody = 512

// statusTransport turns non-2xx responses into a StatusError before the
// graphql package tries to decode them.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}

// Client sends GraphQL queries to a single store.
type Client struct {
	gql        *graphql.Client
	httpClient *http.Client
	endpoint   string
	token      string
	logger     zerolog.Logger
}

// NewClient creates a client for the store described by cfg.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", cfg.StoreDomain, cfg.APIVersion)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: statusTransport{next: http.DefaultTransport},
	}

	return &Client{
		gql:        graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient)),
		httpClient: httpClient,
		endpoint:   endpoint,
		token:      cfg.AccessToken,
		logger:     logger.With().Str("component", "shopify-client").Logger(),
	}
}

// Do executes query and decodes the "data" member into out.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	req := graphql.NewRequest(query)
	for k, v := range variables {
		req.Var(k, v)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)

	start := time.Now()
	err := c.gql.Run(ctx, req, out)

	c.logger.Debug().
		Dur("duration", time.Since(start)).
		Bool("ok", err == nil).
		Msg("graphql request completed")

	if err == nil {
		return nil
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		c.logger.Error().Int("status", statusErr.StatusCode).Msg("shopify returned non-success status")
		return statusErr
	}

	if msg, ok := strings.CutPrefix(err.Error(), graphqlErrPrefix); ok {
		qerr := &QueryError{Errors: []GraphQLError{{Message: msg}}}
		c.logger.Error().Err(qerr).Msg("shopify returned graphql errors")
		return qerr
	}

	c.logger.Error().Err(err).Msg("graphql request failed")
	return fmt.Errorf("failed to call shopify: %w", err)
}
