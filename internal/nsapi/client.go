// Package nsapi talks to the NationStates XML API on behalf of one nation. It
// serves as the issue resolver's acting collaborator and as a census history source.
package nsapi

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
	"github.com/danielpatrickdp/census-maximizer/internal/history"
	"github.com/danielpatrickdp/census-maximizer/internal/resolver"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://www.nationstates.net/cgi-bin/api.cgi"

// APIVersion is the API version requested on every call.
const APIVersion = "12"

var (
	// ErrStatus is returned for any non-200 reply.
	ErrStatus = errors.New("unexpected status")
	// ErrCommand is returned when the API rejects an issue command.
	ErrCommand = errors.New("command rejected")
	// ErrNoContact is returned when no operator contact is given for the user agent.
	ErrNoContact = errors.New("a contact is required for the user agent")
)

var (
	_ resolver.Nation = (*Client)(nil)
	_ history.Source  = (*Client)(nil)
)

// #region client
// Client is a session with the API for one nation. The pin the API hands out
// after a password login is reused for later private calls.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	nation    string
	password  string
	userAgent string
	limiter   *RateLimiter
	retry     RetryPolicy

	mu  sync.Mutex
	pin string
}

// NewClient creates a client for nation. password may be empty for a
// read-only session. contact identifies the operator to the API admins.
func NewClient(nation, password, contact string) (*Client, error) {
	if strings.TrimSpace(contact) == "" {
		return nil, ErrNoContact
	}
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		nation:    Canonical(nation),
		password:  password,
		userAgent: fmt.Sprintf("census-maximizer [contact: %s]", contact),
		limiter:   NewRateLimiter(50, 30*time.Second),
		retry:     DefaultRetryPolicy(),
	}, nil
}

// WithLimiter replaces the request budget.
func (c *Client) WithLimiter(rl *RateLimiter) *Client {
	c.limiter = rl
	return c
}

// WithRetry replaces the retry policy.
func (c *Client) WithRetry(r RetryPolicy) *Client {
	c.retry = r
	return c
}

// Canonical lowercases a nation name and replaces spaces with underscores.
func Canonical(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Name implements resolver.Nation.
func (c *Client) Name() string { return c.nation }

// WriteCapable implements resolver.Nation.
func (c *Client) WriteCapable() bool { return c.password != "" }

// #endregion client

// #region shards
// PendingIssues implements resolver.Nation.
func (c *Client) PendingIssues(ctx context.Context) ([]resolver.Issue, error) {
	var resp nationResponse
	if err := c.get(ctx, "q=issues", true, &resp); err != nil {
		return nil, fmt.Errorf("fetch issues: %w", err)
	}
	issues := make([]resolver.Issue, 0, len(resp.Issues))
	for _, is := range resp.Issues {
		opts := make([]int, len(is.Options))
		for i, o := range is.Options {
			opts[i] = o.ID
		}
		issues = append(issues, resolver.Issue{ID: is.ID, Title: strings.TrimSpace(is.Title), Options: opts})
	}
	return issues, nil
}

// Policies implements resolver.Nation.
func (c *Client) Policies(ctx context.Context) ([]string, error) {
	var resp nationResponse
	if err := c.get(ctx, "q=policies", true, &resp); err != nil {
		return nil, fmt.Errorf("fetch policies: %w", err)
	}
	names := make([]string, len(resp.Policies))
	for i, p := range resp.Policies {
		names[i] = strings.TrimSpace(p.Name)
	}
	return names, nil
}

// CensusHistory implements history.Source.
func (c *Client) CensusHistory(ctx context.Context, scales []census.Dimension) (map[census.Dimension][]history.Sample, error) {
	ids := make([]string, len(scales))
	for i, d := range scales {
		ids[i] = strconv.Itoa(int(d))
	}
	query := "q=census;mode=history;scale=" + strings.Join(ids, "+")

	var resp nationResponse
	if err := c.get(ctx, query, true, &resp); err != nil {
		return nil, fmt.Errorf("fetch census history: %w", err)
	}
	out := make(map[census.Dimension][]history.Sample, len(resp.Census))
	for _, sc := range resp.Census {
		pts := make([]history.Sample, len(sc.Points))
		for i, p := range sc.Points {
			pts[i] = history.Sample{Timestamp: p.Timestamp, Value: p.Score}
		}
		out[census.Dimension(sc.ID)] = pts
	}
	return out, nil
}

// #endregion shards

// #region commands
// Dismiss implements resolver.Nation.
func (c *Client) Dismiss(ctx context.Context, issueID int) error {
	_, err := c.issueCommand(ctx, issueID, -1)
	return err
}

// Commit implements resolver.Nation.
func (c *Client) Commit(ctx context.Context, issueID, optionID int) (resolver.CommitResult, error) {
	done, err := c.issueCommand(ctx, issueID, optionID)
	if err != nil {
		return resolver.CommitResult{}, err
	}
	res := resolver.CommitResult{
		Rankings: make(map[census.Dimension]float64, len(done.Rankings)),
	}
	for _, r := range done.Rankings {
		res.Rankings[census.Dimension(r.ID)] = r.Change
	}
	for _, p := range done.NewPolicies {
		res.NewPolicies = append(res.NewPolicies, strings.TrimSpace(p.Name))
	}
	for _, p := range done.RemovedPolicies {
		res.RemovedPolicies = append(res.RemovedPolicies, strings.TrimSpace(p.Name))
	}
	return res, nil
}

func (c *Client) issueCommand(ctx context.Context, issueID, optionID int) (*xmlIssueDone, error) {
	if !c.WriteCapable() {
		return nil, resolver.ErrNotWriteCapable
	}
	query := fmt.Sprintf("c=issue&issue=%d&option=%d", issueID, optionID)

	var resp nationResponse
	if err := c.get(ctx, query, false, &resp); err != nil {
		return nil, fmt.Errorf("issue %d option %d: %w", issueID, optionID, err)
	}
	if resp.Issue == nil {
		return nil, fmt.Errorf("issue %d option %d: empty reply: %w", issueID, optionID, ErrCommand)
	}
	if resp.Issue.Error != "" {
		return nil, fmt.Errorf("issue %d option %d: %s: %w", issueID, optionID, strings.TrimSpace(resp.Issue.Error), ErrCommand)
	}
	return resp.Issue, nil
}

// #endregion commands

// #region transport
// get issues one request, resending it per the retry policy, and decodes the
// XML reply into target. Only idempotent requests are resent on server errors.
func (c *Client) get(ctx context.Context, query string, idempotent bool, target any) error {
	var attempts []Attempt
	for {
		body, status, retryAfter, err := c.do(ctx, query)
		if err != nil {
			return err
		}
		if status == http.StatusOK {
			if err := xml.Unmarshal(body, target); err != nil {
				return fmt.Errorf("decode %s: %w", query, err)
			}
			return nil
		}

		attempts = append(attempts, Attempt{Status: status, RetryAfter: retryAfter})
		retry, wait := c.retry.ShouldRetry(idempotent, attempts)
		if !retry {
			log.Printf("[NSAPI] %s returned %d", query, status)
			return fmt.Errorf("GET %s returned %d: %s: %w", query, status, strings.TrimSpace(string(body)), ErrStatus)
		}
		log.Printf("[NSAPI] %s returned %d, retrying in %s", query, status, wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// do sends one rate-limited request.
func (c *Client) do(ctx context.Context, query string) ([]byte, int, time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, 0, err
	}

	u := c.BaseURL + "?nation=" + url.QueryEscape(c.nation) + "&" + query + "&v=" + APIVersion
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.password != "" {
		req.Header.Set("X-Password", c.password)
	}
	c.mu.Lock()
	if c.pin != "" {
		req.Header.Set("X-Pin", c.pin)
	}
	c.mu.Unlock()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("GET %s: %w", query, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read response: %w", err)
	}

	if pin := resp.Header.Get("X-Pin"); pin != "" && resp.StatusCode == http.StatusOK {
		c.mu.Lock()
		c.pin = pin
		c.mu.Unlock()
	}
	return body, resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}

// #endregion transport
