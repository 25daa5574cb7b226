// Package riot wraps every Riot API call behind a shared rate-limit slot,
// classifies upstream failures, and caches immutable responses.
package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riftscope/riftscope/internal/domain/model"
	"github.com/riftscope/riftscope/pkg/logger"
	"github.com/riftscope/riftscope/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultBaseURL     = "https://%s.api.riotgames.com"
	defaultVersionsURL = "https://ddragon.leagueoflegends.com/api/versions.json"
	defaultMaxAttempts = 3
	defaultBackoffBase = 500 * time.Millisecond
	defaultHTTPTimeout = 15 * time.Second
	rankedSoloQueueID  = 420
)

// Client is the gateway to the Riot API. Construct one per process and pass
// it to callers; it owns its rate limiter, cache, and transports.
type Client struct {
	apiKey      string
	baseURL     string // template with one %s for the routing host
	versionsURL string

	httpClient *http.Client
	// plainClient disables response compression. Used for exactly one
	// fallback retry when the declared and actual payload encoding disagree.
	plainClient *http.Client

	lim         *limiter
	cache       Cache
	maxAttempts int
	backoffBase time.Duration
	log         logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithAPIKey sets the Riot API key sent as X-Riot-Token.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithMaxConcurrent bounds concurrent outbound requests.
func WithMaxConcurrent(n int) Option {
	return func(c *Client) { c.lim = newLimiter(n, 0) }
}

// WithLimits bounds concurrent outbound requests and smooths the request rate.
func WithLimits(maxConcurrent int, requestsPerSec float64) Option {
	return func(c *Client) { c.lim = newLimiter(maxConcurrent, requestsPerSec) }
}

// WithCache sets the immutable-response cache.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithBaseURL overrides the API host template. The template must contain one
// %s for the routing value; tests point this at a local server.
func WithBaseURL(template string) Option {
	return func(c *Client) {
		if template != "" {
			c.baseURL = template
		}
	}
}

// WithVersionsURL overrides the static-version endpoint.
func WithVersionsURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.versionsURL = u
		}
	}
}

// WithRetryPolicy sets the attempt count and backoff base for transient
// failures. Attempts below 1 clamp to 1.
func WithRetryPolicy(attempts int, backoffBase time.Duration) Option {
	return func(c *Client) {
		if attempts < 1 {
			attempts = 1
		}
		c.maxAttempts = attempts
		if backoffBase > 0 {
			c.backoffBase = backoffBase
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New constructs a Client with default configuration.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		versionsURL: defaultVersionsURL,
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		plainClient: &http.Client{
			Timeout:   defaultHTTPTimeout,
			Transport: &http.Transport{DisableCompression: true},
		},
		lim:         newLimiter(5, 0),
		cache:       NewMemoryCache(defaultCacheSize),
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("riot")
	}
	return c
}

// Stats returns an atomic snapshot of the outbound limiter.
func (c *Client) Stats() Stats {
	return c.lim.stats()
}

// AccountByRiotID resolves a game name and tag line to an account.
func (c *Client) AccountByRiotID(ctx context.Context, routing, gameName, tagLine string) (*model.Account, error) {
	path := fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(gameName), url.PathEscape(tagLine))
	var out model.Account
	if err := c.getJSON(ctx, "account_by_riot_id", routing, path, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

// SummonerByPUUID fetches the platform profile for a PUUID.
func (c *Client) SummonerByPUUID(ctx context.Context, platformRegion, puuid string) (*model.Summoner, error) {
	path := "/lol/summoner/v4/summoners/by-puuid/" + url.PathEscape(puuid)
	var out model.Summoner
	if err := c.getJSON(ctx, "summoner_by_puuid", platformRegion, path, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

// MatchHistoryIDs lists the most recent ranked match ids for a PUUID.
func (c *Client) MatchHistoryIDs(ctx context.Context, routing, puuid string, count int) ([]string, error) {
	path := fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids?queue=%d&count=%d",
		url.PathEscape(puuid), rankedSoloQueueID, count)
	var out []string
	if err := c.getJSON(ctx, "match_history_ids", routing, path, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// MatchDetails fetches one completed match. Completed matches are immutable,
// so the response is cached.
func (c *Client) MatchDetails(ctx context.Context, routing, matchID string) (*model.Match, error) {
	path := "/lol/match/v5/matches/" + url.PathEscape(matchID)
	var out model.Match
	if err := c.getJSON(ctx, "match_details", routing, path, &out, "match:"+matchID); err != nil {
		return nil, err
	}
	return &out, nil
}

// MatchTimeline fetches a match timeline. Absence is an expected, common
// outcome and maps to (nil, nil). The response is cached when present.
func (c *Client) MatchTimeline(ctx context.Context, routing, matchID string) (*model.Timeline, error) {
	path := "/lol/match/v5/matches/" + url.PathEscape(matchID) + "/timeline"
	var out model.Timeline
	err := c.getJSON(ctx, "match_timeline", routing, path, &out, "timeline:"+matchID)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// LeagueEntries fetches ranked standings for a PUUID. Absence maps to an
// empty slice. Rank data changes between calls and is never cached.
func (c *Client) LeagueEntries(ctx context.Context, platformRegion, puuid string) ([]model.LeagueEntry, error) {
	path := "/lol/league/v4/entries/by-puuid/" + url.PathEscape(puuid)
	var out []model.LeagueEntry
	err := c.getJSON(ctx, "league_entries", platformRegion, path, &out, "")
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// LatestStaticVersion returns the newest static-data (Data Dragon) version.
// The version list only ever grows, so the head is cached.
func (c *Client) LatestStaticVersion(ctx context.Context) (string, error) {
	const endpoint = "static_version"
	const cacheKey = "ddragon:latest"

	if raw, ok := c.cache.Get(ctx, cacheKey); ok {
		metrics.RecordCacheHit()
		return string(raw), nil
	}
	metrics.RecordCacheMiss()

	release, err := c.lim.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	var versions []string
	if err := c.fetch(ctx, endpoint, c.versionsURL, &versions); err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", &APIError{Kind: KindMalformed, Endpoint: endpoint, Err: errors.New("empty version list")}
	}
	c.cache.Set(ctx, cacheKey, []byte(versions[0]))
	return versions[0], nil
}

// getJSON runs one logical API operation: cache probe, slot acquisition,
// retries, classification, and decode into out. cacheKey may be empty for
// responses that must not be cached.
func (c *Client) getJSON(ctx context.Context, endpoint, host, path string, out any, cacheKey string) error {
	if cacheKey != "" {
		if raw, ok := c.cache.Get(ctx, cacheKey); ok {
			metrics.RecordCacheHit()
			return json.Unmarshal(raw, out)
		}
		metrics.RecordCacheMiss()
	}

	if c.apiKey == "" {
		return &APIError{Kind: KindClient, Endpoint: endpoint, Err: ErrNoAPIKey}
	}

	release, err := c.lim.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	u := fmt.Sprintf(c.baseURL, host) + path

	start := time.Now()
	raw, err := c.doWithRetry(ctx, endpoint, u)
	metrics.RecordRiotRequestLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		var apiErr *APIError
		outcome := "error"
		if errors.As(err, &apiErr) {
			outcome = string(apiErr.Kind)
		}
		metrics.RecordRiotRequest(endpoint, outcome)
		return err
	}
	metrics.RecordRiotRequest(endpoint, "ok")

	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Kind: KindMalformed, Endpoint: endpoint, Err: err}
	}
	if cacheKey != "" {
		c.cache.Set(ctx, cacheKey, raw)
	}
	return nil
}

// doWithRetry issues the request with bounded backoff for transient failures
// and at most one compression-disabled fallback for encoding mismatches.
func (c *Client) doWithRetry(ctx context.Context, endpoint, u string) ([]byte, error) {
	var lastErr error
	var delayOverride time.Duration
	fallbackUsed := false

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			metrics.RecordRiotRetry()
			delay := c.backoffBase << (attempt - 1)
			if delayOverride > 0 {
				delay = delayOverride
				delayOverride = 0
			}
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		client := c.httpClient
		if fallbackUsed {
			client = c.plainClient
		}

		raw, retryable, err := c.doOnce(ctx, client, endpoint, u)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			delayOverride = apiErr.RetryAfter
		}
		if errors.As(err, &apiErr) && apiErr.Kind == KindMalformed && !fallbackUsed {
			// Declared and actual encoding disagree: retry exactly once
			// through the transport that skips content negotiation.
			fallbackUsed = true
			metrics.RecordRiotCompressionFallback()
			c.log.Warn(ctx, "decode failed; retrying without compression",
				logger.String("endpoint", endpoint))
			attempt-- // the fallback does not consume a backoff attempt
			continue
		}
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

// doOnce performs a single HTTP exchange and classifies the outcome.
// The bool reports whether the failure is retryable.
func (c *Client) doOnce(ctx context.Context, client *http.Client, endpoint, u string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, &APIError{Kind: KindClient, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("X-Riot-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("riot %s: %w", endpoint, ctx.Err())
		}
		return nil, true, &APIError{Kind: KindTransient, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, &APIError{Kind: KindNotFound, Endpoint: endpoint, Status: resp.StatusCode, Err: ErrNotFound}
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr := &APIError{Kind: KindRateLimited, Endpoint: endpoint, Status: resp.StatusCode,
			Err: errors.New("rate limited")}
		if after, ok := retryAfterSeconds(resp.Header.Get("Retry-After")); ok {
			apiErr.RetryAfter = after
		}
		return nil, true, apiErr
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, &APIError{Kind: KindTransient, Endpoint: endpoint, Status: resp.StatusCode,
			Err: fmt.Errorf("upstream status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, false, &APIError{Kind: KindClient, Endpoint: endpoint, Status: resp.StatusCode,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if readErr != nil {
		if isEncodingError(readErr) {
			return nil, false, &APIError{Kind: KindMalformed, Endpoint: endpoint, Err: readErr}
		}
		return nil, true, &APIError{Kind: KindTransient, Endpoint: endpoint, Err: readErr}
	}
	return body, false, nil
}

// fetch is a bare GET+decode without auth, for the public static endpoint.
func (c *Client) fetch(ctx context.Context, endpoint, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &APIError{Kind: KindClient, Endpoint: endpoint, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransient, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{Kind: KindTransient, Endpoint: endpoint, Status: resp.StatusCode,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindMalformed, Endpoint: endpoint, Err: err}
	}
	metrics.RecordRiotRequest(endpoint, "ok")
	return nil
}

// isEncodingError reports whether a body read failed because the payload did
// not match its declared content encoding.
func isEncodingError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "gzip") || strings.Contains(msg, "flate")
}

// sleep waits for d or until ctx ends.
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retry-After parsing helper kept for the rate-limited path.
func retryAfterSeconds(h string) (time.Duration, bool) {
	if h == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(h)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
