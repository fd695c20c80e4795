package qobuz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"qbz/internal/model"
)

const (
	defaultBaseURL = "https://www.qobuz.com/api.json/0.2/"

	// The API rejects unfamiliar user agents.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:83.0) Gecko/20100101 Firefox/83.0"

	// A known public-domain track, used to probe candidate secrets
	// with a cheap signed call.
	probeTrackID  int64 = 5966783
	probeFormatID       = 5
)

// Client is an authenticated session against the Qobuz API. Construct
// one per process run with NewClient and tear it down implicitly at
// process end; there is no ambient global.
type Client struct {
	appID   string
	secrets []string
	base    string
	httpc   *http.Client
	log     *log.Logger
	now     func() time.Time

	mu     sync.Mutex
	secret string // validated app secret, set at most once
	token  string // user auth token, set by login

	probe singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = base }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// NewClient creates an API client for the given app id and ordered list
// of candidate secrets. Secrets are opaque strings; their order is an
// efficiency hint only (the first valid one wins), supplied as-is by
// the credential provider.
func NewClient(appID string, secrets []string, logger *log.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Client{
		appID:   appID,
		secrets: secrets,
		base:    defaultBaseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
		log:     logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) authToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// call performs a GET against one API endpoint and maps the
// security-relevant status codes onto the error taxonomy.
func (c *Client) call(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}
	if tok := c.authToken(); tok != "" {
		params.Set("user_auth_token", tok)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-App-Id", c.appID)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qobuz: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case endpoint == "user/login" && resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: invalid email or password", ErrAuthentication)
	case endpoint == "user/login" && resp.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidAppID
	case endpoint == "user/get" && resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: token is invalid or has expired", ErrAuthentication)
	case endpoint == "track/getFileUrl" && resp.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidAppSecret
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Endpoint: endpoint, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("qobuz: %s: reading response: %w", endpoint, err)
	}
	return json.RawMessage(body), nil
}

func (c *Client) callInto(ctx context.Context, endpoint string, params url.Values, out any) error {
	raw, err := c.call(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("qobuz: %s: decoding response: %w", endpoint, err)
	}
	return nil
}

// LoginWithToken authenticates with a pre-existing user token and
// verifies it with a lightweight profile call.
func (c *Client) LoginWithToken(ctx context.Context, token string) error {
	c.log.Info("logging in with authentication token")
	c.setToken(token)

	var user User
	if err := c.callInto(ctx, "user/get", nil, &user); err != nil {
		return err
	}
	if !user.Eligible() {
		return ErrIneligible
	}
	c.log.Info("authenticated", "email", user.Email)
	return nil
}

// Login authenticates with an email and an already-MD5-hashed password
// and stores the user token returned by the server.
func (c *Client) Login(ctx context.Context, email, passwordMD5 string) error {
	c.log.Info("logging in with email/password")

	params := url.Values{}
	params.Set("email", email)
	params.Set("password", passwordMD5)
	params.Set("app_id", c.appID)

	var resp struct {
		UserAuthToken string `json:"user_auth_token"`
		User          User   `json:"user"`
	}
	if err := c.callInto(ctx, "user/login", params, &resp); err != nil {
		return err
	}
	if !resp.User.Eligible() {
		return ErrIneligible
	}
	c.setToken(resp.UserAuthToken)
	if label := resp.User.ShortLabel(); label != "" {
		c.log.Info("logged in", "membership", label)
	}
	return nil
}

// Album fetches album metadata, including the embedded track page.
func (c *Client) Album(ctx context.Context, id string) (*Album, error) {
	params := url.Values{}
	params.Set("album_id", id)
	var album Album
	if err := c.callInto(ctx, "album/get", params, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// Track fetches track metadata, including the embedded parent album.
func (c *Client) Track(ctx context.Context, id int64) (*Track, error) {
	params := url.Values{}
	params.Set("track_id", strconv.FormatInt(id, 10))
	var track Track
	if err := c.callInto(ctx, "track/get", params, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// SearchTracks runs a free-text track search and returns the matching
// page of tracks.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]*Track, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	var resp struct {
		Tracks TrackPage `json:"tracks"`
	}
	if err := c.callInto(ctx, "track/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Tracks.Items, nil
}

// FileURL resolves the stream descriptor for one track at the given
// quality tier. The quality id is validated before any network call;
// the request is signed with the session's validated app secret.
func (c *Client) FileURL(ctx context.Context, trackID int64, q model.Quality) (*FileURL, error) {
	if !q.Valid() {
		return nil, ErrInvalidQuality
	}
	secret, err := c.ValidSecret(ctx)
	if err != nil {
		return nil, err
	}
	return c.fileURL(ctx, trackID, int(q), secret)
}

func (c *Client) fileURL(ctx context.Context, trackID int64, formatID int, secret string) (*FileURL, error) {
	ts := c.now().Unix()

	params := url.Values{}
	params.Set("request_ts", strconv.FormatInt(ts, 10))
	params.Set("request_sig", signFileURL(formatID, trackID, ts, secret))
	params.Set("track_id", strconv.FormatInt(trackID, 10))
	params.Set("format_id", strconv.Itoa(formatID))
	params.Set("intent", "stream")

	var fu FileURL
	if err := c.callInto(ctx, "track/getFileUrl", params, &fu); err != nil {
		return nil, err
	}
	return &fu, nil
}

// ValidSecret returns the app secret the server accepts. On first use
// it tries each configured candidate, in order, with one cheap signed
// probe call; the first accepted candidate is cached for the session.
// Concurrent callers share a single probe pass. If no candidate
// validates the session fails with ErrInvalidAppSecret.
func (c *Client) ValidSecret(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.secret != "" {
		s := c.secret
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	v, err, _ := c.probe.Do("secret", func() (any, error) {
		c.mu.Lock()
		if c.secret != "" {
			s := c.secret
			c.mu.Unlock()
			return s, nil
		}
		c.mu.Unlock()

		for _, candidate := range c.secrets {
			if candidate == "" {
				continue
			}
			if c.testSecret(ctx, candidate) {
				c.mu.Lock()
				c.secret = candidate
				c.mu.Unlock()
				c.log.Debug("validated app secret", "prefix", candidate[:min(4, len(candidate))])
				return candidate, nil
			}
		}
		return "", fmt.Errorf("%w: none of the configured app secrets were accepted", ErrInvalidAppSecret)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// testSecret probes one candidate secret with a signed call against the
// known-good track. Any failure counts as invalid.
func (c *Client) testSecret(ctx context.Context, secret string) bool {
	_, err := c.fileURL(ctx, probeTrackID, probeFormatID, secret)
	return err == nil
}

// ContentLength returns the size of a remote file via a HEAD request.
// Used as a fallback when the API omits stream sizes.
func (c *Client) ContentLength(ctx context.Context, rawurl string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawurl, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.ContentLength < 0 {
		return 0, fmt.Errorf("no content length for %s", rawurl)
	}
	return resp.ContentLength, nil
}

// Download streams a URL to the given path. onChunk, if non-nil, is
// called with the size of each chunk written. The caller owns cleanup
// of a partially written file on error.
func (c *Client) Download(ctx context.Context, rawurl, dest string, onChunk func(int64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()

	var w io.Writer = file
	if onChunk != nil {
		w = &chunkWriter{w: file, onChunk: onChunk}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return err
	}
	return file.Sync()
}

// chunkWriter reports the size of every write to a callback. Used to
// advance byte-based progress while streaming.
type chunkWriter struct {
	w       io.Writer
	onChunk func(int64)
}

func (cw *chunkWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	if n > 0 {
		cw.onChunk(int64(n))
	}
	return n, err
}
