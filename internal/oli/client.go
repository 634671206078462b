package oli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hydrolytics/olisurvey/internal/credentials"
	"github.com/hydrolytics/olisurvey/internal/logging"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultMaxBodySize  = 8 << 20

	tokenPath  = "/auth/realms/api/protocol/openid-connect/token"
	uploadPath = "/channel/dbs"
	flashPath  = "/engine/flash"

	clientID = "apiBrowser"
)

// Config configures the service client.
type Config struct {
	// RootURL is the base URL of the chemistry service.
	RootURL string
	// HTTPClient is used to execute requests. When nil, a default client
	// with a conservative timeout is used.
	HTTPClient *http.Client
	// PollInterval is the delay between result polls. Defaults to 2s.
	PollInterval time.Duration
	// MaxBodyBytes caps response bodies to prevent memory exhaustion.
	MaxBodyBytes int64
	// Logger defaults to a discard logger.
	Logger *logging.Logger
}

// Client talks to the remote chemistry service. It owns the bearer token
// lifecycle: the first call logs in, later calls reuse the cached token and
// refresh or re-login when it lapses.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxBodyBytes int64
	log          *logging.Logger

	mu    sync.Mutex
	creds credentials.Credentials
	token credentials.Token
}

// New creates a service client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.RootURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("oli: RootURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("oli: RootURL must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("oli: RootURL scheme must be http or https")
	}
	if parsed.User != nil {
		return nil, fmt.Errorf("oli: RootURL must not include user info")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if client.Timeout == 0 {
		client.Timeout = defaultTimeout
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodySize
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Client{
		baseURL:      baseURL,
		httpClient:   client,
		pollInterval: pollInterval,
		maxBodyBytes: maxBodyBytes,
		log:          log.WithField("component", "oli"),
	}, nil
}

// Login performs a password grant and caches both the credentials and the
// returned token for later refreshes.
func (c *Client) Login(ctx context.Context, creds credentials.Credentials) (credentials.Token, error) {
	if creds.Username == "" || creds.Password == "" {
		return credentials.Token{}, fmt.Errorf("oli: username and password are required")
	}

	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {clientID},
		"username":   {creds.Username},
		"password":   {creds.Password},
	}
	token, err := c.requestToken(ctx, form)
	if err != nil {
		return credentials.Token{}, err
	}

	c.mu.Lock()
	c.creds = creds
	c.token = token
	c.mu.Unlock()

	c.log.WithContext(ctx).Info("logged in to chemistry service")
	return token, nil
}

// Refresh exchanges the cached refresh token for a new pair, falling back to
// a full login when the service rejects it.
func (c *Client) Refresh(ctx context.Context) (credentials.Token, error) {
	c.mu.Lock()
	refresh := c.token.RefreshToken
	creds := c.creds
	c.mu.Unlock()

	if refresh != "" {
		form := url.Values{
			"grant_type":    {"refresh_token"},
			"client_id":     {clientID},
			"refresh_token": {refresh},
		}
		token, err := c.requestToken(ctx, form)
		if err == nil {
			c.mu.Lock()
			c.token = token
			c.mu.Unlock()
			return token, nil
		}
		c.log.WithContext(ctx).WithError(err).Warn("token refresh failed, retrying with password grant")
	}

	return c.Login(ctx, creds)
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (credentials.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath,
		strings.NewReader(form.Encode()))
	if err != nil {
		return credentials.Token{}, fmt.Errorf("oli: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return credentials.Token{}, fmt.Errorf("oli: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return credentials.Token{}, c.statusError("token request", resp)
	}

	var out tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBodyBytes)).Decode(&out); err != nil {
		return credentials.Token{}, fmt.Errorf("oli: decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return credentials.Token{}, fmt.Errorf("oli: token response has no access token")
	}

	return credentials.NewToken(out.AccessToken, out.RefreshToken, out.ExpiresIn, time.Now()), nil
}

// UploadChemistryFile submits a chemistry definition document and returns
// the server-assigned file ID used for later calculations.
func (c *Client) UploadChemistryFile(ctx context.Context, definition any) (string, error) {
	body, err := json.Marshal(definition)
	if err != nil {
		return "", fmt.Errorf("oli: encode chemistry definition: %w", err)
	}

	resp, err := c.doAuthed(ctx, http.MethodPost, uploadPath, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.statusError("upload chemistry file", resp)
	}

	var out uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBodyBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("oli: decode upload response: %w", err)
	}
	if len(out.File) == 0 || out.File[0].ID == "" {
		return "", fmt.Errorf("oli: upload response has no file id")
	}

	c.log.WithContext(ctx).WithField("file_id", out.File[0].ID).Info("chemistry file uploaded")
	return out.File[0].ID, nil
}

// Flash runs one calculation against an uploaded chemistry file and returns
// the raw result document. When the service answers with a results link the
// call polls until the job is processed or ctx is done.
func (c *Client) Flash(ctx context.Context, fileID, method string, input any) ([]byte, error) {
	if fileID == "" {
		return nil, fmt.Errorf("oli: file id is required")
	}
	if method == "" {
		return nil, fmt.Errorf("oli: flash method is required")
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("oli: encode flash input: %w", err)
	}

	requestID := uuid.NewString()
	ctx = logging.ContextWithRequestID(ctx, requestID)

	path := flashPath + "/" + url.PathEscape(fileID) + "/" + url.PathEscape(method)
	resp, err := c.doAuthed(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	env, err := c.decodeEnvelope(resp, "flash")
	if err != nil {
		return nil, err
	}

	for {
		switch env.Status {
		case statusSucceeded, statusProcessed:
			if len(env.Data) == 0 {
				return nil, fmt.Errorf("oli: flash succeeded but returned no data")
			}
			return env.Data, nil
		case statusInProgress:
			if env.ResultsLink == "" {
				return nil, fmt.Errorf("oli: flash in progress but no results link")
			}
		case statusFailed, statusError:
			if env.Message != "" {
				return nil, fmt.Errorf("oli: flash failed: %s", env.Message)
			}
			return nil, fmt.Errorf("oli: flash failed")
		default:
			return nil, fmt.Errorf("oli: unexpected flash status %q", env.Status)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("oli: awaiting flash result: %w", ctx.Err())
		case <-time.After(c.pollInterval):
		}

		c.log.WithContext(ctx).Debug("polling flash result")
		pollResp, err := c.doAuthed(ctx, http.MethodGet, resolveLink(env.ResultsLink), nil)
		if err != nil {
			return nil, err
		}
		env, err = c.decodeEnvelope(pollResp, "poll flash result")
		if err != nil {
			return nil, err
		}
	}
}

// doAuthed executes a request with a valid bearer token, re-authenticating
// once on 401.
func (c *Client) doAuthed(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	resp, err := c.doOnce(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	c.log.WithContext(ctx).Warn("request unauthorized, refreshing token")
	if _, err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c.doOnce(ctx, method, path, body)
}

func (c *Client) doOnce(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("oli: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	if id := logging.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oli: execute request: %w", err)
	}
	return resp, nil
}

// ensureToken returns a valid token, refreshing a lapsed one first.
func (c *Client) ensureToken(ctx context.Context) (credentials.Token, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token.Valid(time.Now()) {
		return token, nil
	}
	if token.AccessToken == "" && c.hasCredentials() {
		c.mu.Lock()
		creds := c.creds
		c.mu.Unlock()
		return c.Login(ctx, creds)
	}
	if token.AccessToken == "" {
		return credentials.Token{}, fmt.Errorf("oli: not logged in")
	}
	return c.Refresh(ctx)
}

func (c *Client) hasCredentials() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds.Username != ""
}

func (c *Client) decodeEnvelope(resp *http.Response, op string) (callEnvelope, error) {
	defer resp.Body.Close()

	var env callEnvelope
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return env, c.statusError(op, resp)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBodyBytes)).Decode(&env); err != nil {
		return env, fmt.Errorf("oli: decode %s response: %w", op, err)
	}
	return env, nil
}

// statusError builds an error from a non-success response, including a
// bounded slice of the body when present.
func (c *Client) statusError(op string, resp *http.Response) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := ""
	if readErr == nil {
		msg = strings.TrimSpace(string(body))
	}
	if msg != "" {
		return fmt.Errorf("oli: %s: %s: %s", op, resp.Status, msg)
	}
	return fmt.Errorf("oli: %s: %s", op, resp.Status)
}

// resolveLink keeps service-relative result links relative to the client's
// base URL and strips an absolute link down to its path and query.
func resolveLink(link string) string {
	if parsed, err := url.Parse(link); err == nil && parsed.Host != "" {
		link = parsed.Path
		if parsed.RawQuery != "" {
			link += "?" + parsed.RawQuery
		}
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return link
}
