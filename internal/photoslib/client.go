package photoslib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shoebox/internal/config"
	"shoebox/internal/services"
)

// Service is the remote capability surface the upload pipeline needs.
type Service interface {
	// CreateAlbum creates a remote album and returns its ID.
	CreateAlbum(ctx context.Context, title string) (string, error)
	// UploadBytes streams one file's content and returns the remote media ID.
	UploadBytes(ctx context.Context, filename string, content io.Reader, size int64) (string, error)
	// AddToAlbum links previously uploaded media into an album.
	AddToAlbum(ctx context.Context, albumID, mediaID string) error
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client implements Service over the photo-library HTTP API.
type Client struct {
	baseURL  string
	token    string
	clientID string
	doer     HTTPDoer
}

// New constructs a client from configuration, using a standard
// http.Client with the configured request timeout. The persisted client
// identifier is created on first use.
func New(cfg *config.Config) (*Client, error) {
	timeout := time.Duration(cfg.Photos.RequestTimeout) * time.Second
	return NewWithDoer(cfg, &http.Client{Timeout: timeout})
}

// NewWithDoer constructs a client with an injected HTTP backend.
func NewWithDoer(cfg *config.Config, doer HTTPDoer) (*Client, error) {
	token := strings.TrimSpace(cfg.Photos.APIToken)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "photoslib", "build client",
			"api_token is not set (config [photos] or SHOEBOX_API_TOKEN)", nil)
	}

	clientID, err := LoadOrCreateClientID(cfg.ClientIDPath())
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.Photos.BaseURL, "/"),
		token:    token,
		clientID: clientID,
		doer:     doer,
	}, nil
}

// ClientID reports the persisted client identifier sent on every request.
func (c *Client) ClientID() string {
	return c.clientID
}

func (c *Client) CreateAlbum(ctx context.Context, title string) (string, error) {
	body := map[string]string{"title": title}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/albums", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", services.Wrap(services.ErrRejected, "photoslib", "create album",
			fmt.Sprintf("no album id returned for %q", title), nil)
	}
	return resp.ID, nil
}

func (c *Client) UploadBytes(ctx context.Context, filename string, content io.Reader, size int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/uploads", content)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "photoslib", "upload bytes", "build request", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Upload-File-Name", filename)
	c.setCommonHeaders(req)

	payload, err := c.execute(req, "upload bytes")
	if err != nil {
		return "", err
	}

	var resp struct {
		MediaID string `json:"media_id"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", services.Wrap(services.ErrTransient, "photoslib", "upload bytes", "decode response", err)
	}
	if resp.MediaID == "" {
		return "", services.Wrap(services.ErrRejected, "photoslib", "upload bytes",
			fmt.Sprintf("no media id returned for %s", filename), nil)
	}
	return resp.MediaID, nil
}

func (c *Client) AddToAlbum(ctx context.Context, albumID, mediaID string) error {
	path := "/v1/albums/" + url.PathEscape(albumID) + "/media"
	body := map[string]string{"media_id": mediaID}
	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return services.Wrap(services.ErrRejected, "photoslib", "encode request", path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return services.Wrap(services.ErrTransient, "photoslib", "build request", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setCommonHeaders(req)

	payload, err := c.execute(req, method+" "+path)
	if err != nil {
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return services.Wrap(services.ErrTransient, "photoslib", "decode response", path, err)
	}
	return nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Shoebox-Client", c.clientID)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) execute(req *http.Request, operation string) ([]byte, error) {
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "photoslib", operation, "request failed", err)
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if readErr != nil {
			return nil, services.Wrap(services.ErrTransient, "photoslib", operation, "read response", readErr)
		}
		return payload, nil
	}

	marker := classifyStatus(resp.StatusCode)
	detail := fmt.Sprintf("remote returned %d", resp.StatusCode)
	if snippet := strings.TrimSpace(string(payload)); snippet != "" && len(snippet) <= 200 {
		detail += ": " + snippet
	}
	return nil, services.Wrap(marker, "photoslib", operation, detail, nil)
}

// classifyStatus maps HTTP status codes onto the error taxonomy:
// rate limiting and server errors are retryable, auth failures abort
// the run, everything else in the 4xx range is a permanent rejection
// of that one request.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return services.ErrTransient
	case status >= 500:
		return services.ErrTransient
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return services.ErrConfiguration
	case status == http.StatusNotFound:
		return services.ErrNotFound
	default:
		return services.ErrRejected
	}
}
