// Package bluesky publishes posts with an image to a Bluesky account over
// the AT Protocol XRPC API.
package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config holds the account used to post.
type Config struct {
	Host       string // PDS, e.g. https://bsky.social
	Identifier string // handle or email
	Password   string // app password
}

// Client is an XRPC client for one account. It logs in lazily on the
// first post.
type Client struct {
	baseURL    string
	identifier string
	password   string
	httpClient *http.Client
	now        func() time.Time

	session *session
}

type session struct {
	AccessJwt string `json:"accessJwt"`
	Did       string `json:"did"`
	Handle    string `json:"handle"`
}

// NewClient creates a client. Identifier and password are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Identifier == "" || cfg.Password == "" {
		return nil, fmt.Errorf("BLUESKY_IDENTIFIER and BLUESKY_PASSWORD are required")
	}
	host := cfg.Host
	if host == "" {
		host = "https://bsky.social"
	}
	return &Client{
		baseURL:    strings.TrimRight(host, "/"),
		identifier: cfg.Identifier,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}, nil
}

// Error is an XRPC error response.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bluesky: %s: %s", e.Code, e.Message)
	}
	if e.Code != "" {
		return "bluesky: " + e.Code
	}
	return "bluesky: " + http.StatusText(e.Status)
}

type blob struct {
	Type     string `json:"$type"`
	Ref      link   `json:"ref"`
	MimeType string `json:"mimeType"`
	Size     int    `json:"size"`
}

type link struct {
	Link string `json:"$link"`
}

type image struct {
	Alt   string `json:"alt"`
	Image blob   `json:"image"`
}

type embed struct {
	Type   string  `json:"$type"`
	Images []image `json:"images"`
}

type feedPost struct {
	Type      string   `json:"$type"`
	Text      string   `json:"text"`
	CreatedAt string   `json:"createdAt"`
	Langs     []string `json:"langs,omitempty"`
	Embed     *embed   `json:"embed,omitempty"`
}

type createRecordRequest struct {
	Repo       string   `json:"repo"`
	Collection string   `json:"collection"`
	Record     feedPost `json:"record"`
}

type createRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// Post publishes text with image attached and returns the web URL of the
// new post. A nil image posts text only.
func (c *Client) Post(ctx context.Context, text string, img []byte, alt string) (string, error) {
	if err := c.login(ctx); err != nil {
		return "", err
	}

	record := feedPost{
		Type:      "app.bsky.feed.post",
		Text:      text,
		CreatedAt: c.now().UTC().Format(time.RFC3339),
		Langs:     []string{"en"},
	}

	if len(img) > 0 {
		b, err := c.uploadBlob(ctx, img)
		if err != nil {
			return "", err
		}
		record.Embed = &embed{
			Type:   "app.bsky.embed.images",
			Images: []image{{Alt: alt, Image: *b}},
		}
	}

	req := createRecordRequest{
		Repo:       c.session.Did,
		Collection: "app.bsky.feed.post",
		Record:     record,
	}
	var resp createRecordResponse
	if err := c.post(ctx, "com.atproto.repo.createRecord", req, &resp); err != nil {
		return "", fmt.Errorf("creating post: %w", err)
	}

	slog.InfoContext(ctx, "Posted to Bluesky", "uri", resp.URI)
	return WebURL(resp.URI), nil
}

func (c *Client) login(ctx context.Context) error {
	if c.session != nil {
		return nil
	}

	body := map[string]string{"identifier": c.identifier, "password": c.password}
	var s session
	if err := c.post(ctx, "com.atproto.server.createSession", body, &s); err != nil {
		return fmt.Errorf("logging in to bluesky: %w", err)
	}
	c.session = &s

	slog.DebugContext(ctx, "Logged in to Bluesky", "handle", s.Handle)
	return nil
}

func (c *Client) uploadBlob(ctx context.Context, img []byte) (*blob, error) {
	req, err := c.newRequest(ctx, "com.atproto.repo.uploadBlob", bytes.NewReader(img))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/jpeg")

	var resp struct {
		Blob blob `json:"blob"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}
	return &resp.Blob, nil
}

// post performs an XRPC procedure call with a JSON body.
func (c *Client) post(ctx context.Context, method string, body, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := c.newRequest(ctx, method, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *Client) newRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/xrpc/"+method, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.AccessJwt)
	}
	return req, nil
}

// do executes req and decodes a JSON response into result.
func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("Closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		xerr := &Error{Status: resp.StatusCode}
		_ = json.Unmarshal(respBody, xerr)
		return xerr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// WebURL converts an at:// post URI to its bsky.app address. URIs that are
// not feed posts are returned unchanged.
func WebURL(uri string) string {
	rest, ok := strings.CutPrefix(uri, "at://")
	if !ok {
		return uri
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[1] != "app.bsky.feed.post" || parts[0] == "" || parts[2] == "" {
		return uri
	}
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", parts[0], parts[2])
}

// AltText describes the Street View image attached to a lot's post.
func AltText(cleanAddress, parcelIDs string) string {
	return fmt.Sprintf("Google Streetview of %s, corresponding to Hamilton County Auditor Parcel IDs: %s",
		cleanAddress, parcelIDs)
}
