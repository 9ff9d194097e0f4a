// Package graph implements remote.Store against the Microsoft Graph drive API.
//
// A source reference is a SharePoint share link. The client resolves it to a
// drive item, walks folders to enumerate every file beneath it, and downloads
// file content through the pre-authenticated download URLs Graph embeds in
// item metadata. Authentication uses the OAuth2 client-credentials flow.
package graph

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/calyptra/dochub/core"
	"github.com/calyptra/dochub/remote"
)

var _ remote.Store = (*Client)(nil)

const (
	defaultLoginEndpoint = "https://login.microsoftonline.com"
	defaultGraphEndpoint = "https://graph.microsoft.com/v1.0"

	// tokenExpiryBuffer forces a refresh shortly before the token actually
	// expires so in-flight requests never race the expiry.
	tokenExpiryBuffer = 5 * time.Minute

	// fingerprintLength bounds the entity tag stored in manifests.
	fingerprintLength = 32
)

// Client talks to the Microsoft Graph drive API. It caches the OAuth2
// access token and is safe for concurrent use.
type Client struct {
	tenantID     string
	clientID     string
	clientSecret string

	loginEndpoint string
	graphEndpoint string
	httpClient    *http.Client
	logger        *slog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLoginEndpoint overrides the OAuth2 authority base URL.
func WithLoginEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.loginEndpoint = strings.TrimSuffix(endpoint, "/")
	}
}

// WithGraphEndpoint overrides the Graph API base URL.
func WithGraphEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.graphEndpoint = strings.TrimSuffix(endpoint, "/")
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("component", "graph-client")
	}
}

// NewClient creates a Graph client for the given Azure AD application.
func NewClient(tenantID, clientID, clientSecret string, opts ...Option) (*Client, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		tenantID:      tenantID,
		clientID:      clientID,
		clientSecret:  clientSecret,
		loginEndpoint: defaultLoginEndpoint,
		graphEndpoint: defaultGraphEndpoint,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		logger:        slog.Default().With("component", "graph-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// accessToken returns a cached token or requests a fresh one.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"scope":         {"https://graph.microsoft.com/.default"},
	}
	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.loginEndpoint, c.tenantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status %d: %s", ErrTokenRequest, resp.StatusCode, body)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrTokenRequest)
	}

	expiresIn := tr.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	c.token = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryBuffer)
	c.logger.Debug("acquired access token", "expires_in", expiresIn)
	return c.token, nil
}

// getJSON performs an authenticated GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGraphRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: GET %s: status %d: %s", ErrGraphRequest, rawURL, resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// driveItem is the subset of Graph drive item metadata the client reads.
type driveItem struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	ETag                 string          `json:"eTag"`
	Size                 int64           `json:"size"`
	LastModifiedDateTime string          `json:"lastModifiedDateTime"`
	DownloadURL          string          `json:"@microsoft.graph.downloadUrl"`
	File                 json.RawMessage `json:"file"`
	Folder               json.RawMessage `json:"folder"`
	ParentReference      struct {
		DriveID string `json:"driveId"`
	} `json:"parentReference"`
}

type childrenPage struct {
	Value    []driveItem `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

// resolveShareLink converts a share link into drive item metadata using
// Graph's "u!" base64url share id encoding.
func (c *Client) resolveShareLink(ctx context.Context, shareLink string) (*driveItem, error) {
	encoded := base64.URLEncoding.EncodeToString([]byte(strings.TrimSpace(shareLink)))
	encoded = strings.TrimRight(encoded, "=")

	var item driveItem
	metaURL := fmt.Sprintf("%s/shares/u!%s/driveItem", c.graphEndpoint, encoded)
	if err := c.getJSON(ctx, metaURL, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// listChildren returns all children of a folder item, following pagination.
func (c *Client) listChildren(ctx context.Context, driveID, itemID string) ([]driveItem, error) {
	next := fmt.Sprintf("%s/drives/%s/items/%s/children", c.graphEndpoint, driveID, itemID)

	var items []driveItem
	for next != "" {
		var page childrenPage
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Value...)
		next = page.NextLink
	}
	return items, nil
}

// List resolves the share link and returns a descriptor for every file
// reachable from it, folders expanded breadth-first.
func (c *Client) List(ctx context.Context, sourceRef string) ([]core.FileDescriptor, error) {
	root, err := c.resolveShareLink(ctx, sourceRef)
	if err != nil {
		return nil, err
	}

	var files []core.FileDescriptor
	worklist := []driveItem{*root}
	for len(worklist) > 0 {
		item := worklist[0]
		worklist = worklist[1:]

		switch {
		case item.File != nil:
			files = append(files, toDescriptor(item))
		case item.Folder != nil:
			if item.ParentReference.DriveID == "" || item.ID == "" {
				continue
			}
			children, err := c.listChildren(ctx, item.ParentReference.DriveID, item.ID)
			if err != nil {
				return nil, err
			}
			worklist = append(worklist, children...)
		}
	}

	c.logger.Debug("listed source", "files", len(files))
	return files, nil
}

// Fetch downloads file content. Download URLs carry their own short-lived
// authorization, so no bearer token is attached.
func (c *Client) Fetch(ctx context.Context, contentRef string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentRef, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func toDescriptor(item driveItem) core.FileDescriptor {
	fingerprint := item.ETag
	if len(fingerprint) > fingerprintLength {
		fingerprint = fingerprint[:fingerprintLength]
	}

	modified, _ := time.Parse(time.RFC3339, item.LastModifiedDateTime)

	return core.FileDescriptor{
		ID:           item.ID,
		Name:         item.Name,
		Fingerprint:  fingerprint,
		Size:         item.Size,
		LastModified: modified,
		ContentRef:   item.DownloadURL,
	}
}
