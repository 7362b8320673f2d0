package imagehost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
)

const apiBase = "https://api.github.com"

// ErrNotReady is returned when a network operation is attempted with an
// incomplete configuration.
var ErrNotReady = errors.New("invalid GitHub image host configuration")

// ErrAlreadyExists is returned by Create when the target path is already
// occupied at the host. Resources are never overwritten.
var ErrAlreadyExists = errors.New("resource already exists at the image host")

// GitHubHost stores images as files in a GitHub repository via the contents
// API and serves them through raw.githubusercontent.com. It implements Host.
//
// Create and Remove are each two independent calls (existence check then PUT,
// sha lookup then DELETE) with no atomicity guarantee; a concurrent external
// modification of the same path between the two calls is an accepted race.
type GitHubHost struct {
	cfg       Config
	urlPrefix string
	transport Transport
}

// NewGitHubHost creates a host with the given configuration. A nil transport
// falls back to a plain HTTPTransport.
func NewGitHubHost(cfg Config, transport Transport) *GitHubHost {
	if transport == nil {
		transport = &HTTPTransport{}
	}
	h := &GitHubHost{transport: transport}
	h.SetConfig(cfg)
	return h
}

// Ready reports whether token, user name, and repository name are all set.
func (h *GitHubHost) Ready() bool {
	return h.cfg.PersonalAccessToken != "" && h.cfg.UserName != "" && h.cfg.RepositoryName != ""
}

// Config returns the current configuration.
func (h *GitHubHost) Config() Config {
	return h.cfg
}

// SetConfig replaces the configuration and recomputes the download URL
// prefix. No validation is performed.
func (h *GitHubHost) SetConfig(cfg Config) {
	h.cfg = cfg
	h.urlPrefix = fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/master/", cfg.UserName, cfg.RepositoryName)
}

// TestConfig checks a candidate configuration by fetching the repository
// info with the candidate token. The returned message is the raw response
// body (or error text) regardless of outcome.
func (h *GitHubHost) TestConfig(ctx context.Context, cfg Config) (bool, string) {
	if cfg.PersonalAccessToken == "" || cfg.UserName == "" || cfg.RepositoryName == "" {
		return false, "personal access token, user name and repository name should not be empty"
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s", apiBase, cfg.UserName, cfg.RepositoryName)
	reply := h.transport.Request(ctx, endpoint, commonHeaders(cfg.PersonalAccessToken))
	return reply.Kind == ErrorNone, string(reply.Body)
}

type createRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
}

type createResponse struct {
	Content struct {
		DownloadURL string `json:"download_url"`
	} `json:"content"`
}

// Create uploads content as a new file at path and returns its download URL.
// The path must be unoccupied: a successful existence check fails the call
// with ErrAlreadyExists and no upload is attempted.
func (h *GitHubHost) Create(ctx context.Context, content []byte, path string) (string, error) {
	if path == "" {
		return "", errors.New("failed to create image with empty path")
	}
	if !h.Ready() {
		return "", ErrNotReady
	}

	headers := commonHeaders(h.cfg.PersonalAccessToken)
	endpoint := h.contentsURL(path)

	reply := h.transport.Request(ctx, endpoint, headers)
	switch reply.Kind {
	case ErrorNone:
		return "", fmt.Errorf("%w (%s)", ErrAlreadyExists, path)
	case ErrorNotFound:
		// Path is free; proceed with the upload.
	default:
		return "", fmt.Errorf("query resource at image host (%s): %s", endpoint, reply.Body)
	}

	payload, err := json.Marshal(createRequest{
		Message: "VX_ADD: " + path,
		Content: base64.StdEncoding.EncodeToString(content),
	})
	if err != nil {
		return "", fmt.Errorf("encode create request: %w", err)
	}

	reply = h.transport.Put(ctx, endpoint, headers, payload)
	if reply.Kind != ErrorNone {
		return "", fmt.Errorf("create resource at image host (%s): %s", endpoint, reply.Body)
	}

	var created createResponse
	if err := json.Unmarshal(reply.Body, &created); err != nil {
		return "", fmt.Errorf("decode create response (%s): %w", endpoint, err)
	}
	if created.Content.DownloadURL == "" {
		return "", fmt.Errorf("create resource at image host (%s): response missing download_url", endpoint)
	}

	log.Printf("imagehost: created resource %s", created.Content.DownloadURL)
	return created.Content.DownloadURL, nil
}

// OwnsURL reports whether rawURL starts with the current download URL prefix.
func (h *GitHubHost) OwnsURL(rawURL string) bool {
	return strings.HasPrefix(rawURL, h.urlPrefix)
}

type deleteRequest struct {
	Message string `json:"message"`
	SHA     string `json:"sha"`
}

// Remove deletes the file behind rawURL. It resolves the repository-relative
// path from the URL, fetches the current content sha, and issues the delete
// with that sha as the concurrency token.
func (h *GitHubHost) Remove(ctx context.Context, rawURL string) error {
	if !h.OwnsURL(rawURL) {
		return fmt.Errorf("url is not owned by this image host (%s)", rawURL)
	}
	if !h.Ready() {
		return ErrNotReady
	}

	path := purifyPath(strings.TrimPrefix(rawURL, h.urlPrefix))
	headers := commonHeaders(h.cfg.PersonalAccessToken)
	endpoint := h.contentsURL(path)

	reply := h.transport.Request(ctx, endpoint, headers)
	if reply.Kind != ErrorNone {
		return fmt.Errorf("fetch information about the resource (%s): %s", path, reply.Body)
	}

	var info struct {
		SHA string `json:"sha"`
	}
	if err := json.Unmarshal(reply.Body, &info); err != nil {
		return fmt.Errorf("decode resource information (%s): %w", path, err)
	}
	if info.SHA == "" {
		return fmt.Errorf("fetch sha of the resource (%s): %s", path, reply.Body)
	}

	payload, err := json.Marshal(deleteRequest{
		Message: "VX_DEL: " + path,
		SHA:     info.SHA,
	})
	if err != nil {
		return fmt.Errorf("encode delete request: %w", err)
	}

	reply = h.transport.DeleteResource(ctx, endpoint, headers, payload)
	if reply.Kind != ErrorNone {
		return fmt.Errorf("delete resource (%s): %s", path, reply.Body)
	}

	log.Printf("imagehost: deleted resource %s", path)
	return nil
}

func (h *GitHubHost) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", apiBase, h.cfg.UserName, h.cfg.RepositoryName, path)
}

// commonHeaders builds the headers sent on every GitHub API call.
func commonHeaders(token string) http.Header {
	headers := http.Header{}
	headers.Set("Authorization", "token "+token)
	headers.Set("Accept", "application/vnd.github.v3+json")
	return headers
}

// purifyPath recovers a repository-relative path from a download URL tail:
// anything from a query or fragment on is dropped, then percent-escapes are
// decoded. Undecodable input is kept as is.
func purifyPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if decoded, err := url.PathUnescape(p); err == nil {
		return decoded
	}
	return p
}
