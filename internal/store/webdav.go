package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WebDAVConfig carries everything needed to talk to a Nextcloud-style WebDAV
// endpoint. Exactly one of Password (app password, basic auth) or Token
// (bearer) should be set.
type WebDAVConfig struct {
	BaseURL  string
	Username string
	Password string
	Token    string
	Folder   string
	Timeout  time.Duration
}

// WebDAV is a DocumentStore backed by a remote WebDAV folder. The version
// token is the ETag response header.
type WebDAV struct {
	cfg    WebDAVConfig
	client *http.Client
}

// NewWebDAV builds the remote store. The base URL may or may not carry a
// trailing slash.
func NewWebDAV(cfg WebDAVConfig) *WebDAV {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.Folder = strings.Trim(cfg.Folder, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &WebDAV{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Read fetches a document and its ETag.
func (w *WebDAV) Read(ctx context.Context, name string) (Document, error) {
	req, err := w.request(ctx, http.MethodGet, w.fileURL(name), nil)
	if err != nil {
		return Document{}, err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Document{}, fmt.Errorf("read %s: %w", name, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Document{}, fmt.Errorf("read %s: unexpected status %s", name, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", name, err)
	}

	return Document{
		Content: string(body),
		Version: resp.Header.Get("Etag"),
	}, nil
}

// Write uploads a document with PUT. The server decides the new ETag; the
// caller re-reads to observe it.
func (w *WebDAV) Write(ctx context.Context, name string, content string) error {
	req, err := w.request(ctx, http.MethodPut, w.fileURL(name), strings.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("write %s: %w: %v", name, ErrWriteRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("write %s: %w: status %s", name, ErrWriteRejected, resp.Status)
	}
	return nil
}

// EnsureFolder creates the journal folder if it is missing. An existing
// folder answers MKCOL with 405, which is fine.
func (w *WebDAV) EnsureFolder(ctx context.Context) error {
	req, err := w.request(ctx, "MKCOL", w.folderURL(), nil)
	if err != nil {
		return err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusMethodNotAllowed:
		return nil
	default:
		return fmt.Errorf("create folder: unexpected status %s", resp.Status)
	}
}

// Ping verifies credentials and reachability with a Depth 0 PROPFIND on the
// account root.
func (w *WebDAV) Ping(ctx context.Context) error {
	req, err := w.request(ctx, "PROPFIND", w.rootURL(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Depth", "0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ping: unexpected status %s", resp.Status)
	}
	return nil
}

func (w *WebDAV) request(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if w.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+w.cfg.Token)
	} else {
		cred := base64.StdEncoding.EncodeToString([]byte(w.cfg.Username + ":" + w.cfg.Password))
		req.Header.Set("Authorization", "Basic "+cred)
	}
	return req, nil
}

func (w *WebDAV) rootURL() string {
	return w.cfg.BaseURL + "/remote.php/dav/files/" + url.PathEscape(w.cfg.Username) + "/"
}

func (w *WebDAV) folderURL() string {
	if w.cfg.Folder == "" {
		return w.rootURL()
	}
	return w.rootURL() + escapePath(w.cfg.Folder)
}

func (w *WebDAV) fileURL(name string) string {
	base := w.folderURL()
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(name)
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
