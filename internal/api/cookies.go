// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/jeranaias/kindred-tui/internal/util"
)

// =============================================================================
// PERSISTENT COOKIE JAR
// =============================================================================

// storedCookie is the on-disk shape of a persisted cookie.
type storedCookie struct {
	URL      string    `json:"url"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

// Jar is an http.CookieJar that can persist its contents to disk, so the
// opaque session cookie survives client restarts. The application never
// inspects cookie values; they pass through this jar opaquely.
type Jar struct {
	inner *cookiejar.Jar

	mu   sync.Mutex
	path string           // empty = in-memory only
	seen map[string]*url.URL // URLs that received cookies, for persistence
}

// NewJar creates a jar, loading any previously persisted cookies from path.
func NewJar(path string) (*Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	j := &Jar{
		inner: inner,
		path:  path,
		seen:  make(map[string]*url.URL),
	}
	if path != "" {
		j.load()
	}
	return j, nil
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)

	j.mu.Lock()
	j.seen[u.Scheme+"://"+u.Host] = u
	j.mu.Unlock()
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Persist writes the jar's cookies to disk. A jar without a path is a no-op.
func (j *Jar) Persist() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.path == "" {
		return nil
	}

	var stored []storedCookie
	for origin, u := range j.seen {
		for _, c := range j.inner.Cookies(u) {
			stored = append(stored, storedCookie{
				URL:   origin,
				Name:  c.Name,
				Value: c.Value,
				Path:  c.Path,
			})
		}
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	// 0600: the file holds the session credential
	return util.AtomicWriteFile(j.path, data, 0600)
}

// Clear drops all cookies and removes the persisted file.
func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	// cookiejar has no flush operation; a fresh jar is the reset
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	j.inner = inner
	j.seen = make(map[string]*url.URL)

	if j.path == "" {
		return nil
	}
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// load restores persisted cookies. Errors are ignored: a missing or
// corrupt cookie file just means the user has to log in again.
func (j *Jar) load() {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return
	}

	for _, sc := range stored {
		u, err := url.Parse(sc.URL)
		if err != nil {
			continue
		}
		j.inner.SetCookies(u, []*http.Cookie{{
			Name:  sc.Name,
			Value: sc.Value,
			Path:  sc.Path,
		}})
		j.seen[sc.URL] = u
	}
}
