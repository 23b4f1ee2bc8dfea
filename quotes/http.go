package quotes

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/book/date"
	"github.com/rs/zerolog/log"
)

// diskCache is an http.RoundTripper that keeps successful GET responses on
// disk. A cached response expires with the period it was fetched in.
type diskCache struct {
	base   http.RoundTripper
	dir    string
	period date.Period
}

// NewCachingClient returns a client that caches responses in the user cache
// directory, one entry per URL and period.
func NewCachingClient(period date.Period) *http.Client {
	return &http.Client{Transport: &diskCache{
		base:   http.DefaultTransport,
		dir:    CacheDir(),
		period: period,
	}}
}

// CacheDir returns the directory of cached responses, private to the user.
func CacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), fmt.Sprintf("bk-quotes-%d", os.Getuid()))
	}
	return filepath.Join(dir, "bk", "quotes")
}

// private checks that only the user can access the cache directory.
func (c *diskCache) private() error {
	info, err := os.Stat(c.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() || info.Mode().Perm()&0o077 != 0 {
		return fmt.Errorf("cache %s is not a private directory", c.dir)
	}
	return nil
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.base.RoundTrip(req)
	}
	// the period identifier in the key makes entries expire.
	key := fmt.Sprintf("%s %s %s", date.NewRange(date.Today(), c.period).Identifier(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		log.Debug().Str("url", req.URL.Redacted()).Msg("cache hit")
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Debug().Msgf("%v %v%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		log.Debug().Err(err).Msg("cache write error (ignored)")
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	if err := c.private(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

func (c *diskCache) put(key string, resp *http.Response) error {
	// DumpResponse reads the body and replaces it with an in-memory copy.
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return err
	}
	if err := c.private(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o600)
}

// Get performs an HTTP GET and returns the body of a 200 response.
func Get(ctx context.Context, client *http.Client, addr string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return body, &StatusError{Host: req.URL.Host, Path: req.URL.Path, Status: resp.Status, Code: resp.StatusCode}
	}
	return body, nil
}

// GetJSON performs an HTTP GET and decodes the JSON body of a 200 response into data.
func GetJSON(ctx context.Context, client *http.Client, addr string, header http.Header, data any) error {
	body, err := Get(ctx, client, addr, header)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}

// StatusError reports a response other than 200 OK.
type StatusError struct {
	Host, Path string
	Status     string
	Code       int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cannot http GET %v%v: %v", e.Host, e.Path, e.Status)
}
