// Package media fetches bitmaps and drives video playback for the canvas.
package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"

	"CanvasEdit/internal/applog"
)

// ErrStatus is returned when the server answers with a non-2xx status.
var ErrStatus = errors.New("media: unexpected http status")

// maxImageBytes bounds a single download.
const maxImageBytes = 32 << 20

// Loader fetches and decodes images by URL. Decoded bitmaps are cached for the
// life of the loader and concurrent requests for one URL share a fetch.
type Loader struct {
	client *http.Client
	group  singleflight.Group

	mu    sync.RWMutex
	cache map[string]image.Image

	log *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

// NewLoader returns a loader whose requests give up after timeout.
func NewLoader(timeout time.Duration, opts ...LoaderOption) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: timeout},
		cache:  make(map[string]image.Image),
		log:    applog.WithComponent("media"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Cached returns the decoded bitmap for url if it has been loaded.
func (l *Loader) Cached(url string) (image.Image, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	img, ok := l.cache[url]
	return img, ok
}

// Load returns the decoded image at url. Failures are not cached.
func (l *Loader) Load(ctx context.Context, url string) (image.Image, error) {
	if img, ok := l.Cached(url); ok {
		return img, nil
	}
	v, err, shared := l.group.Do(url, func() (any, error) {
		img, err := l.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[url] = img
		l.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Debug("image loaded", slog.String("url", url), slog.Bool("shared", shared))
	return v.(image.Image), nil
}

func (l *Loader) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: %w: %s", url, ErrStatus, resp.Status)
	}
	img, format, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	l.log.Debug("image decoded", slog.String("url", url), slog.String("format", format),
		slog.Int("width", img.Bounds().Dx()), slog.Int("height", img.Bounds().Dy()))
	return img, nil
}

// LoadAsync loads url on a new goroutine and calls fn with the result. fn is
// never called when the load fails or ctx is cancelled first.
func (l *Loader) LoadAsync(ctx context.Context, url string, fn func(image.Image)) {
	go func() {
		img, err := l.Load(ctx, url)
		if err != nil {
			if ctx.Err() == nil {
				l.log.Warn("image load failed", slog.String("url", url), slog.Any("err", err))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		fn(img)
	}()
}
