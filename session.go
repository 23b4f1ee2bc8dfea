package book

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	// ErrLocked is returned when opening a book already opened by another session.
	ErrLocked = errors.New("book is locked")
	// ErrUnknownScheme is returned for a book URL without a registered backend.
	ErrUnknownScheme = errors.New("unknown book url scheme")
)

// Options controls how a session opens a book.
type Options struct {
	// IgnoreLock opens the book even if another session holds its lock.
	IgnoreLock bool
}

// Backend loads and saves a book from a storage.
type Backend interface {
	// Load reads the whole book.
	Load(ctx context.Context) (*Book, error)
	// Save writes the book, or at least its Changes.
	Save(ctx context.Context, b *Book) error
	// Close releases the lock and any other resource.
	Close() error
}

// Opener opens a Backend for a book URL. It acquires the book lock.
type Opener func(ctx context.Context, url string, opts Options) (Backend, error)

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Opener)
)

// RegisterBackend makes a backend available for URLs with the given scheme.
// The empty scheme is used for bare paths.
// It panics if called twice for the same scheme or if opener is nil.
func RegisterBackend(scheme string, opener Opener) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if opener == nil {
		panic("book: RegisterBackend opener is nil")
	}
	if _, dup := backends[scheme]; dup {
		panic("book: RegisterBackend called twice for scheme " + scheme)
	}
	backends[scheme] = opener
}

// Schemes returns the sorted list of registered URL schemes.
func Schemes() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	var schemes []string
	for s := range backends {
		if s != "" {
			schemes = append(schemes, s)
		}
	}
	slices.Sort(schemes)
	return schemes
}

// scheme returns the scheme of a book URL, empty for a bare path.
func scheme(url string) string {
	s, _, ok := strings.Cut(url, "://")
	if !ok {
		return ""
	}
	return strings.ToLower(s)
}

// Session is an opened book. It must be ended to release the book lock.
type Session struct {
	url     string
	backend Backend
	book    *Book
}

// Open loads the book at url and locks it.
func Open(ctx context.Context, url string, opts Options) (*Session, error) {
	backendsMu.RLock()
	opener, ok := backends[scheme(url)]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cannot open %q: %w %q", url, ErrUnknownScheme, scheme(url))
	}

	log.Debug().Str("url", url).Bool("ignore_lock", opts.IgnoreLock).Msg("opening session")
	backend, err := opener(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", url, err)
	}
	b, err := backend.Load(ctx)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("cannot load %q: %w", url, err)
	}
	b.ClearChanges()
	return &Session{url: url, backend: backend, book: b}, nil
}

// URL returns the URL the session was opened with.
func (s *Session) URL() string { return s.url }

// Book returns the book of the session.
func (s *Session) Book() *Book { return s.book }

// Save writes the book changes to the backend.
func (s *Session) Save(ctx context.Context) error {
	if s.backend == nil {
		return fmt.Errorf("cannot save %q: session ended", s.url)
	}
	if err := s.backend.Save(ctx, s.book); err != nil {
		return fmt.Errorf("cannot save %q: %w", s.url, err)
	}
	s.book.ClearChanges()
	log.Debug().Str("url", s.url).Msg("session saved")
	return nil
}

// End releases the book lock. Unsaved changes are lost. Ending twice is a no-op.
func (s *Session) End() error {
	if s.backend == nil {
		return nil
	}
	err := s.backend.Close()
	s.backend = nil
	if err != nil {
		return fmt.Errorf("cannot end session on %q: %w", s.url, err)
	}
	log.Debug().Str("url", s.url).Msg("session ended")
	return nil
}
