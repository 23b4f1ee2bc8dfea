package book

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
)

func init() {
	RegisterBackend("", openFile)
	RegisterBackend("file", openFile)
	RegisterBackend("xml", openFile) // kept for the URLs of older scripts
}

// LockSuffix is appended to a book file path to name its lock file.
const LockSuffix = ".LCK"

// fileBackend stores a book in a single JSONL file, optionally gzipped.
type fileBackend struct {
	path       string
	lock       string // lock file path, empty when not held
	compressed bool
}

// FilePath returns the file path of a bare path or a file:// or xml:// URL.
func FilePath(url string) string {
	if _, path, ok := strings.Cut(url, "://"); ok {
		return path
	}
	return url
}

func openFile(ctx context.Context, url string, opts Options) (Backend, error) {
	f := &fileBackend{path: FilePath(url)}
	if f.path == "" {
		return nil, errors.New("missing book file path")
	}
	if _, err := os.Stat(f.path); err != nil {
		return nil, err
	}
	if opts.IgnoreLock {
		return f, nil
	}
	lock := f.path + LockSuffix
	lf, err := os.OpenFile(lock, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%w by %s", ErrLocked, lock)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot create lock: %w", err)
	}
	host, _ := os.Hostname()
	fmt.Fprintf(lf, "%s %d\n", host, os.Getpid())
	if err := lf.Close(); err != nil {
		os.Remove(lock)
		return nil, fmt.Errorf("cannot create lock: %w", err)
	}
	f.lock = lock
	return f, nil
}

func (f *fileBackend) Load(ctx context.Context) (*Book, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := bufio.NewReader(file)
	var in io.Reader = r
	if magic, err := r.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		in = zr
		f.compressed = true
	}
	b, err := DecodeBook(in)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", f.path).Bool("compressed", f.compressed).Msg("book loaded")
	return b, nil
}

// Save rewrites the whole file. The new content is written next to the file
// and renamed over it, so a failed save leaves the previous book intact.
func (f *fileBackend) Save(ctx context.Context, b *Book) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after the rename

	if err := f.write(tmp, b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if info, err := os.Stat(f.path); err == nil {
		os.Chmod(tmp.Name(), info.Mode().Perm())
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return err
	}
	log.Debug().Str("path", f.path).Bool("compressed", f.compressed).Msg("book saved")
	return nil
}

func (f *fileBackend) write(w io.Writer, b *Book) error {
	if !f.compressed {
		return EncodeBook(w, b)
	}
	zw := gzip.NewWriter(w)
	if err := EncodeBook(zw, b); err != nil {
		return err
	}
	return zw.Close()
}

func (f *fileBackend) Close() error {
	if f.lock == "" {
		return nil
	}
	err := os.Remove(f.lock)
	f.lock = ""
	return err
}
