package targets

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/farcloser/primordium/fault"
)

const documentExt = ".json"

//nolint:gochecknoglobals // embedded reference set
//go:embed genres/*.json
var embedded embed.FS

// Source provides raw genre target documents.
type Source interface {
	// Document returns the document for a normalized genre name, or ErrGenreNotFound.
	Document(ctx context.Context, genre string) ([]byte, error)
	// List returns the normalized names of every available genre, sorted.
	List(ctx context.Context) ([]string, error)
}

// FSSource reads <Root>/<genre>.json from a file system.
type FSSource struct {
	FS   fs.FS
	Root string
}

// Embedded returns the built-in reference genre set.
func Embedded() *FSSource {
	return &FSSource{FS: embedded, Root: "genres"}
}

func (s *FSSource) Document(ctx context.Context, genre string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := path.Join(s.root(), genre+documentExt)

	data, err := fs.ReadFile(s.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrGenreNotFound, genre)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	return data, nil
}

func (s *FSSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(s.FS, s.root())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	return documentNames(entries), nil
}

func (s *FSSource) root() string {
	if s.Root == "" {
		return "."
	}

	return s.Root
}

// DirSource reads <Dir>/<genre>.json from disk.
type DirSource struct {
	Dir string
}

func (s *DirSource) Document(ctx context.Context, genre string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.Dir, genre+documentExt))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q in %s", ErrGenreNotFound, genre, s.Dir)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	return data, nil
}

func (s *DirSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	return documentNames(entries), nil
}

// Layered tries each source in order, returning the first document found.
type Layered []Source

func (l Layered) Document(ctx context.Context, genre string) ([]byte, error) {
	for _, source := range l {
		data, err := source.Document(ctx, genre)
		if errors.Is(err, ErrGenreNotFound) {
			continue
		}

		return data, err
	}

	return nil, fmt.Errorf("%w: %q", ErrGenreNotFound, genre)
}

func (l Layered) List(ctx context.Context) ([]string, error) {
	var names []string

	for _, source := range l {
		list, err := source.List(ctx)
		if err != nil {
			return nil, err
		}

		names = append(names, list...)
	}

	slices.Sort(names)

	return slices.Compact(names), nil
}

func documentNames(entries []fs.DirEntry) []string {
	var names []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), documentExt) {
			continue
		}

		names = append(names, strings.TrimSuffix(entry.Name(), documentExt))
	}

	slices.Sort(names)

	return names
}
