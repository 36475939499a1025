package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Store is a filesystem-backed document store rooted at a project directory.
// All document paths are slash-separated and relative to the root. Writes
// are whole-document replacements; documents are never versioned, so
// rewriting is deterministic by construction.
type Store struct {
	root   string
	logger zerolog.Logger
}

// New creates a store rooted at dir. The directory must exist.
func New(dir string, logger zerolog.Logger) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening document store root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("document store root %s is not a directory", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving document store root: %w", err)
	}
	return &Store{
		root:   abs,
		logger: logger.With().Str("component", "docstore").Logger(),
	}, nil
}

// Root returns the absolute project root directory.
func (s *Store) Root() string {
	return s.root
}

// Abs resolves a root-relative document path to an absolute filesystem path.
func (s *Store) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Exists reports whether a document exists at the given root-relative path.
func (s *Store) Exists(rel string) bool {
	info, err := os.Stat(s.Abs(rel))
	return err == nil && !info.IsDir()
}

// Read returns the full content of a document.
func (s *Store) Read(rel string) (string, error) {
	data, err := os.ReadFile(s.Abs(rel))
	if err != nil {
		return "", fmt.Errorf("reading document %s: %w", rel, err)
	}
	return string(data), nil
}

// Write replaces the document at the given path, creating parent
// directories as needed.
func (s *Store) Write(rel, content string) error {
	abs := s.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing document %s: %w", rel, err)
	}
	s.logger.Debug().Str("path", rel).Int("bytes", len(content)).Msg("document written")
	return nil
}

// Append appends a block to the end of a document, creating it if absent.
// The block is separated from existing content by a single blank line.
func (s *Store) Append(rel, block string) error {
	existing := ""
	if s.Exists(rel) {
		var err error
		existing, err = s.Read(rel)
		if err != nil {
			return err
		}
	}
	content := existing
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if content != "" {
		content += "\n"
	}
	content += strings.TrimRight(block, "\n") + "\n"
	return s.Write(rel, content)
}

// PrependLine puts line at the top of an existing document. If the document
// already begins with that exact line the call is a no-op and reports false.
func (s *Store) PrependLine(rel, line string) (prepended bool, err error) {
	content, err := s.Read(rel)
	if err != nil {
		return false, err
	}
	first, _, _ := strings.Cut(content, "\n")
	if first == line {
		return false, nil
	}
	return true, s.Write(rel, line+"\n"+content)
}

// List returns the root-relative paths of all documents directly inside the
// given directory, sorted lexically. A missing directory lists as empty.
func (s *Store) List(relDir string) ([]string, error) {
	entries, err := os.ReadDir(s.Abs(relDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", relDir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, relDir+"/"+e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// ListDirs returns the names of all subdirectories of the given directory,
// sorted lexically. A missing directory lists as empty.
func (s *Store) ListDirs(relDir string) ([]string, error) {
	entries, err := os.ReadDir(s.Abs(relDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", relDir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
