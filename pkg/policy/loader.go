package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Loader loads policy files from disk.
type Loader struct {
	logger zerolog.Logger
}

// NewLoader creates a policy loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		logger: logger.With().Str("component", "policy-loader").Logger(),
	}
}

// LoadFromPaths loads policies from a list of file or directory paths.
func (l *Loader) LoadFromPaths(paths []string) ([]Policy, error) {
	var all []Policy
	for _, path := range paths {
		policies, err := l.loadFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("loading policies from %s: %w", path, err)
		}
		all = append(all, policies...)
	}
	return all, nil
}

func (l *Loader) loadFromPath(path string) ([]Policy, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		p, err := l.loadFromFile(path)
		if err != nil {
			return nil, err
		}
		return []Policy{*p}, nil
	}

	var policies []Policy
	err = filepath.WalkDir(path, func(file string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(file, ".rego") {
			return nil
		}
		p, err := l.loadFromFile(file)
		if err != nil {
			return err
		}
		policies = append(policies, *p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return policies, nil
}

func (l *Loader) loadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := &Policy{
		Name:        strings.TrimSuffix(filepath.Base(path), ".rego"),
		Description: extractDescription(string(data)),
		Rego:        string(data),
		Severity:    SeverityError,
		Enabled:     true,
	}
	l.logger.Debug().Str("path", path).Str("policy", p.Name).Msg("policy loaded")
	return p, nil
}

// extractDescription takes the leading comment block of a Rego file.
func extractDescription(content string) string {
	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if trimmed != "" {
				break
			}
			continue
		}
		comment := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		if comment == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(comment)
	}
	return b.String()
}
