package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidTemplateName = errors.New("invalid template name")
	ErrTemplateNotFound    = errors.New("template not found")
)

// Templates resolves template names to files in Dir.
type Templates struct {
	Dir       string
	Extension string
}

// Resolve maps name to <Dir>/<name><Extension>. Empty names and names
// containing ".." are rejected; nested names like "mail/welcome" are fine.
func (t Templates) Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidTemplateName)
	}
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q contains \"..\"", ErrInvalidTemplateName, name)
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidTemplateName, name)
	}
	ext := t.Extension
	if ext == "" {
		ext = DefaultTemplateExt
	}
	dir := t.Dir
	if dir == "" {
		dir = DefaultTemplateDir
	}
	return filepath.Join(dir, filepath.FromSlash(name)+ext), nil
}

// Open resolves name and reads the template.
func (t Templates) Open(name string) (string, []byte, error) {
	path, err := t.Resolve(name)
	if err != nil {
		return "", nil, err
	}
	// #nosec G304 -- path is confined to the template directory by Resolve
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return path, nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return path, nil, fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return path, content, nil
}
