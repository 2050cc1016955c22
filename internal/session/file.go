package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileBackend keeps the session in a YAML file readable only by its owner.
type FileBackend struct {
	Path string
}

func (b FileBackend) Load(_ context.Context) (*Session, error) {
	data, err := os.ReadFile(b.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", b.Path, err)
	}
	if s.Token == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (b FileBackend) Save(_ context.Context, s *Session) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	tmp := b.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tmp, b.Path)
}

func (b FileBackend) Delete(_ context.Context) error {
	err := os.Remove(b.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
