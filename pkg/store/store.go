// Package store persists the last-known remote responses on disk so the
// dashboard can paint before its first fetch and keep rendering when the
// service is unreachable.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// widgetKeyPrefix matches widget.Widget.Key(); payload files live in
// their own bucket so catalog keys stay at the root.
const widgetKeyPrefix = "widget:"

// ErrNotFound is returned when no snapshot exists for a key.
var ErrNotFound = errors.New("store: not found")

// Store is a diskv-backed snapshot of cache keys. Values are the raw
// JSON last returned by the service for that key.
type Store struct {
	d        *diskv.Diskv
	basePath string
}

// Open creates or reopens the snapshot store at basePath.
func Open(basePath string) (*Store, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("store: base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}, nil
}

// WriteJSON marshals v and stores it under key.
func (s *Store) WriteJSON(key string, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return s.WriteRaw(key, buf)
}

// WriteRaw stores an already-encoded payload under key.
func (s *Store) WriteRaw(key string, raw []byte) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("store: key required")
	}
	if err := s.d.Write(key, raw); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

// ReadJSON loads the snapshot for key into out.
func (s *Store) ReadJSON(key string, out any) error {
	raw, err := s.ReadRaw(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

// ReadRaw loads the raw snapshot bytes for key.
func (s *Store) ReadRaw(key string) (json.RawMessage, error) {
	raw, err := s.d.Read(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return raw, nil
}

// Has reports whether a snapshot exists for key.
func (s *Store) Has(key string) bool {
	return s.d.Has(key)
}

// Delete removes the snapshot for key, ignoring missing entries.
func (s *Store) Delete(key string) error {
	if err := s.d.Erase(key); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

// keyToPathTransform buckets per-widget payloads under a widget/
// directory and keeps catalog keys at the root.
func keyToPathTransform(key string) *diskv.PathKey {
	if rest, ok := strings.CutPrefix(key, widgetKeyPrefix); ok {
		return &diskv.PathKey{Path: []string{"widget"}, FileName: rest}
	}
	return &diskv.PathKey{FileName: key}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	if len(pk.Path) == 1 && pk.Path[0] == "widget" {
		return widgetKeyPrefix + pk.FileName
	}
	return pk.FileName
}
