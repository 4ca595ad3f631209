// Package prefs persists user interface preferences between sessions.
// Everything here is best-effort: a broken preferences file must never take
// the studio down.
package prefs

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"studio/internal/infra"
)

type orderFile struct {
	TransformationOrder []string `json:"transformationOrder"`
}

// FileStore keeps the transformation display order in a JSON file.
type FileStore struct {
	path   string
	logger *infra.Logger
}

// NewFileStore constructs a preference store writing to the given path.
func NewFileStore(path string, logger *infra.Logger) *FileStore {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &FileStore{path: path, logger: logger}
}

// LoadOrder reads the persisted ordering. The second return is false when no
// usable ordering exists, whether missing or corrupt.
func (s *FileStore) LoadOrder() ([]string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("prefs: read order failed")
		}
		return nil, false
	}
	var parsed orderFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("prefs: corrupt order file ignored")
		return nil, false
	}
	if len(parsed.TransformationOrder) == 0 {
		return nil, false
	}
	return parsed.TransformationOrder, true
}

// SaveOrder persists the ordering, creating parent directories as needed.
func (s *FileStore) SaveOrder(order []string) error {
	data, err := json.MarshalIndent(orderFile{TransformationOrder: order}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
