package tenant

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileSource loads tenant fixture JSON files from a local directory, one
// file per tenant named "<id>.json". This is the default backend used in
// local development and in the demo fixtures shipped with the repository.
type FileSource struct {
	Dir string
}

// NewFileSource constructs a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) Load(_ context.Context, id string) ([]byte, error) {
	path := filepath.Join(s.Dir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tenant file source: read %s: %w", path, err)
	}
	return data, nil
}

func (s *FileSource) ListIDs(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("tenant file source: read dir %s: %w", s.Dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
