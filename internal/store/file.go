package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joshharrison/gantry/internal/timeline"
)

const peopleFile = "people.json"

// FileStore reads timelines laid out as <root>/<project>/<version>.json with
// an optional <root>/people.json directory.
type FileStore struct {
	Root string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Root: dir}
}

// Projects lists project directories in name order.
func (s *FileStore) Projects(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Versions lists a project's versions, oldest first.
func (s *FileStore) Versions(_ context.Context, project string) ([]string, error) {
	dir, err := s.projectDir(project)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("project %s: %w", project, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read project dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			out = append(out, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	SortVersions(out)
	return out, nil
}

// Timeline loads one version, or the latest when version is empty.
func (s *FileStore) Timeline(ctx context.Context, project, version string) (*Document, error) {
	if version == "" {
		vs, err := s.Versions(ctx, project)
		if err != nil {
			return nil, err
		}
		if version = Latest(vs); version == "" {
			return nil, fmt.Errorf("project %s has no versions: %w", project, ErrNotFound)
		}
	}

	dir, err := s.projectDir(project)
	if err != nil {
		return nil, err
	}
	if strings.ContainsAny(version, `/\`) {
		return nil, fmt.Errorf("version %q: %w", version, ErrNotFound)
	}
	data, err := os.ReadFile(filepath.Join(dir, version+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("project %s version %s: %w", project, version, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}

	tl, err := timeline.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("project %s version %s: %w", project, version, err)
	}
	return &Document{Project: project, Version: version, Timeline: tl}, nil
}

// Labels reads people.json. A missing file means no labels.
func (s *FileStore) Labels(_ context.Context) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(s.Root, peopleFile))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read person directory: %w", err)
	}
	return ParseLabels(data)
}

func (s *FileStore) projectDir(project string) (string, error) {
	if project == "" || project == "." || project == ".." || strings.ContainsAny(project, `/\`) {
		return "", fmt.Errorf("project %q: %w", project, ErrNotFound)
	}
	return filepath.Join(s.Root, project), nil
}
