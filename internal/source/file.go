// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// FileSource reads publication lists previously dumped to disk, one file per
// author: Dir/[author-id].json, .yaml or .yml.
type FileSource struct {
	Dir string
}

// Name returns the backend identifier.
func (s *FileSource) Name() string { return "file" }

// Fetch reads the author's dump. A missing file or an id that cannot name
// one is ErrAuthorNotFound; an unreadable or unparsable file, or a done
// context, is ErrSourceUnavailable.
func (s *FileSource) Fetch(ctx context.Context, authorID string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if authorID == "" || strings.ContainsAny(authorID, `/\`) || strings.HasPrefix(authorID, ".") {
		return nil, fmt.Errorf("%w: invalid author id %q", ErrAuthorNotFound, authorID)
	}

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(s.Dir, authorID+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrSourceUnavailable, path, err)
		}

		var res Result
		if ext == ".json" {
			err = json.Unmarshal(data, &res)
		} else {
			err = yaml.Unmarshal(data, &res)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", ErrSourceUnavailable, path, err)
		}
		if res.Author.ID == "" {
			res.Author.ID = authorID
		}
		res.Author.Source = s.Name()
		return &res, nil
	}
	return nil, fmt.Errorf("%s in %s: %w", authorID, s.Dir, ErrAuthorNotFound)
}
