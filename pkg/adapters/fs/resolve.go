package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/machsheltie/gardenplanner/pkg/core"
)

// Resolve expands a glob pattern such as "varieties/**/planting-calendar*.html"
// to the most recently modified matching file. Paths without glob
// metacharacters are returned unchanged.
func (s *Store) Resolve(ctx context.Context, pattern string) (string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return pattern, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	abs, err := s.Abs(pattern)
	if err != nil {
		return "", err
	}
	matches, err := doublestar.FilepathGlob(abs, doublestar.WithFilesOnly())
	if err != nil {
		return "", err
	}

	var (
		best    string
		bestMod int64
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		mod := info.ModTime().UnixNano()
		if best == "" || mod > bestMod || (mod == bestMod && m > best) {
			best, bestMod = m, mod
		}
	}
	if best == "" {
		return "", &core.FileNotFoundError{Path: filepath.Clean(abs)}
	}

	s.config.Logger.Debug("pattern resolved", "pattern", pattern, "path", best, "candidates", len(matches))
	return best, nil
}
