package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// rootIndicators mark a project root, checked in order at each level.
var rootIndicators = []string{".gardenplanner.yaml", ".git", "package.json"}

// FindRoot walks upwards from startDir looking for a project root indicator
// and returns the absolute path of the first directory that has one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, name := range rootIndicators {
			if hasFile(dir, name) {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("project root not found above %s", abs)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
