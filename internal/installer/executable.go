package installer

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// FindExecutable searches extracted relative paths for an executable whose
// base name matches the package name, allowing the platform executable
// suffix. Returns the relative path of the first match.
func FindExecutable(files []string, name string) (string, error) {
	for _, f := range files {
		base := filepath.Base(f)
		if runtime.GOOS == "windows" {
			base = strings.TrimSuffix(base, ".exe")
		}
		if base == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: no file named %q among %d extracted files", ErrExecutableNotFound, name, len(files))
}
