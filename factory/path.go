package factory

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// IsRelativePath reports whether name is a path relative to the working
// directory, i.e. it starts with a "./" or "../" segment. Anything else is an
// absolute path, a file URL, or an opaque package-style name. A "../" later
// in the name, as in "pkg/../x", does not make it relative: such names are
// passed to the importer unchanged.
func IsRelativePath(name string) bool {
	return strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../")
}

// ToAbsoluteLoadTarget converts a relative name into a file URL rooted at the
// working directory. Other names are returned unchanged.
func ToAbsoluteLoadTarget(name string) (string, error) {
	if !IsRelativePath(name) {
		return name, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return fileURL(filepath.Join(wd, name)), nil
}

func fileURL(abs string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

// FilePath returns the filesystem path for a file URL or plain path target.
// ok is false for targets that are neither, such as package-style names with
// a scheme other than file.
func FilePath(target string) (path string, ok bool) {
	if !strings.HasPrefix(target, "file:") {
		if strings.Contains(target, "://") {
			return "", false
		}
		return target, true
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}
