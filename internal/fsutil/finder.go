// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// FindFilesByExtension returns every file ending with extension found under
// the given paths. A path may name a directory, searched recursively, or a
// single file. Paths that do not exist are skipped. The result is sorted and
// free of duplicates.
func FindFilesByExtension(fsys afero.Fs, extension string, paths ...string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := fsys.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if !info.IsDir() {
			if strings.HasSuffix(info.Name(), extension) {
				add(root)
			}
			continue
		}
		err = afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.HasSuffix(info.Name(), extension) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)
	return files, nil
}
