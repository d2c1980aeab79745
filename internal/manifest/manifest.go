// Package manifest writes the sorted list of gallery file names.
package manifest

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// List returns the names of non-directory entries in dir ending in ext,
// symlinks included, sorted ascending. Both the extension match and the sort
// are case-sensitive, so "A.jpg" sorts before "a.jpg" and "b.JPG" is not listed.
func List(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ext) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Write replaces the file at path with one name per line.
func Write(path string, names []string) error {
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

// Generate lists dir and writes the result to path. It returns the names written.
func Generate(dir, ext, path string) ([]string, error) {
	names, err := List(dir, ext)
	if err != nil {
		return nil, err
	}
	if err := Write(path, names); err != nil {
		return nil, err
	}
	return names, nil
}
