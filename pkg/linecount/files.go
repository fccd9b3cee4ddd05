package linecount

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExt is the extension FindFiles matches when none is given.
const DefaultExt = ".txt"

// FindFiles lists the regular files directly inside dir whose name ends in
// ext, sorted by path. Symlinks to regular files are included;
// subdirectories are not descended into.
func FindFiles(dir, ext string) ([]string, error) {
	if ext == "" {
		ext = DefaultExt
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if len(name) <= len(ext) || !strings.HasSuffix(name, ext) {
			continue
		}
		path := filepath.Join(dir, name)
		if !isRegular(path, e) {
			continue
		}
		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}

// isRegular reports whether e is a regular file, following symlinks.
// Dangling links are skipped.
func isRegular(path string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DefaultInputs returns test_file_1.txt through test_file_n.txt, the inputs
// used when nothing else is specified.
func DefaultInputs(n int) []string {
	files := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		files = append(files, fmt.Sprintf("test_file_%d.txt", i))
	}
	return files
}
