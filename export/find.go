package export

import (
	"os"
	"path/filepath"
	"strings"
)

// findBookFile locates the first file in dir matching a configured book
// extension. Extensions are tried in precedence order; within one extension
// the first match in directory-listing order wins. Non-recursive.
func findBookFile(dir string, fileTypes []string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, ext := range fileTypes {
		suffix := "." + ext
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), suffix) {
				return filepath.Join(dir, entry.Name())
			}
		}
	}
	return ""
}

// findMetadata locates the first .opf metadata file in dir.
func findMetadata(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".opf") {
			return filepath.Join(dir, entry.Name())
		}
	}
	return ""
}

// findCover locates the book cover image, a literal cover.jpg.
func findCover(dir string) string {
	path := filepath.Join(dir, "cover.jpg")
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}
