package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/frontship/frontship/internal/framework"
)

// Record is one file of the build output, ready to upload. Records live for
// a single deployment: scan, classify, upload, discard.
type Record struct {
	Key  string
	Body []byte
	Classification
}

// Scan walks the public directory and produces one record per regular file.
// Directories and symlinks are skipped; keys are forward-slash separated
// regardless of platform.
func Scan(profile *framework.Profile, publicDir string) ([]Record, error) {
	var records []Record
	err := filepath.WalkDir(publicDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		body, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read asset %s: %w", p, err)
		}
		rel, err := filepath.Rel(publicDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		records = append(records, Record{
			Key:            key,
			Body:           body,
			Classification: Classify(profile, key, body),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", publicDir, err)
	}
	return records, nil
}

// Entry is one immediate child of the public directory; the topology builder
// turns each into a path-scoped cache routing rule.
type Entry struct {
	Name  string
	IsDir bool
}

// TopLevelEntries lists the immediate children of the public directory in
// lexical order.
func TopLevelEntries(publicDir string) ([]Entry, error) {
	dirents, err := os.ReadDir(publicDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", publicDir, err)
	}
	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		entries = append(entries, Entry{Name: d.Name(), IsDir: d.IsDir()})
	}
	return entries, nil
}
