// Package tabular loads timeline rows from CSV files.
//
// A source is a file path or a doublestar glob ("data/**/*.csv"). Matched
// files are read in sorted path order and their rows concatenated. Rows may
// be ragged and every cell is trimmed.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoSources is returned when a source pattern matches no files.
var ErrNoSources = errors.New("no source files matched")

const utf8BOM = "\ufeff"

// Options controls how a source is read.
type Options struct {
	// Header skips the first row of every file.
	Header bool
}

// Source is the result of loading a pattern.
type Source struct {
	// Paths are the files read, in the order their rows appear.
	Paths []string
	// Rows are the data rows of all files, headers removed.
	Rows [][]string
}

// ResolvePaths expands pattern to the regular files it names, sorted.
// A pattern without glob characters must name an existing file.
func ResolvePaths(pattern string) ([]string, error) {
	if !containsGlob(pattern) {
		info, err := os.Stat(pattern)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrNoSources, pattern)
			}
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("path is a directory: %s", pattern)
		}
		return []string{pattern}, nil
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue // Skip paths that can't be stat'd
		}
		if info.Mode().IsRegular() {
			files = append(files, match)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSources, pattern)
	}

	sort.Strings(files)
	return files, nil
}

// Load reads every file matched by pattern.
func Load(pattern string, opts Options) (*Source, error) {
	paths, err := ResolvePaths(pattern)
	if err != nil {
		return nil, fmt.Errorf("resolve source %q: %w", pattern, err)
	}

	src := &Source{Paths: paths}
	for _, path := range paths {
		rows, err := ReadFile(path, opts)
		if err != nil {
			return nil, err
		}
		src.Rows = append(src.Rows, rows...)
	}
	return src, nil
}

// ReadFile reads one CSV file.
func ReadFile(path string, opts Options) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// Read parses CSV from r. Blank lines are skipped by the CSV reader and do
// not count as rows.
func Read(r io.Reader, opts Options) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	if opts.Header && len(records) > 0 {
		records = records[1:]
	}

	for _, record := range records {
		for i, cell := range record {
			record[i] = strings.TrimSpace(cell)
		}
	}
	return records, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
