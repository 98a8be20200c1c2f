package dataset

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover walks dir recursively and returns every .csv file path, sorted.
// Sorting makes load order, and therefore skip tallies and fingerprint
// input order, independent of filesystem iteration.
func Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeDirNotFound, Path: dir, Message: "dataset directory not found", Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDirNotFound, Path: dir, Message: fmt.Sprintf("error accessing dataset directory: %v", err), Err: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeDirNotFound, Path: dir, Message: "not a directory"}
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Path: dir, Message: fmt.Sprintf("error scanning directory: %v", err), Err: err}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Path: dir, Message: "no CSV files found"}
	}

	sort.Strings(files)
	return files, nil
}

// DetectSeparator sniffs the delimiter from the first line of a file.
// Publishers have shipped comma, pipe, and tab variants; the first
// candidate that splits the header into more than one field wins, with
// comma as the fallback.
func DetectSeparator(path string) (rune, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, err
		}
		return ',', nil
	}
	header := scanner.Text()

	for _, sep := range []rune{',', '|', '\t'} {
		if strings.Count(header, string(sep)) >= 1 {
			return sep, nil
		}
	}
	return ',', nil
}
