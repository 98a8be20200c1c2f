package dataset

import "fmt"

// Error code constants for load failures, unified across all commands.
const (
	ErrCodeDirNotFound   = "E101" // dataset directory missing
	ErrCodeNoFiles       = "E102" // no CSV files under directory
	ErrCodeReadFailed    = "E103" // file unreadable or malformed CSV
	ErrCodeMissingColumn = "E104" // required column absent
	ErrCodeEmptyDataset  = "E105" // no valid rows survived loading
)

// LoadError reports a dataset that could not be loaded. Path is the
// directory or file involved, whichever is more specific.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
