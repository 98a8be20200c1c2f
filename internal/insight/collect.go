package insight

import (
	"errors"
	"log/slog"

	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/table"
)

// Source names one dataset folder to profile.
type Source struct {
	Name string
	Dir  string
}

// Collect profiles each source in order. A missing folder is skipped so a
// partial drop still yields a report; a folder with no CSV files produces
// an empty profile. Other load failures abort.
func Collect(sources []Source, logger *slog.Logger) ([]DatasetProfile, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var profiles []DatasetProfile
	for _, src := range sources {
		tab, err := table.Load(src.Dir, logger)
		if err != nil {
			var loadErr *dataset.LoadError
			if errors.As(err, &loadErr) {
				switch loadErr.Code {
				case dataset.ErrCodeDirNotFound:
					logger.Debug("dataset folder absent, skipping", "dataset", src.Name, "dir", src.Dir)
					continue
				case dataset.ErrCodeNoFiles:
					logger.Debug("dataset folder has no files", "dataset", src.Name, "dir", src.Dir)
					profiles = append(profiles, Profile(src.Name, &table.Table{}))
					continue
				}
			}
			return nil, err
		}
		profiles = append(profiles, Profile(src.Name, tab))
	}
	return profiles, nil
}
