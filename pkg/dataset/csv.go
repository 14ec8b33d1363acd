package dataset

import (
	"os"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

const fileMode = 0600

// WriteCSV exports rows to a CSV file with a header row.
func WriteCSV(path string, rows []Encounter) error {
	if path == "" {
		return errors.New("path required")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return errors.Wrapf(err, "failed to create CSV file: %s", path)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return errors.Wrapf(err, "failed to write CSV file: %s", path)
	}
	return nil
}

// ReadCSV imports encounters from a CSV file and validates every row.
func ReadCSV(path string) ([]Encounter, error) {
	if path == "" {
		return nil, errors.New("path required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file: %s", path)
	}
	defer f.Close()

	var rows []Encounter
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.Wrapf(err, "failed to parse CSV file: %s", path)
	}

	if err := ValidateAll(rows); err != nil {
		return nil, errors.Wrapf(err, "invalid data in CSV file: %s", path)
	}
	return rows, nil
}
