package bench

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/idelchi/pcrypt/internal/fileutil"
)

const (
	jsonName = "benchmarks.json"
	csvName  = "benchmarks.csv"
)

// Store persists benchmark records under a results directory.
// JSON is the source of truth; the CSV is regenerated from it on every append.
type Store struct {
	Dir    string
	Logger *logrus.Logger

	mu sync.Mutex
}

// NewStore returns a store writing to dir.
func NewStore(dir string, logger *logrus.Logger) *Store {
	return &Store{Dir: dir, Logger: logger}
}

// JSONPath returns the path of the JSON results file.
func (s *Store) JSONPath() string {
	return filepath.Join(s.Dir, jsonName)
}

// CSVPath returns the path of the CSV results file.
func (s *Store) CSVPath() string {
	return filepath.Join(s.Dir, csvName)
}

// Load returns the saved records. A missing or unparsable file yields no records.
func (s *Store) Load() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *Store) load() ([]Record, error) {
	data, err := os.ReadFile(s.JSONPath())
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}

	var records []Record

	if err := json.Unmarshal(data, &records); err != nil {
		if s.Logger != nil {
			s.Logger.WithField("path", s.JSONPath()).WithError(err).Warn("discarding unreadable results")
		}

		return []Record{}, nil
	}

	if records == nil {
		records = []Record{}
	}

	return records, nil
}

// Append adds records to the saved results and rewrites both files atomically.
func (s *Store) Append(records ...Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return err
	}

	existing = append(existing, records...)

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}

	if err := fileutil.WriteAtomic(s.JSONPath(), data); err != nil {
		return err
	}

	table, err := encodeCSV(existing)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(s.CSVPath(), table)
}

func encodeCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer

	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("encoding csv header: %w", err)
	}

	for _, r := range records {
		if err := writer.Write(r.row()); err != nil {
			return nil, fmt.Errorf("encoding csv row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("encoding csv: %w", err)
	}

	return buf.Bytes(), nil
}
