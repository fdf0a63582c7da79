package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/pgdyn/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string                        `json:"id"`
	Timestamp time.Time                     `json:"timestamp"`
	Variants  []string                      `json:"variants"`
	Columns   []string                      `json:"columns"`
	Params    map[string]float64            `json:"params"`
	Step      float64                       `json:"step"`
	Interval  float64                       `json:"interval"`
	MaxTime   float64                       `json:"max_time"`
	Rows      int                           `json:"rows"`
	Metrics   map[string]map[string]float64 `json:"metrics"`
}

// NewMetadata describes a finished comparison run.
func NewMetadata(cfg experiment.Config, result *experiment.Result) RunMetadata {
	return RunMetadata{
		Timestamp: time.Now(),
		Variants:  result.Names,
		Columns:   result.Columns,
		Params:    cfg.Params.Map(),
		Step:      cfg.Step,
		Interval:  cfg.Interval,
		MaxTime:   cfg.MaxTime,
		Rows:      len(result.Rows),
		Metrics:   result.Metrics,
	}
}

// Save writes metadata.json and states.csv into a fresh run directory and
// returns the run id.
func (s *Store) Save(meta RunMetadata, result *experiment.Result) (string, error) {
	meta.ID = fmt.Sprintf("compare_%d", time.Now().UnixNano())
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// WriteCSV writes a header of column names followed by one record per row.
func WriteCSV(out io.Writer, result *experiment.Result) error {
	w := csv.NewWriter(out)

	header := append([]string{"time"}, result.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range result.Rows {
		record := []string{strconv.FormatFloat(row.Time, 'g', -1, 64)}
		for _, state := range row.States {
			for _, val := range state {
				record = append(record, strconv.FormatFloat(val, 'g', -1, 64))
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// Series is a stored run read back column by column.
type Series struct {
	Columns []string
	Times   []float64
	// Values holds one slice per column, aligned with Times.
	Values [][]float64
}

// Column returns the values of a named column.
func (s *Series) Column(name string) ([]float64, error) {
	for i, c := range s.Columns {
		if c == name {
			return s.Values[i], nil
		}
	}
	return nil, fmt.Errorf("unknown column: %s", name)
}

func (s *Store) LoadStates(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

func ReadCSV(in io.Reader) (*Series, error) {
	r := csv.NewReader(in)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}

	header := records[0]
	series := &Series{
		Columns: header[1:],
		Times:   make([]float64, 0, len(records)-1),
		Values:  make([][]float64, len(header)-1),
	}

	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		series.Times = append(series.Times, t)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+1, header[j], err)
			}
			series.Values[j-1] = append(series.Values[j-1], val)
		}
	}

	return series, nil
}

type exportData struct {
	RunMetadata
	Times  []float64            `json:"times"`
	Series map[string][]float64 `json:"series"`
}

// ExportJSON writes a stored run, metadata and data, as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	data := exportData{
		RunMetadata: *meta,
		Times:       series.Times,
		Series:      make(map[string][]float64, len(series.Columns)),
	}
	for i, c := range series.Columns {
		data.Series[c] = series.Values[i]
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV copies the stored states.csv of a run to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(w, file)
	return err
}
