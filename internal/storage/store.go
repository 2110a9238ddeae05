package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/san-kum/chaoslab/internal/experiment"
)

type Store struct {
	baseDir string
	catalog *Catalog
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// WithCatalog indexes every saved run in c as well.
func (s *Store) WithCatalog(c *Catalog) *Store {
	s.catalog = c
	return s
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name,omitempty"`
	Kind      string             `json:"kind"`
	Map       string             `json:"map"`
	Timestamp time.Time          `json:"timestamp"`
	Params    []float64          `json:"params"`
	Init      []float64          `json:"init_state"`
	Transient int                `json:"transient"`
	Measure   int                `json:"measure"`
	Threshold float64            `json:"threshold"`
	Mode      string             `json:"mode,omitempty"`
	Columns   []string           `json:"columns"`
	Rows      int                `json:"rows"`
	Diverged  int                `json:"diverged"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Summary   map[string]float64 `json:"summary"`
}

// Save writes metadata.json and values.csv under a fresh run directory and
// returns the run id.
func (s *Store) Save(res *experiment.Result, transient, measure int, threshold float64, mode string) (string, error) {
	table, err := TableOf(res)
	if err != nil {
		return "", err
	}

	runID := fmt.Sprintf("%s_%s", res.Kind, xid.New().String())
	runDir := s.Dir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      res.Name,
		Kind:      res.Kind,
		Map:       res.Map,
		Timestamp: time.Now(),
		Params:    res.Params,
		Init:      res.Init,
		Transient: transient,
		Measure:   measure,
		Threshold: threshold,
		Mode:      mode,
		Columns:   table.Header,
		Rows:      len(table.Rows),
		Diverged:  countDiverged(table),
		Elapsed:   res.Elapsed,
		Summary:   summarize(res),
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeTable(filepath.Join(runDir, "values.csv"), table); err != nil {
		return "", err
	}

	if s.catalog != nil {
		if err := s.catalog.Insert(&meta, runDir); err != nil {
			return "", fmt.Errorf("failed to index run %s: %w", runID, err)
		}
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeTable(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return err
	}
	row := make([]string, len(t.Header))
	for _, r := range t.Rows {
		row = row[:len(r)]
		for i, v := range r {
			row[i] = formatValue(v)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func nan() float64 { return math.NaN() }

// countDiverged counts rows carrying NaN.
func countDiverged(t *Table) int {
	n := 0
	for _, r := range t.Rows {
		for _, v := range r {
			if math.IsNaN(v) {
				n++
				break
			}
		}
	}
	return n
}

func summarize(res *experiment.Result) map[string]float64 {
	out := make(map[string]float64)
	switch {
	case res.Exponents != nil:
		for i, v := range res.Exponents {
			// JSON has no encoding for NaN or Inf
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				out[fmt.Sprintf("lambda%d", i+1)] = v
			}
		}
	case res.Series != nil:
		if lo, hi, ok := finiteRange(res.Series.Channel(0)); ok {
			out["lambda1_min"], out["lambda1_max"] = lo, hi
		}
	case res.Grid != nil:
		if lo, hi, ok := res.Grid.Range(0); ok {
			out["lambda1_min"], out["lambda1_max"] = lo, hi
		}
	case res.Distances != nil:
		if !math.IsNaN(res.Rate) && !math.IsInf(res.Rate, 0) {
			out["rate"] = res.Rate
		}
	}
	return out
}

func finiteRange(v []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		lo, hi, ok = math.Min(lo, x), math.Max(hi, x), true
	}
	return lo, hi, ok
}

// List scans the run directories, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: bad metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadValues reads values.csv back. NaN and ±Inf round-trip.
func (s *Store) LoadValues(runID string) (*Table, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), "values.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	t := &Table{Header: records[0], Rows: make([][]float64, 0, len(records)-1)}
	for line, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: values.csv line %d: %w", runID, line+2, err)
			}
			row[j] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Delete removes a run directory and its catalog entry.
func (s *Store) Delete(runID string) error {
	if runID == "" || runID != filepath.Base(runID) || runID == "." || runID == ".." {
		return fmt.Errorf("invalid run id %q", runID)
	}
	if err := os.RemoveAll(s.Dir(runID)); err != nil {
		return err
	}
	if s.catalog != nil {
		return s.catalog.Delete(runID)
	}
	return nil
}
