// Package storage records simulation runs on disk. Each run is a directory
// holding metadata.json and states.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/metrics"
	"github.com/LemoMew/FractalPendulum/internal/physics"
	"github.com/LemoMew/FractalPendulum/internal/sim"
)

var stateColumns = []string{"time", "theta1", "omega1", "theta2", "omega2", "theta3", "omega3", "kinetic", "potential", "total"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Name      string
	Seed      int64
	Constants physics.Constants
	Step      sim.StepConfig
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Masses      [3]float64         `json:"masses"`
	Lengths     [3]float64         `json:"lengths"`
	Gravity     float64            `json:"gravity"`
	Dt          float64            `json:"dt"`
	H           float64            `json:"h"`
	AbsTol      float64            `json:"abs_tol"`
	RelTol      float64            `json:"rel_tol"`
	MaxSubsteps int                `json:"max_substeps"`
	Frames      int                `json:"frames"`
	Duration    float64            `json:"duration"`
	Diverged    string             `json:"diverged,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

func (m *RunMetadata) Constants() physics.Constants {
	return physics.Constants{Masses: m.Masses, Lengths: m.Lengths, Gravity: m.Gravity}
}

func newMetadata(id string, info RunInfo, result *sim.Result, runErr error) RunMetadata {
	meta := RunMetadata{
		ID:          id,
		Name:        info.Name,
		Timestamp:   time.Now(),
		Seed:        info.Seed,
		Masses:      info.Constants.Masses,
		Lengths:     info.Constants.Lengths,
		Gravity:     info.Constants.Gravity,
		Dt:          info.Step.Dt,
		H:           info.Step.H,
		AbsTol:      info.Step.AbsTol,
		RelTol:      info.Step.RelTol,
		MaxSubsteps: info.Step.MaxSubsteps,
		Frames:      result.StepsTaken,
		Metrics:     result.Metrics,
	}
	if n := len(result.Times); n > 0 {
		meta.Duration = result.Times[n-1] - result.Times[0]
	}
	if runErr != nil {
		meta.Diverged = runErr.Error()
	}
	return meta
}

// Save writes a run. runErr is the error the run stopped with, if any; the
// partial result is still recorded.
func (s *Store) Save(info RunInfo, result *sim.Result, runErr error) (string, error) {
	name := info.Name
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := newMetadata(runID, info, result, runErr)

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := writeStates(csvFile, result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeStates(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stateColumns); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	row := make([]string, len(stateColumns))
	for i, x := range result.States {
		if len(x) != physics.StateDim || i >= len(result.Times) {
			continue
		}
		row[0] = format(result.Times[i])
		for j, v := range x {
			row[j+1] = format(v)
		}
		var e metrics.EnergySample
		if i < len(result.Energies) {
			e = result.Energies[i]
		}
		row[7], row[8], row[9] = format(e.Kinetic), format(e.Potential), format(e.Total)

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// List returns all readable runs, newest first.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadResult reads the recorded states back into a result. Malformed rows
// are skipped.
func (s *Store) LoadResult(runID string) (*sim.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
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

	result := &sim.Result{Metrics: make(map[string]float64)}
	if len(records) == 0 {
		return result, nil
	}

	for _, record := range records[1:] {
		if len(record) != len(stateColumns) {
			continue
		}
		values, ok := parseRow(record)
		if !ok {
			continue
		}
		result.Times = append(result.Times, values[0])
		result.States = append(result.States, dynamo.State(values[1:7]))
		result.Energies = append(result.Energies, metrics.EnergySample{
			Kinetic:   values[7],
			Potential: values[8],
			Total:     values[9],
		})
	}
	if n := len(result.States); n > 0 {
		result.StepsTaken = n - 1
	}

	if meta, err := s.Load(runID); err == nil {
		for k, v := range meta.Metrics {
			result.Metrics[k] = v
		}
	}
	return result, nil
}

func parseRow(record []string) ([]float64, bool) {
	values := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// ErrNoRuns is returned by Latest on an empty store.
var ErrNoRuns = errors.New("storage: no recorded runs")

func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return &runs[0], nil
}
