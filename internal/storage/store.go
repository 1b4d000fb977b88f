package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/odeflow/internal/solve"
)

// Store persists integration runs as directories under a base path,
// each holding metadata.json and solution.csv.
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
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Method      string    `json:"method"`
	Rtol        float64   `json:"rtol"`
	Atol        float64   `json:"atol"`
	T0          float64   `json:"t0"`
	TEnd        float64   `json:"t_end"`
	Accepted    int       `json:"steps_accepted"`
	Rejected    int       `json:"steps_rejected"`
	Evaluations int       `json:"evaluations"`
}

func (s *Store) Save(method string, rtol, atol float64, result *solve.Result) (string, error) {
	if len(result.Times) == 0 {
		return "", fmt.Errorf("empty result")
	}

	runID := fmt.Sprintf("%s_%d", method, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   time.Now(),
		Method:      method,
		Rtol:        rtol,
		Atol:        atol,
		T0:          result.Times[0],
		TEnd:        result.Times[len(result.Times)-1],
		Accepted:    result.Stats.Accepted,
		Rejected:    result.Stats.Rejected,
		Evaluations: result.Stats.Evaluations,
	}

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

	csvFile, err := os.Create(filepath.Join(runDir, "solution.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for i := range result.States[0] {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range result.Times {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(result.Times[i], 'g', 12, 64))
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'g', 12, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "solution.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		state := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}

		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}
