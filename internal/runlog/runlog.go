// Package runlog records what a report run read and wrote.
package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/ontime-kpi/internal/utils"
	"github.com/google/uuid"
)

const manifestFileName = "run.json"

// Input describes one loaded source file.
type Input struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// Output describes one written summary file.
type Output struct {
	File string `json:"file"`
	Rows int    `json:"rows"`
}

// Manifest is persisted as run.json next to the summaries of a run.
type Manifest struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Inputs         []Input   `json:"inputs"`
	MergedRows     int       `json:"merged_rows"`
	CleanRows      int       `json:"clean_rows"`
	Columns        []string  `json:"columns"`
	DroppedColumns []string  `json:"dropped_columns"`
	DuplicateRows  int       `json:"duplicate_rows"`
	DuplicateIDs   int       `json:"duplicate_ids"`
	WeightMethod   string    `json:"weight_method,omitempty"`
	OverallRate    *float64  `json:"overall_rate"`
	Outputs        []Output  `json:"outputs"`
}

// New starts a manifest with a fresh run id.
func New() *Manifest {
	return &Manifest{
		ID:             uuid.NewString(),
		StartedAt:      time.Now(),
		DroppedColumns: []string{},
		Outputs:        []Output{},
	}
}

// AddInput records a loaded file.
func (m *Manifest) AddInput(path string, rows, cols int) {
	m.Inputs = append(m.Inputs, Input{Path: path, Rows: rows, Cols: cols})
}

// AddOutput records a written file.
func (m *Manifest) AddOutput(file string, rows int) {
	m.Outputs = append(m.Outputs, Output{File: file, Rows: rows})
}

// SetOverallRate records the overall on-time rate.
func (m *Manifest) SetOverallRate(r float64) { m.OverallRate = &r }

// Save stamps FinishedAt and writes run.json into dir using an atomic write.
func (m *Manifest) Save(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("output directory not set")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("ensure dir: %w", err)
	}
	m.FinishedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, manifestFileName)
	return path, utils.SafeWriteFile(path, data)
}

// Load reads run.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
