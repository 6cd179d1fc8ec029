package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/rocketviz/internal/station"
	"github.com/san-kum/rocketviz/internal/tick"
)

var ErrEmptyRecording = errors.New("storage: recording has no ticks")

const (
	metadataFile = "metadata.json"
	stationsFile = "stations.csv"
	payloadFile  = "payload.json"
)

// stationColumns is the CSV header, in Stations field order plus coolant.
var stationColumns = []string{
	"x", "r_inner", "r_outer", "mach", "pressure_Pa", "temperature_K",
	"velocity_m_s", "wall_temp_inner_K", "von_mises_stress_MPa", "T_coolant_K",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Recording is a sequence of solver ticks captured for replay.
type Recording struct {
	Name     string
	Material string
	TickRate float64
	Ticks    []*tick.Payload
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Material  string    `json:"material"`
	TickRate  float64   `json:"tick_rate"`
	Ticks     int       `json:"ticks"`
	Stations  int       `json:"stations"`
	Orifices  int       `json:"orifices"`

	Performance tick.Performance `json:"performance"`
	Structural  tick.Structural  `json:"structural_summary"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// Save writes the recording under a new run directory and returns its ID.
// Summary fields and stations.csv describe the last tick.
func (s *Store) Save(rec *Recording) (string, error) {
	if len(rec.Ticks) == 0 {
		return "", ErrEmptyRecording
	}
	last := rec.Ticks[len(rec.Ticks)-1]

	runID, runDir, err := s.newRunDir(rec.Name)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        rec.Name,
		Timestamp:   time.Now(),
		Material:    rec.Material,
		TickRate:    rec.TickRate,
		Ticks:       len(rec.Ticks),
		Stations:    last.Stations.Len(),
		Orifices:    len(last.Orifices),
		Performance: last.Performance,
		Structural:  last.Structural,
		Warnings:    last.Warnings,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, payloadFile), rec.Ticks); err != nil {
		return "", err
	}
	if err := writeStations(filepath.Join(runDir, stationsFile), last); err != nil {
		return "", err
	}
	return runID, nil
}

// newRunDir creates a fresh run directory, suffixing the ID when another
// run was saved in the same second.
func (s *Store) newRunDir(name string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	if name == "" {
		name = "run"
	}
	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runID := base
	for i := 1; ; i++ {
		dir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s-%d", base, i)
	}
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

func writeStations(path string, p *tick.Payload) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(stationColumns); err != nil {
		return err
	}
	cols := columns(p)
	for i := 0; i < p.Stations.Len(); i++ {
		row := make([]string, len(cols))
		for j, c := range cols {
			if i < len(c) {
				row[j] = strconv.FormatFloat(c[i], 'g', -1, 64)
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func columns(p *tick.Payload) []station.Array {
	s := p.Stations
	return []station.Array{
		s.X, s.RInner, s.ROuter, s.Mach, s.Pressure, s.Temperature,
		s.Velocity, s.WallTemp, s.VonMises, p.CoolantTemp(),
	}
}

// List returns every readable run, oldest first.
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
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

// LoadTicks reads back every recorded tick in order.
func (s *Store) LoadTicks(runID string) ([]*tick.Payload, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, payloadFile))
	if err != nil {
		return nil, err
	}
	var ticks []*tick.Payload
	if err := json.Unmarshal(data, &ticks); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	if len(ticks) == 0 {
		return nil, ErrEmptyRecording
	}
	return ticks, nil
}

// LoadStations reads the station table of the last tick. Columns that were
// empty come back as nil arrays.
func (s *Store) LoadStations(runID string) (tick.Stations, station.Array, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, stationsFile))
	if err != nil {
		return tick.Stations{}, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return tick.Stations{}, nil, err
	}
	if len(records) < 2 {
		return tick.Stations{}, nil, nil
	}

	cols := make([]station.Array, len(stationColumns))
	for _, record := range records[1:] {
		for j := range cols {
			if j >= len(record) || record[j] == "" {
				continue
			}
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return tick.Stations{}, nil, fmt.Errorf("storage: %s column %s: %w", runID, stationColumns[j], err)
			}
			cols[j] = append(cols[j], v)
		}
	}

	st := tick.Stations{
		X: cols[0], RInner: cols[1], ROuter: cols[2], Mach: cols[3], Pressure: cols[4],
		Temperature: cols[5], Velocity: cols[6], WallTemp: cols[7], VonMises: cols[8],
	}
	return st, cols[9], nil
}
