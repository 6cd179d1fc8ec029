package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rocketviz/internal/config"
	"github.com/san-kum/rocketviz/internal/scene"
	"github.com/san-kum/rocketviz/internal/storage"
	"github.com/san-kum/rocketviz/internal/tick"
)

// Scenario is a scripted sequence of engine configurations, each driven
// through a scene and optionally recorded.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. Presets and params are
// layered over the base configuration in that order.
type ScenarioStep struct {
	Presets  []string    `yaml:"presets"`
	Params   tick.Params `yaml:"params"`
	Mode     string      `yaml:"mode"`
	Material string      `yaml:"material"`
	Ticks    int         `yaml:"ticks"`
	Frames   int         `yaml:"frames_per_tick"`
	SaveAs   string      `yaml:"save_as"`
}

// StepResult summarizes one scenario step after its last tick.
type StepResult struct {
	Step     int
	RunID    string
	Ticks    int
	Rebuilds int
	Live     int
	Last     *tick.Payload
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// StepConfig returns base with the step's edits applied and validated.
func StepConfig(base *config.Config, step ScenarioStep) (*config.Config, error) {
	cfg := *base
	for _, p := range step.Presets {
		group, preset, ok := strings.Cut(p, "/")
		if !ok || !cfg.Apply(group, preset) {
			return nil, fmt.Errorf("unknown preset: %s", p)
		}
	}
	if len(step.Params) > 0 {
		cfg.ApplyParams(step.Params)
	}
	if step.Mode != "" {
		cfg.Mode = step.Mode
	}
	if step.Material != "" {
		cfg.Material = step.Material
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RunScenario executes all steps in order. Each step gets a fresh scene fed
// by a chamber-pressure sweep; steps with SaveAs are written to st, which
// may be nil when nothing is saved.
func RunScenario(ctx context.Context, sc *Scenario, base *config.Config, st *storage.Store, log zerolog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		log.Info().Int("step", i+1).Int("of", len(sc.Steps)).Str("scenario", sc.Name).Msg("running step")

		res, err := runStep(ctx, base, step, st, log)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res.Step = i + 1
		results = append(results, res)
	}

	return results, nil
}

func runStep(ctx context.Context, base *config.Config, step ScenarioStep, st *storage.Store, log zerolog.Logger) (StepResult, error) {
	var res StepResult
	cfg, err := StepConfig(base, step)
	if err != nil {
		return res, err
	}
	if step.Ticks <= 0 {
		return res, fmt.Errorf("ticks must be positive, got %d", step.Ticks)
	}
	if step.SaveAs != "" && st == nil {
		return res, errors.New("save_as needs a store")
	}

	s, err := scene.New(cfg, log)
	if err != nil {
		return res, err
	}
	defer s.Close()

	d := scene.NewDriver(s, tick.NewSweep(cfg.Engine))
	rec := &storage.Recording{Name: step.SaveAs, Material: cfg.Material, TickRate: cfg.TickRate}
	dt := cfg.FrameInterval()
	for range step.Ticks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p, rebuilt, err := d.Pull()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		if rebuilt {
			res.Rebuilds++
		}
		for range step.Frames {
			if err := s.Frame(dt); err != nil {
				return res, err
			}
		}
		rec.Ticks = append(rec.Ticks, p)
		res.Last = p
	}
	res.Ticks = d.Ticks
	res.Live = s.Device().Live()

	if step.SaveAs != "" {
		if res.RunID, err = st.Save(rec); err != nil {
			return res, err
		}
	}
	return res, nil
}

// ParameterSweep synthesizes one tick per value of a single engine or
// cooling parameter.
type ParameterSweep struct {
	Param    string
	ParamMin float64
	ParamMax float64
	NumSteps int
}

// SweepResult holds the summaries of one swept value.
type SweepResult struct {
	ParamValue  float64
	Performance tick.Performance
	Structural  tick.Structural
	Warnings    []string
}

// RunSweep executes a parameter sweep against base.
func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg, err := StepConfig(base, ScenarioStep{Params: tick.Params{sweep.Param: paramVal}})
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, paramVal, err)
		}
		p, err := tick.Synthesize(cfg.Engine)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, paramVal, err)
		}
		results = append(results, SweepResult{
			ParamValue:  paramVal,
			Performance: p.Performance,
			Structural:  p.Structural,
			Warnings:    p.Warnings,
		})
	}

	return results, nil
}
