// Package lesson defines practice plans: which targets a flow covers, how
// turns are triggered, and where the analysis backend lives.
package lesson

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fretcoach/fretcoach/pkg/core/session"
	"github.com/fretcoach/fretcoach/pkg/core/types"
)

// Plan describes one practice flow. Built-in plans cover the stock lessons;
// custom plans load from YAML.
type Plan struct {
	// Name is the plan identifier used on the command line.
	Name string `yaml:"name"`

	// Kind selects the engine flow.
	Kind types.LessonKind `yaml:"kind"`

	// Description is shown in the lesson listing.
	Description string `yaml:"description,omitempty"`

	// Targets lists what the lesson covers, in teaching order. Informational:
	// the backend owns target selection during the session.
	Targets []string `yaml:"targets"`

	// BootstrapSentinel is the placeholder target for the intro call.
	BootstrapSentinel string `yaml:"bootstrap_sentinel"`

	// CheckPath is the analysis endpoint path, e.g. "/tuner/check".
	CheckPath string `yaml:"check_path"`

	// DeletePath is the optional prompt cleanup endpoint. Empty disables
	// post-playback deletion.
	DeletePath string `yaml:"delete_path,omitempty"`

	// AutoRecord chains recording automatically after each prompt instead of
	// waiting for a tap.
	AutoRecord bool `yaml:"auto_record,omitempty"`

	// RecordSeconds overrides the per-turn clip length. Zero uses the engine
	// default.
	RecordSeconds int `yaml:"record_seconds,omitempty"`

	// Frequencies maps targets to their reference pitch in Hz, shown next to
	// the tuning deviation. Informational.
	Frequencies map[string]float64 `yaml:"frequencies,omitempty"`
}

// Validate checks the plan is complete enough to run.
func (p Plan) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("lesson plan: name is required")
	}
	switch p.Kind {
	case types.KindTuner, types.KindChordLesson, types.KindNoteLesson:
	default:
		return fmt.Errorf("lesson plan %q: unknown kind %q", p.Name, p.Kind)
	}
	if p.BootstrapSentinel == "" {
		return fmt.Errorf("lesson plan %q: bootstrap_sentinel is required", p.Name)
	}
	if !strings.HasPrefix(p.CheckPath, "/") {
		return fmt.Errorf("lesson plan %q: check_path must start with /", p.Name)
	}
	return nil
}

// SessionConfig converts the plan into engine configuration.
func (p Plan) SessionConfig() session.Config {
	return session.Config{
		Kind:              p.Kind,
		BootstrapSentinel: p.BootstrapSentinel,
		RecordDuration:    time.Duration(p.RecordSeconds) * time.Second,
		AutoRecord:        p.AutoRecord,
		DeleteIntroPrompt: p.DeletePath != "",
		TotalTargets:      len(p.Targets),
	}
}

// Builtin returns the stock plans, keyed by name.
func Builtin() map[string]Plan {
	plans := []Plan{
		{
			Name:              "tuner",
			Kind:              types.KindTuner,
			Description:       "Tune each string from low E to high E, guided by voice.",
			Targets:           []string{"6", "5", "4", "3", "2", "1"},
			BootstrapSentinel: "0",
			CheckPath:         "/tuner/check",
			DeletePath:        "/tuner/delete",
			RecordSeconds:     4,
			// Standard tuning reference pitches, low E to high E.
			Frequencies: map[string]float64{
				"6": 82.41, "5": 110.00, "4": 146.83,
				"3": 196.00, "2": 246.94, "1": 329.63,
			},
		},
		{
			Name:              "single-note",
			Kind:              types.KindNoteLesson,
			Description:       "Play each natural note on the open strings and first frets.",
			Targets:           []string{"E", "F", "G", "A", "B", "C", "D"},
			BootstrapSentinel: "AA",
			CheckPath:         "/note/check",
			AutoRecord:        true,
			RecordSeconds:     4,
		},
		{
			Name:              "open-chords",
			Kind:              types.KindChordLesson,
			Description:       "Practice the C, G and D open chords, whole strum then string by string.",
			Targets:           []string{"C", "G", "D"},
			BootstrapSentinel: "0",
			CheckPath:         "/chord/check",
			DeletePath:        "/chord/delete",
			RecordSeconds:     4,
		},
	}

	out := make(map[string]Plan, len(plans))
	for _, p := range plans {
		out[p.Name] = p
	}
	return out
}

// Decode reads one plan from YAML.
func Decode(r io.Reader) (Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Plan{}, fmt.Errorf("decode lesson plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// LoadFile reads a plan from a YAML file.
func LoadFile(path string) (Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return Plan{}, fmt.Errorf("open lesson plan: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
