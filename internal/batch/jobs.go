package batch

import (
	"fmt"
	"path/filepath"

	"shadow-studio/internal/config"
	"shadow-studio/internal/placement"
	"shadow-studio/internal/session"
	"shadow-studio/internal/shadow"
)

// Job is one render described by a job manifest. Nil and empty fields fall
// back to the run defaults.
type Job struct {
	Name       string             `json:"name" yaml:"name"`
	Foreground string             `json:"foreground" yaml:"foreground"`
	Background string             `json:"background" yaml:"background"`
	Depth      string             `json:"depth" yaml:"depth"`
	Preset     string             `json:"preset" yaml:"preset"`
	X          *int               `json:"x" yaml:"x"`
	Y          *int               `json:"y" yaml:"y"`
	Light      *shadow.Light      `json:"light" yaml:"light"`
	Shadow     *shadow.Appearance `json:"shadow" yaml:"shadow"`
	Options    *shadow.Options    `json:"options" yaml:"options"`
}

type jobFile struct {
	Jobs []Job `json:"jobs" yaml:"jobs"`
}

// LoadJobs reads a JSON or YAML job manifest ({"jobs": [...]}). Relative
// image paths are resolved against the manifest's directory and unnamed
// jobs are numbered.
func LoadJobs(path string) ([]Job, error) {
	var f jobFile
	if err := config.DecodeFile(path, &f); err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	seen := make(map[string]bool, len(f.Jobs))
	for i := range f.Jobs {
		j := &f.Jobs[i]
		if j.Name == "" {
			j.Name = fmt.Sprintf("job-%03d", i+1)
		}
		if j.Name != filepath.Base(j.Name) || j.Name == "." || j.Name == ".." {
			return nil, fmt.Errorf("batch: %s: job name %q must be a plain file name", path, j.Name)
		}
		if seen[j.Name] {
			return nil, fmt.Errorf("batch: %s: duplicate job name %q", path, j.Name)
		}
		seen[j.Name] = true

		if j.Foreground == "" || j.Background == "" {
			return nil, fmt.Errorf("batch: %s: job %q needs foreground and background", path, j.Name)
		}
		j.Foreground = resolvePath(base, j.Foreground)
		j.Background = resolvePath(base, j.Background)
		j.Depth = resolvePath(base, j.Depth)
	}
	return f.Jobs, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// params merges the job's overrides into the run defaults.
func (j Job) params(defaults session.Params) (session.Params, error) {
	p := defaults
	if j.Preset != "" {
		preset, err := placement.ParsePreset(j.Preset)
		if err != nil {
			return p, err
		}
		p.Preset = preset
	}
	if j.X != nil || j.Y != nil {
		p.Preset = ""
		if j.X != nil {
			p.Position.X = *j.X
		}
		if j.Y != nil {
			p.Position.Y = *j.Y
		}
	}
	if j.Light != nil {
		p.Light = *j.Light
	}
	if j.Shadow != nil {
		p.Shadow = *j.Shadow
	}
	if j.Options != nil {
		p.Options = *j.Options
	}
	if err := p.Light.Validate(); err != nil {
		return p, err
	}
	if err := p.Shadow.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
