package workload

import (
	"fmt"

	yaml "github.com/goccy/go-yaml"

	"mlqsched/internal/sched"
)

// document mirrors a YAML workload file.
type document struct {
	Run       *sched.Config  `yaml:"run"`
	Levels    []levelEntry   `yaml:"levels"`
	Processes []processEntry `yaml:"processes"`
}

type levelEntry struct {
	Strategy string `yaml:"strategy"` // rr (by default)
	Quantum  int    `yaml:"quantum"`  // 0 (by default)
}

type processEntry struct {
	Name      string `yaml:"name"`
	Arrival   int    `yaml:"arrival"`
	Execution int    `yaml:"execution"`
	Level     int    `yaml:"level"` // 1 (by default)
}

// ParseYAML reads a YAML workload. The file as a whole must be valid YAML
// with known keys; individual levels and processes that fail validation
// are skipped with a diagnostic. The result holds exactly one run.
func ParseYAML(data []byte, source string) (*Workload, error) {
	var doc document
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", sched.ErrConfiguration, source, yaml.FormatError(err, false, true))
	}

	b := newBuilder(source)
	if err := b.defineQueues(len(doc.Levels)); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	for i, l := range doc.Levels {
		if l.Strategy == "" {
			l.Strategy = "rr"
		}
		if err := b.setQuantum(i+1, l.Quantum); err != nil {
			b.warn(i+1, err)
		}
		if err := b.setStrategy(i+1, l.Strategy); err != nil {
			b.warn(i+1, err)
		}
	}
	for i, p := range doc.Processes {
		if p.Level == 0 {
			p.Level = 1
		}
		if err := b.addProcess(p.Name, p.Arrival, p.Execution, p.Level); err != nil {
			b.warn(i+1, err)
		}
	}
	b.start()

	w := b.workload()
	if doc.Run != nil {
		w.Config = *doc.Run
		w.Config.Normalize()
	}
	return w, nil
}
