// Package workload turns configuration files into validated processes and
// priority levels ready for the scheduling engine.
//
// Two formats are understood. The directive format is line oriented:
//
//	# comment
//	define queues 2
//	define scheduling 1 rr
//	define quantum 1 3
//	define scheduling 2 fifo
//	process A 0 5 1
//	process B 1 3 2
//	start
//	exit
//
// Files ending in .yml or .yaml are read as YAML with the same content.
// Malformed lines or entries are skipped and reported as diagnostics; the
// rest of the file still loads.
package workload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"mlqsched/internal/sched"
)

// Run is one simulation request: the levels and processes defined when a
// start directive was read.
type Run struct {
	Levels    []sched.Policy
	Processes []*sched.Process
}

// NewLevels builds fresh engine levels for the run.
func (r Run) NewLevels() []*sched.Level {
	return sched.NewLevels(r.Levels...)
}

// Workload is everything loaded from one configuration source.
type Workload struct {
	Source      string
	Runs        []Run
	Config      sched.Config
	Diagnostics []Diagnostic
}

// Diagnostic describes a skipped line or entry.
type Diagnostic struct {
	Source string
	Line   int // 1-based line or entry number
	Err    error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d: %v", d.Source, d.Line, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Load reads a configuration file. An empty path or "-" reads the
// directive format from standard input.
func Load(path string) (*Workload, error) {
	if path == "" || path == "-" {
		return Parse(os.Stdin, "stdin")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if IsYAML(path) {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		return ParseYAML(data, path)
	}
	return Parse(f, path)
}

// IsYAML reports whether path names a YAML workload.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}

// builder accumulates definitions the way the directive file issues them.
type builder struct {
	source      string
	policies    []sched.Policy
	quanta      []int // as defined, applied when a level becomes RR
	processes   []*sched.Process
	names       map[string]bool
	pid         int
	runs        []Run
	diagnostics []Diagnostic
}

func newBuilder(source string) *builder {
	return &builder{source: source, names: make(map[string]bool)}
}

func (b *builder) warn(line int, err error) {
	d := Diagnostic{Source: b.source, Line: line, Err: err}
	logrus.Warn(d.Error())
	b.diagnostics = append(b.diagnostics, d)
}

// defineQueues starts over with n round robin levels and no processes.
func (b *builder) defineQueues(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: number of queues must be positive, got %d", sched.ErrConfiguration, n)
	}
	b.policies = make([]sched.Policy, n)
	b.quanta = make([]int, n)
	for i := range b.policies {
		b.policies[i] = sched.RoundRobin(0)
	}
	b.processes = nil
	b.names = make(map[string]bool)
	b.pid = 0
	return nil
}

func (b *builder) checkLevel(level int) error {
	if level < 1 || level > len(b.policies) {
		return fmt.Errorf("%w: level %d does not exist (%d defined)", sched.ErrInvalidLevelIndex, level, len(b.policies))
	}
	return nil
}

// setStrategy changes the strategy of a 1-based level, keeping its quantum.
func (b *builder) setStrategy(level int, token string) error {
	if err := b.checkLevel(level); err != nil {
		return err
	}
	s, err := sched.ParseStrategy(token)
	if err != nil {
		return err
	}
	p, err := sched.NewPolicy(s, b.quanta[level-1])
	if err != nil {
		return err
	}
	b.policies[level-1] = p
	return nil
}

// setQuantum sets the quantum of a 1-based level.
func (b *builder) setQuantum(level, quantum int) error {
	if err := b.checkLevel(level); err != nil {
		return err
	}
	if quantum < 0 {
		return fmt.Errorf("%w: quantum %d must not be negative", sched.ErrConfiguration, quantum)
	}
	b.quanta[level-1] = quantum
	p, err := sched.NewPolicy(b.policies[level-1].Strategy(), quantum)
	if err != nil {
		return err
	}
	b.policies[level-1] = p
	return nil
}

func (b *builder) addProcess(name string, arrival, execution, level int) error {
	if name == "" {
		return fmt.Errorf("%w: process without a name", sched.ErrInvalidInput)
	}
	if b.names[name] {
		return fmt.Errorf("%w: duplicate process name %q", sched.ErrInvalidInput, name)
	}
	p, err := sched.NewProcess(name, arrival, execution)
	if err != nil {
		return err
	}
	if err := b.checkLevel(level); err != nil {
		return fmt.Errorf("process %s: %w", name, err)
	}
	b.pid++
	p.PID = b.pid
	p.Level = level - 1
	b.names[name] = true
	b.processes = append(b.processes, p)
	return nil
}

// start snapshots the current definitions as a run. The processes are
// shared between snapshots, so several starts re-run the same collection.
func (b *builder) start() {
	procs := make([]*sched.Process, len(b.processes))
	copy(procs, b.processes)
	sort.SliceStable(procs, func(i, j int) bool { return procs[i].Name < procs[j].Name })

	levels := make([]sched.Policy, len(b.policies))
	copy(levels, b.policies)

	b.runs = append(b.runs, Run{Levels: levels, Processes: procs})
}

func (b *builder) workload() *Workload {
	return &Workload{
		Source:      b.source,
		Runs:        b.runs,
		Config:      sched.DefaultConfig(),
		Diagnostics: b.diagnostics,
	}
}
