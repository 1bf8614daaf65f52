package workload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlqsched/internal/sched"
)

const twoLevels = `# two levels
define queues 2
define scheduling 1 RR
define quantum 1 3
define scheduling 2 fifo

process C 4 2 2
process A 0 5
process B 1 3 1
start
`

func names(procs []*sched.Process) []string {
	out := make([]string, len(procs))
	for i, p := range procs {
		out[i] = p.Name
	}
	return out
}

func TestParse_Directives(t *testing.T) {
	w, err := Parse(strings.NewReader(twoLevels), "two.txt")
	require.NoError(t, err)
	require.Empty(t, w.Diagnostics)
	require.Len(t, w.Runs, 1)

	run := w.Runs[0]
	assert.Equal(t, []sched.Policy{sched.RoundRobin(3), sched.FIFOPolicy()}, run.Levels)

	// processes are ordered by name, pids follow input order
	assert.Equal(t, []string{"A", "B", "C"}, names(run.Processes))
	a, b, c := run.Processes[0], run.Processes[1], run.Processes[2]
	assert.Equal(t, 2, a.PID)
	assert.Equal(t, 3, b.PID)
	assert.Equal(t, 1, c.PID)
	assert.Equal(t, 0, a.Level, "level defaults to 1")
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 4, c.ArrivalTime)
	assert.Equal(t, 2, c.ExecutionTime)
}

func TestParse_SkipsMalformedLines(t *testing.T) {
	input := `define queues 1
define scheduling 1 lottery
define scheduling 2 fifo
define quantum 1 -2
define queues 0
define
frobnicate
process bad-arrival -1 3
process bad-exec 0 0
process bad-level 0 3 2
process not-a-number x 3
process short 1
process A 0 2
process A 1 2
start
`
	w, err := Parse(strings.NewReader(input), "bad.txt")
	require.NoError(t, err)

	lines := []int{}
	for _, d := range w.Diagnostics {
		lines = append(lines, d.Line)
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 14}, lines)

	assert.ErrorIs(t, w.Diagnostics[0], sched.ErrConfiguration)
	assert.ErrorIs(t, w.Diagnostics[1], sched.ErrInvalidLevelIndex)
	assert.ErrorIs(t, w.Diagnostics[7], sched.ErrInvalidInput)
	assert.ErrorIs(t, w.Diagnostics[8], sched.ErrInvalidLevelIndex)
	assert.ErrorIs(t, w.Diagnostics[9], sched.ErrInvalidInput)
	assert.ErrorIs(t, w.Diagnostics[11], sched.ErrInvalidInput)
	assert.Contains(t, w.Diagnostics[0].Error(), "bad.txt:2:")

	// the valid remainder still loads
	require.Len(t, w.Runs, 1)
	assert.Equal(t, []sched.Policy{sched.RoundRobin(0)}, w.Runs[0].Levels)
	assert.Equal(t, []string{"A"}, names(w.Runs[0].Processes))
	assert.Equal(t, 1, w.Runs[0].Processes[0].PID)
}

func TestParse_QuantumBeforeScheduling(t *testing.T) {
	input := "define queues 1\ndefine quantum 1 4\ndefine scheduling 1 fifo\ndefine scheduling 1 rr\nstart\n"
	w, err := Parse(strings.NewReader(input), "q.txt")
	require.NoError(t, err)
	require.Len(t, w.Runs, 1)
	assert.Equal(t, sched.RoundRobin(4), w.Runs[0].Levels[0])
}

func TestParse_SeveralStartsShareProcesses(t *testing.T) {
	input := `define queues 1
define scheduling 1 fifo
process A 0 2
start
define scheduling 1 srt
process B 0 1
start
exit
process C 0 1
start
`
	w, err := Parse(strings.NewReader(input), "multi.txt")
	require.NoError(t, err)
	require.Len(t, w.Runs, 2, "nothing after exit is read")

	first, second := w.Runs[0], w.Runs[1]
	assert.Equal(t, []sched.Policy{sched.FIFOPolicy()}, first.Levels)
	assert.Equal(t, []sched.Policy{sched.SRTPolicy()}, second.Levels)
	assert.Equal(t, []string{"A"}, names(first.Processes))
	assert.Equal(t, []string{"A", "B"}, names(second.Processes))
	assert.Same(t, first.Processes[0], second.Processes[0])

	// both runs simulate the same A from scratch
	r1, err := sched.Simulate(first.Processes, first.NewLevels())
	require.NoError(t, err)
	assert.Equal(t, 2, r1.EndTime)
	r2, err := sched.Simulate(second.Processes, second.NewLevels())
	require.NoError(t, err)
	assert.Equal(t, 3, r2.EndTime)
	assert.Equal(t, sched.Trace{{Name: "B", Duration: 1}, {Name: "A", Duration: 2}}, r2.Trace)
}

func TestParse_DefineQueuesResets(t *testing.T) {
	input := "define queues 1\nprocess A 0 1\ndefine queues 2\nprocess B 0 1 2\nstart\n"
	w, err := Parse(strings.NewReader(input), "reset.txt")
	require.NoError(t, err)
	require.Len(t, w.Runs, 1)
	assert.Len(t, w.Runs[0].Levels, 2)
	assert.Equal(t, []string{"B"}, names(w.Runs[0].Processes))
	assert.Equal(t, 1, w.Runs[0].Processes[0].PID)
}

func TestParse_NoStart(t *testing.T) {
	w, err := Parse(strings.NewReader("define queues 1\nprocess A 0 1\n"), "nostart.txt")
	require.NoError(t, err)
	assert.Empty(t, w.Runs)
	assert.Equal(t, sched.DefaultConfig(), w.Config)
}

const yamlWorkload = `run:
  merge_trace: true
levels:
  - strategy: srt
  - strategy: rr
    quantum: 2
  - {}
processes:
  - name: B
    arrival: 2
    execution: 2
  - name: A
    execution: 6
  - name: C
    arrival: 1
    execution: 3
    level: 2
`

func TestParseYAML(t *testing.T) {
	w, err := ParseYAML([]byte(yamlWorkload), "w.yaml")
	require.NoError(t, err)
	require.Empty(t, w.Diagnostics)
	require.Len(t, w.Runs, 1)

	run := w.Runs[0]
	assert.Equal(t, []sched.Policy{sched.SRTPolicy(), sched.RoundRobin(2), sched.RoundRobin(0)}, run.Levels)
	assert.Equal(t, []string{"A", "B", "C"}, names(run.Processes))
	assert.Equal(t, 2, run.Processes[0].PID)
	assert.Equal(t, 1, run.Processes[2].Level)
	assert.True(t, w.Config.MergeTrace)
	assert.Equal(t, "info", w.Config.LogLevel)
}

func TestParseYAML_SkipsInvalidEntries(t *testing.T) {
	input := `levels:
  - strategy: lottery
processes:
  - name: A
    execution: 0
  - name: B
    execution: 1
    level: 4
  - execution: 2
  - name: C
    execution: 1
`
	w, err := ParseYAML([]byte(input), "bad.yaml")
	require.NoError(t, err)
	require.Len(t, w.Diagnostics, 4)
	assert.ErrorIs(t, w.Diagnostics[0], sched.ErrConfiguration)
	assert.ErrorIs(t, w.Diagnostics[1], sched.ErrInvalidInput)
	assert.ErrorIs(t, w.Diagnostics[2], sched.ErrInvalidLevelIndex)
	assert.ErrorIs(t, w.Diagnostics[3], sched.ErrInvalidInput)
	assert.Equal(t, []string{"C"}, names(w.Runs[0].Processes))
}

func TestParseYAML_RejectsBadDocuments(t *testing.T) {
	_, err := ParseYAML([]byte("levels: []\n"), "empty.yaml")
	assert.ErrorIs(t, err, sched.ErrConfiguration)

	_, err = ParseYAML([]byte("levels:\n  - strategy: rr\n    slices: 3\n"), "unknown.yaml")
	assert.ErrorIs(t, err, sched.ErrConfiguration)

	_, err = ParseYAML([]byte("levels: [\n"), "broken.yaml")
	assert.ErrorIs(t, err, sched.ErrConfiguration)
}

func TestLoad_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "two.txt")
	yml := filepath.Join(dir, "w.yml")
	require.NoError(t, os.WriteFile(txt, []byte(twoLevels), 0o644))
	require.NoError(t, os.WriteFile(yml, []byte(yamlWorkload), 0o644))

	w, err := Load(txt)
	require.NoError(t, err)
	assert.Len(t, w.Runs[0].Levels, 2)
	assert.Equal(t, txt, w.Source)

	w, err = Load(yml)
	require.NoError(t, err)
	assert.Len(t, w.Runs[0].Levels, 3)

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	assert.True(t, IsYAML("a/B.YAML"))
	assert.False(t, IsYAML("a/b.txt"))
}
