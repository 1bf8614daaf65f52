package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlqsched/internal/sched"
	"mlqsched/internal/workload"
)

const srtWorkload = `define queues 1
define scheduling 1 srt
process A 0 6
process B 2 2
start
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSimulate_WritesReportChartAndEvents(t *testing.T) {
	// GIVEN an SRT workload file
	dir := t.TempDir()
	w, err := workload.Load(writeFile(t, dir, "srt.txt", srtWorkload))
	require.NoError(t, err)

	cfg := sched.DefaultConfig()
	cfg.CSVEvents = filepath.Join(dir, "events.csv")

	// WHEN it is simulated
	var out bytes.Buffer
	require.NoError(t, simulate(context.Background(), &out, w, cfg))

	// THEN the report is printed and the chart and event log are written
	assert.Contains(t, out.String(), "A (2) B (2) A (4)")

	script, err := os.ReadFile(filepath.Join(dir, "srt.gpi"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "set output '"+filepath.Join(dir, "srt.png")+"'")

	events, err := os.ReadFile(cfg.CSVEvents)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(events)), "\n")
	assert.Equal(t, "clock,event,pid,process,level,remaining,ran", lines[0])
	assert.Len(t, lines, 9)
}

func TestSimulate_MergedTraceAndExplicitPlotPath(t *testing.T) {
	dir := t.TempDir()
	w, err := workload.Parse(strings.NewReader("define queues 1\ndefine scheduling 1 fifo\nprocess A 0 5\nprocess B 1 3\nstart\n"), "stdin")
	require.NoError(t, err)

	cfg := sched.DefaultConfig()
	cfg.MergeTrace = true
	cfg.Plot = filepath.Join(dir, "chart.gpi")

	var out bytes.Buffer
	require.NoError(t, simulate(context.Background(), &out, w, cfg))

	assert.Contains(t, out.String(), "A (5) B (3)")
	assert.FileExists(t, cfg.Plot)
}

func TestSimulate_NoRuns(t *testing.T) {
	w, err := workload.Parse(strings.NewReader("define queues 1\n"), "stdin")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, simulate(context.Background(), &out, w, sched.DefaultConfig()))
	assert.Empty(t, out.String())
}

func TestValidate(t *testing.T) {
	w, err := workload.Parse(strings.NewReader("define queues 2\ndefine scheduling 2 rr\ndefine quantum 2 4\nprocess A 0 0\nstart\n"), "v.txt")
	require.NoError(t, err)

	var out bytes.Buffer
	err = validate(&out, w)

	assert.Error(t, err)
	assert.Contains(t, out.String(), "v.txt:4:")
	assert.Contains(t, out.String(), "run 1: 2 levels, 0 processes")
	assert.Contains(t, out.String(), "level 2: RR q=4")
}

func TestSetLogLevel(t *testing.T) {
	assert.NoError(t, setLogLevel("debug"))
	assert.Error(t, setLogLevel("loud"))
	require.NoError(t, setLogLevel("info"))
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := []string{}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "validate")
}

func TestSampleWorkloads(t *testing.T) {
	merged := map[string]string{
		"fifo.txt": "A (5) B (3) C (8) D (6)",
		"rr.txt":   "A (2) B (2) A (2) C (1) B (1) A (1)",
		"sjf.txt":  "A (7) C (1) B (4) D (4)",
		"srt.txt":  "A (2) B (2) C (1) B (2) D (4) A (5)",
	}
	files, err := filepath.Glob(filepath.Join("testdata", "*"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			w, err := workload.Load(file)
			require.NoError(t, err)
			require.Empty(t, w.Diagnostics)
			require.Len(t, w.Runs, 1)

			run := w.Runs[0]
			r, err := sched.Simulate(run.Processes, run.NewLevels())
			require.NoError(t, err)

			work := 0
			for _, p := range r.Processes {
				work += p.ExecutionTime
				assert.Equal(t, sched.StateFinished, p.State, p.Name)
				assert.Equal(t, p.FinishedTime-p.ArrivalTime, p.ExecutionTime+p.WaitingTime, p.Name)
			}
			assert.Equal(t, work, r.Trace.Total())

			if want, ok := merged[filepath.Base(file)]; ok {
				assert.Equal(t, want, r.Trace.Merged().String())
			}
		})
	}
}
