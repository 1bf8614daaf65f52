// Package report prints the outcome of a simulation run. It only reads the
// result.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"mlqsched/internal/sched"
)

// Options selects optional parts of the text report.
type Options struct {
	MergeTrace bool // coalesce consecutive grants to the same process
}

// Print writes the level dump, the process table and the trace.
func Print(w io.Writer, r *sched.Result, opts Options) {
	Levels(w, r.Levels)
	_, _ = fmt.Fprintln(w)
	Processes(w, r)
	_, _ = fmt.Fprintln(w)
	trace := r.Trace
	if opts.MergeTrace {
		trace = trace.Merged()
	}
	Trace(w, trace)
}

// Levels dumps every level's queues.
func Levels(w io.Writer, levels []*sched.Level) {
	for _, l := range levels {
		Level(w, l)
	}
}

// Level dumps the ready, pending and finished queues of one level.
func Level(w io.Writer, l *sched.Level) {
	_, _ = fmt.Fprintf(w, "%s ", l.Policy())
	queue(w, "ready", l.Ready())
	queue(w, "arrival", l.Pending())
	queue(w, "finished", l.Finished())
}

func queue(w io.Writer, name string, procs []*sched.Process) {
	_, _ = fmt.Fprintf(w, "%s (%d): { ", name, len(procs))
	for _, p := range procs {
		_, _ = fmt.Fprintf(w, "%s ", p)
	}
	_, _ = fmt.Fprintln(w, "}")
}

// Processes writes one row per process with totals in the footer.
func Processes(w io.Writer, r *sched.Result) {
	rows := make([][]string, 0, len(r.Processes))
	for i, p := range r.Processes {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.Name,
			strconv.Itoa(p.PID),
			strconv.Itoa(p.Level + 1),
			strconv.Itoa(p.ArrivalTime),
			strconv.Itoa(p.ExecutionTime),
			strconv.Itoa(p.FinishedTime),
			strconv.Itoa(p.WaitingTime),
			strconv.Itoa(p.TurnaroundTime()),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Process", "PID", "Level", "Arr.", "Exec.", "Fin.", "Wait", "Turnaround"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "", "", "", "", "",
		fmt.Sprintf("End\n%d", r.EndTime),
		fmt.Sprintf("Total %d\nAverage %.3f", r.TotalWaiting, r.AverageWaiting()),
		fmt.Sprintf("Average\n%.3f", r.AverageTurnaround())})
	table.Render()
}

// Trace writes the CPU grants on one line.
func Trace(w io.Writer, t sched.Trace) {
	_, _ = fmt.Fprintln(w, t.String())
}

// Summary is the machine readable form of a run.
type Summary struct {
	Levels            []LevelSummary   `json:"levels"`
	Processes         []ProcessSummary `json:"processes"`
	Trace             sched.Trace      `json:"trace"`
	EndTime           int              `json:"end_time"`
	TotalWaiting      int              `json:"total_waiting"`
	AverageWaiting    float64          `json:"average_waiting"`
	AverageTurnaround float64          `json:"average_turnaround"`
}

type LevelSummary struct {
	Strategy string   `json:"strategy"`
	Quantum  int      `json:"quantum"`
	Finished []string `json:"finished"`
}

type ProcessSummary struct {
	Name         string         `json:"name"`
	PID          int            `json:"pid"`
	Level        int            `json:"level"`
	ArrivalTime  int            `json:"arrival_time"`
	FinishedTime int            `json:"finished_time"`
	WaitingTime  int            `json:"waiting_time"`
	Slices       []SliceSummary `json:"slices"`
}

type SliceSummary struct {
	Kind string `json:"kind"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// Summarize copies the result into a Summary.
func Summarize(r *sched.Result) Summary {
	s := Summary{
		Levels:            make([]LevelSummary, 0, len(r.Levels)),
		Processes:         make([]ProcessSummary, 0, len(r.Processes)),
		Trace:             r.Trace,
		EndTime:           r.EndTime,
		TotalWaiting:      r.TotalWaiting,
		AverageWaiting:    r.AverageWaiting(),
		AverageTurnaround: r.AverageTurnaround(),
	}
	if s.Trace == nil {
		s.Trace = sched.Trace{}
	}
	for _, l := range r.Levels {
		ls := LevelSummary{Strategy: l.Policy().Strategy().String(), Quantum: l.Policy().Quantum(), Finished: []string{}}
		for _, p := range l.Finished() {
			ls.Finished = append(ls.Finished, p.Name)
		}
		s.Levels = append(s.Levels, ls)
	}
	for _, p := range r.Processes {
		ps := ProcessSummary{
			Name:         p.Name,
			PID:          p.PID,
			Level:        p.Level + 1,
			ArrivalTime:  p.ArrivalTime,
			FinishedTime: p.FinishedTime,
			WaitingTime:  p.WaitingTime,
			Slices:       make([]SliceSummary, 0, len(p.Slices)),
		}
		for _, sl := range p.Slices {
			ps.Slices = append(ps.Slices, SliceSummary{Kind: sl.Kind.String(), From: sl.From, To: sl.To})
		}
		s.Processes = append(s.Processes, ps)
	}
	return s
}

// WriteJSON writes the indented summary of r.
func WriteJSON(w io.Writer, r *sched.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Summarize(r))
}
