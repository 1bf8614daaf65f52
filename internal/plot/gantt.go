// Package plot draws the slice logs of a run as a Gantt chart through
// gnuplot. The script is plain text; running gnuplot on it is optional.
package plot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"mlqsched/internal/sched"
)

// DefaultName is the chart name used when the workload came from stdin.
const DefaultName = "gantt"

var (
	// ErrEmpty is returned when there are no processes to draw.
	ErrEmpty = errors.New("plot: no processes")

	// ErrNoGnuplot is returned by Render when gnuplot is not in PATH.
	ErrNoGnuplot = errors.New("plot: gnuplot not found in PATH")
)

// ScriptPath derives the script name from the workload path:
// "test/rr.txt" gives "test/rr.gpi".
func ScriptPath(input string) string {
	if input == "" || input == "-" || input == "stdin" {
		return DefaultName + ".gpi"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".gpi"
}

// ImagePath is the PNG that the script at scriptPath produces.
func ImagePath(scriptPath string) string {
	return strings.TrimSuffix(scriptPath, filepath.Ext(scriptPath)) + ".png"
}

// xTicks picks the x axis step for a chart ending at maxTime.
func xTicks(maxTime int) int {
	switch {
	case maxTime > 100:
		return 10
	case maxTime < 20:
		return 1
	default:
		return 5
	}
}

// WriteScript writes a gnuplot script drawing one horizontal line per
// process at y = pid, green for CPU slices and grey for WAIT slices.
func WriteScript(w io.Writer, procs []*sched.Process, image string) error {
	if len(procs) == 0 {
		return ErrEmpty
	}

	maxTime := 0
	for _, p := range procs {
		maxTime = max(maxTime, p.FinishedTime)
	}
	if maxTime == 0 {
		// nothing ran, draw an empty chart
		maxTime = 10
	}
	ticks := xTicks(maxTime)

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "set term pngcairo dashed size 1024,768")
	fmt.Fprintf(bw, "set output '%s'\n", image)
	fmt.Fprintln(bw, "set style fill solid")
	fmt.Fprintf(bw, "set xrange [0:%d]\n", maxTime+(maxTime%ticks)+ticks)
	fmt.Fprintf(bw, "set yrange [0:%d]\n", len(procs)+1)
	fmt.Fprintln(bw, "unset ytics")
	fmt.Fprintln(bw, "set title 'Scheduling'")

	labels := make([]string, len(procs))
	for i, p := range procs {
		labels[i] = fmt.Sprintf("'%s' %d", p.Name, p.PID)
	}
	fmt.Fprintf(bw, "set ytics(%s)\n", strings.Join(labels, ","))
	fmt.Fprintf(bw, "set xtics %d\n", ticks)
	fmt.Fprintln(bw, "unset key")
	fmt.Fprintln(bw, "set xlabel 'Time'")
	fmt.Fprintln(bw, "set ylabel 'Process'")

	fmt.Fprintln(bw, "set style line 1 lt 1 lw 2 lc rgb '#00ff00'")
	fmt.Fprintln(bw, "set style line 2 lt 1 lw 2 lc rgb '#00ff00'")
	fmt.Fprintln(bw, "set style line 3 lt 1 lw 1 lc rgb '#202020'")
	fmt.Fprintln(bw, "set style arrow 1 heads size screen 0.008,90 ls 1")
	fmt.Fprintln(bw, "set style arrow 2 heads size screen 0.008,100 ls 2")
	fmt.Fprintln(bw, "set style arrow 3 heads size screen 0.008,100 ls 3")

	arrow := 1
	for _, p := range procs {
		for _, s := range p.Slices {
			style := 1
			if s.Kind == sched.SliceWait {
				style = 3
			}
			fmt.Fprintf(bw, "set arrow %d from %d,%d to %d,%d as %d\n", arrow, s.From, p.PID, s.To, p.PID, style)
			arrow++
		}
	}

	fmt.Fprintln(bw, "plot NaN")
	return bw.Flush()
}

// CreateScript writes the script to path.
func CreateScript(path string, procs []*sched.Process) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteScript(f, procs, ImagePath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Render runs gnuplot on the script at path.
func Render(ctx context.Context, path string) error {
	bin, err := exec.LookPath("gnuplot")
	if err != nil {
		return ErrNoGnuplot
	}
	cmd := exec.CommandContext(ctx, bin, path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("plot: gnuplot %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}
	logrus.Debugf("rendered %s", ImagePath(path))
	return nil
}
