// internal/sched/sinks.go

package sched

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogSink narrates events through logrus at debug level.
type LogSink struct {
	Logger logrus.FieldLogger
}

func (s LogSink) Handle(ev Event) {
	log := s.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	// an auxiliary function to center the event kind in the output
	center := func(str string, width int) string {
		spaces := (width - len(str)) / 2
		return strings.Repeat(" ", spaces) + str + strings.Repeat(" ", width-(spaces+len(str)))
	}

	prefix := fmt.Sprintf("[clock %07d] [%s]", ev.Clock, center(ev.Kind.String(), 10))
	switch ev.Kind {
	case EventIdle:
		log.Debugf("%s no process ready, clock jumped", prefix)
	case EventArrive:
		log.Debugf("%s process %s arrived (level %d)", prefix, ev.Process, ev.Level+1)
	case EventDispatch:
		log.Debugf("%s process %s started/resumed (remaining: %d)", prefix, ev.Process, ev.Remaining)
	case EventPreempt:
		log.Debugf("%s process %s preempted (quantum expired, remaining: %d)", prefix, ev.Process, ev.Remaining)
	case EventRequeue:
		log.Debugf("%s process %s requeued (remaining: %d)", prefix, ev.Process, ev.Remaining)
	case EventFinish:
		log.Debugf("%s process %s finished", prefix, ev.Process)
	}
}

// CSVSink writes one row per event.
type CSVSink struct {
	w      *csv.Writer
	closer io.Closer
	err    error
}

var csvHeader = []string{"clock", "event", "pid", "process", "level", "remaining", "ran"}

// NewCSVSink writes the header and returns a sink over w.
func NewCSVSink(w io.Writer) *CSVSink {
	s := &CSVSink{w: csv.NewWriter(w)}
	s.err = s.w.Write(csvHeader)
	return s
}

// CreateCSVSink opens path for CSV logging of events.
func CreateCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := NewCSVSink(f)
	s.closer = f
	return s, nil
}

func (s *CSVSink) Handle(ev Event) {
	if s.err != nil {
		return
	}
	rec := []string{
		strconv.Itoa(ev.Clock),
		ev.Kind.String(),
		strconv.Itoa(ev.PID),
		ev.Process,
		strconv.Itoa(ev.Level + 1),
		strconv.Itoa(ev.Remaining),
		strconv.Itoa(ev.Ran),
	}
	s.err = s.w.Write(rec)
}

// Close flushes buffered rows and closes the file, if the sink owns one.
// It returns the first write error seen.
func (s *CSVSink) Close() error {
	s.w.Flush()
	if s.err == nil {
		s.err = s.w.Error()
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil && s.err == nil {
			s.err = err
		}
	}
	return s.err
}

// multiSink fans one event out to several sinks.
type multiSink []EventSink

func (m multiSink) Handle(ev Event) {
	for _, s := range m {
		s.Handle(ev)
	}
}
