package workload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mlqsched/internal/sched"
)

// Parse reads the directive format. A read error aborts; a malformed line
// is skipped with a diagnostic.
func Parse(r io.Reader, source string) (*Workload, error) {
	b := newBuilder(source)
	sc := bufio.NewScanner(r)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		args := strings.Fields(text)
		if strings.EqualFold(args[0], "exit") {
			break
		}
		if err := b.directive(args); err != nil {
			b.warn(line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return b.workload(), nil
}

var errMalformed = fmt.Errorf("%w: malformed directive", sched.ErrConfiguration)

func (b *builder) directive(args []string) error {
	switch strings.ToLower(args[0]) {
	case "define":
		return b.define(args)
	case "process":
		// process NAME ARRIVAL EXECUTION [LEVEL]
		if len(args) < 4 {
			return fmt.Errorf("%w: %q", errMalformed, strings.Join(args, " "))
		}
		arrival, err := atoi(args[2], "arrival time")
		if err != nil {
			return err
		}
		execution, err := atoi(args[3], "execution time")
		if err != nil {
			return err
		}
		level := 1
		if len(args) >= 5 {
			if level, err = atoi(args[4], "level"); err != nil {
				return err
			}
		}
		return b.addProcess(args[1], arrival, execution, level)
	case "start":
		b.start()
		return nil
	}
	return fmt.Errorf("%w: unknown directive %q", errMalformed, args[0])
}

func (b *builder) define(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: %q", errMalformed, strings.Join(args, " "))
	}
	switch strings.ToLower(args[1]) {
	case "queues":
		n, err := atoi(args[2], "number of queues")
		if err != nil {
			return err
		}
		return b.defineQueues(n)
	case "scheduling":
		if len(args) < 4 {
			return fmt.Errorf("%w: %q", errMalformed, strings.Join(args, " "))
		}
		level, err := atoi(args[2], "level")
		if err != nil {
			return err
		}
		return b.setStrategy(level, args[3])
	case "quantum":
		if len(args) < 4 {
			return fmt.Errorf("%w: %q", errMalformed, strings.Join(args, " "))
		}
		level, err := atoi(args[2], "level")
		if err != nil {
			return err
		}
		quantum, err := atoi(args[3], "quantum")
		if err != nil {
			return err
		}
		return b.setQuantum(level, quantum)
	}
	return fmt.Errorf("%w: unknown definition %q", errMalformed, args[1])
}

func atoi(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", sched.ErrInvalidInput, what, s)
	}
	return n, nil
}
