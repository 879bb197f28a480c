package recorder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/robot"
)

// frameWriter drains batches of log lines to storage on its own goroutine.
type frameWriter struct {
	w     io.WriteCloser
	ch    chan []string
	done  chan struct{}
	log   *slog.Logger
	err   error
	lines int
}

func newFrameWriter(w io.WriteCloser, log *slog.Logger) *frameWriter {
	fw := &frameWriter{
		w:    w,
		ch:   make(chan []string, 8),
		done: make(chan struct{}),
		log:  log,
	}
	go fw.loop()
	return fw
}

func (fw *frameWriter) loop() {
	defer close(fw.done)
	for batch := range fw.ch {
		if fw.err != nil {
			continue
		}
		if _, err := io.WriteString(fw.w, strings.Join(batch, "\n")+"\n"); err != nil {
			fw.err = fmt.Errorf("failed to write drive log: %w", err)
			fw.log.Warn("drive log write failed", "error", err)
			continue
		}
		fw.lines += len(batch)
	}
}

// trySend queues a batch without blocking. The caller must not reuse lines
// after a successful send.
func (fw *frameWriter) trySend(lines []string) bool {
	select {
	case fw.ch <- lines:
		return true
	default:
		return false
	}
}

// close queues the final batch, waits for the writer to drain and closes
// the file.
func (fw *frameWriter) close(final []string) error {
	if len(final) > 0 {
		fw.ch <- final
	}
	close(fw.ch)
	<-fw.done
	return errors.Join(fw.err, fw.w.Close())
}

// ParseLine splits a drive log line into its label and value. Both the
// "LABEL : value" and the compact "LABEL:value" forms are accepted.
func ParseLine(line string) (label, value string, ok bool) {
	label, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)
	return label, value, label != ""
}

// ImportStats describes an imported drive log.
type ImportStats struct {
	Frames int  `json:"frames"`
	Steps  int  `json:"steps"`
	Full   bool `json:"full"`
}

// ImportFrames replays a raw drive log through the step quantizer and
// returns the plan a live step recording of the same input would have built.
// Each AXIS1 line starts a new frame. Unrecognized and malformed lines are
// skipped. Import stops early, without error, once the plan is full.
func ImportFrames(r io.Reader, capacity int, cfg Config) (plan.Plan, ImportStats, error) {
	def := DefaultConfig()
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = def.SampleInterval
	}
	if !validAxis(cfg.LeftAxis) {
		cfg.LeftAxis = def.LeftAxis
	}
	if !validAxis(cfg.RightAxis) {
		cfg.RightAxis = def.RightAxis
	}
	ms := int(cfg.SampleInterval.Milliseconds())

	p := plan.New(capacity)
	var stats ImportStats
	var axes [robot.AxisCount + 1]int
	pending := false

	emit := func() bool {
		if !pending {
			return true
		}
		pending = false
		stats.Frames++
		left := cfg.Quantizer.Quantize(axes[cfg.LeftAxis])
		right := cfg.Quantizer.Quantize(axes[cfg.RightAxis])
		if !compress(&p, left, right, ms) {
			stats.Full = true
			return false
		}
		return true
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		label, value, ok := ParseLine(sc.Text())
		if !ok || !strings.HasPrefix(label, "AXIS") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(label, "AXIS"))
		if err != nil || !validAxis(n) {
			continue
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		if n == 1 {
			if !emit() {
				break
			}
			axes = [robot.AxisCount + 1]int{}
			pending = true
		}
		axes[n] = v
	}
	if err := sc.Err(); err != nil {
		return plan.Plan{}, stats, fmt.Errorf("failed to read drive log: %w", err)
	}
	if !stats.Full {
		emit()
	}
	stats.Steps = p.Len()
	return p, stats, nil
}
