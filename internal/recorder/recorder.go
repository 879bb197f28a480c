// Package recorder turns live driver input into something replayable.
//
// In step mode each sample is quantized and compressed into TANK_FOR_DURATION
// steps written straight into a plan; consecutive equal samples extend the
// last step. In frame mode every sample is appended to a raw drive log on
// storage as "LABEL : value" lines, flushed in batches by a background writer
// so the drive loop never waits on storage.
package recorder

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/fsops"
	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/robot"
)

// Mode selects what a recording session produces.
type Mode int

const (
	// Steps compresses samples into plan steps.
	Steps Mode = iota
	// Frames writes every sample to a raw drive log.
	Frames
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Frames {
		return "frames"
	}
	return "steps"
}

// Stop reasons written to the log trailer and the run history.
const (
	ReasonUser  = "USER"
	ReasonFull  = "FULL"
	ReasonAuton = "AUTON"
)

// Sink receives compressed steps. plan.Set satisfies it through SetSink.
type Sink interface {
	Edit(fn func(p *plan.Plan))
}

// SetSink targets one plan of a plan.Set.
func SetSink(s *plan.Set, m plan.Mode) Sink {
	return setSink{set: s, mode: m}
}

type setSink struct {
	set  *plan.Set
	mode plan.Mode
}

func (s setSink) Edit(fn func(p *plan.Plan)) {
	s.set.Edit(s.mode, fn)
}

// Config tunes sampling and logging.
type Config struct {
	SampleInterval time.Duration
	Quantizer      Quantizer

	// LeftAxis and RightAxis are the 1-based controller axes recorded as
	// the left and right drive speeds.
	LeftAxis  int
	RightAxis int

	// FlushLines is the raw log batch size.
	FlushLines int

	// Source labels the REC_START line.
	Source string

	// Actions names what a button press did, for BTN_ lines.
	// Nil labels every press NO_ACTION.
	Actions func(robot.Button) string
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		SampleInterval: 100 * time.Millisecond,
		Quantizer:      Quantizer{Deadband: 5, Snap: 5, Limit: robot.FullPower},
		LeftAxis:       3,
		RightAxis:      2,
		FlushLines:     25,
		Source:         "AUTONKIT",
	}
}

// Session identifies one recording.
type Session struct {
	ID      string    `json:"id"`
	Mode    string    `json:"mode"`
	File    string    `json:"file,omitempty"`
	Started time.Time `json:"started"`
}

// Summary describes a finished recording.
type Summary struct {
	Session
	Stopped time.Time `json:"stopped"`
	Reason  string    `json:"reason"`
	Samples int       `json:"samples"`
	Steps   int       `json:"steps,omitempty"`
	Lines   int       `json:"lines,omitempty"`
	Full    bool      `json:"full"`

	// Overflow is set when the drive log writer fell so far behind that
	// later frames were dropped.
	Overflow bool `json:"overflow,omitempty"`
}

// Recorder owns at most one recording session at a time.
type Recorder struct {
	fs  fsops.FS
	clk clock.Clock
	cfg Config
	log *slog.Logger

	mu         sync.Mutex
	active     bool
	mode       Mode
	session    Session
	sink       Sink
	full       bool
	nextSample time.Time
	samples    int
	steps      int
	prev       robot.ButtonSet
	lines      []string
	lineCount  int
	overflow   bool
	writer     *frameWriter
	last       Summary
}

// maxPendingBatches bounds how many unsent batches a session may buffer
// while the writer is backed up.
const maxPendingBatches = 4

// New creates an idle Recorder.
func New(fs fsops.FS, clk clock.Clock, cfg Config, log *slog.Logger) *Recorder {
	def := DefaultConfig()
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = def.SampleInterval
	}
	if cfg.FlushLines <= 0 {
		cfg.FlushLines = def.FlushLines
	}
	if !validAxis(cfg.LeftAxis) {
		cfg.LeftAxis = def.LeftAxis
	}
	if !validAxis(cfg.RightAxis) {
		cfg.RightAxis = def.RightAxis
	}
	if cfg.Source == "" {
		cfg.Source = def.Source
	}
	return &Recorder{fs: fs, clk: clk, cfg: cfg, log: log}
}

// StartSteps begins compressing samples into sink, clearing it first. It
// returns false, changing nothing, if a session is already active.
func (r *Recorder) StartSteps(sink Sink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return false
	}
	sink.Edit(func(p *plan.Plan) { p.Clear() })
	r.begin(Steps)
	r.sink = sink
	r.log.Info("recording started", "id", r.session.ID, "mode", r.mode.String())
	return true
}

// StartFrames opens a new timestamped drive log and writes the session
// header. Starting while a session is active returns that session unchanged.
func (r *Recorder) StartFrames(driveMode string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return r.session, nil
	}

	name := LogFileName(r.clk.Now())
	w, err := r.fs.OpenAppend(name)
	if err != nil {
		return Session{}, fmt.Errorf("failed to open drive log: %w", err)
	}

	r.begin(Frames)
	r.session.File = name
	r.writer = newFrameWriter(w, r.log)
	r.appendLine("REC_START", r.cfg.Source)
	r.appendLine("DRIVE_MODE", driveMode)
	r.log.Info("recording started", "id", r.session.ID, "mode", r.mode.String(), "file", name)
	return r.session, nil
}

func (r *Recorder) begin(m Mode) {
	now := r.clk.Now()
	r.active = true
	r.mode = m
	r.session = Session{ID: uuid.NewString(), Mode: m.String(), Started: now}
	r.sink = nil
	r.full = false
	r.nextSample = time.Time{}
	r.samples = 0
	r.steps = 0
	r.prev = 0
	r.lines = nil
	r.lineCount = 0
	r.overflow = false
}

// Sample feeds one controller frame. Samples fall on a fixed grid of
// sample intervals from the first one, so early or late ticks do not change
// how much driving time gets recorded. Frames arriving before the next grid
// point are ignored. It reports whether the frame was recorded.
func (r *Recorder) Sample(f robot.InputFrame) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return false
	}
	now := r.clk.Now()
	missed := 0
	if r.nextSample.IsZero() {
		r.nextSample = now
	} else {
		if now.Before(r.nextSample) {
			return false
		}
		missed = int(now.Sub(r.nextSample) / r.cfg.SampleInterval)
	}
	r.nextSample = r.nextSample.Add(time.Duration(missed+1) * r.cfg.SampleInterval)
	r.samples++

	switch r.mode {
	case Steps:
		r.sampleStep(f, missed)
	case Frames:
		r.sampleFrame(f)
	}
	return true
}

// sampleStep records one sample. Grid points missed by a stalled loop are
// credited to the step that was being held during the stall.
func (r *Recorder) sampleStep(f robot.InputFrame, missed int) {
	left := r.cfg.Quantizer.Quantize(f.Axis(r.cfg.LeftAxis))
	right := r.cfg.Quantizer.Quantize(f.Axis(r.cfg.RightAxis))
	ms := int(r.cfg.SampleInterval / time.Millisecond)

	ok := true
	r.sink.Edit(func(p *plan.Plan) {
		if last := p.Last(); missed > 0 && last != nil && last.Type == plan.TankForDuration {
			last.V3 += missed * ms
		}
		ok = compress(p, left, right, ms)
		r.steps = p.Len()
	})
	if !ok {
		r.full = true
		r.log.Warn("plan full, recording stopped", "id", r.session.ID, "steps", r.steps)
		r.stopLocked(ReasonFull)
	}
}

func (r *Recorder) sampleFrame(f robot.InputFrame) {
	if r.overflow {
		return
	}
	for n := 1; n <= robot.AxisCount; n++ {
		r.appendLine(fmt.Sprintf("AXIS%d", n), fmt.Sprint(f.Axis(n)))
	}
	for _, b := range f.Buttons.RisingEdges(r.prev) {
		r.appendLine("BTN_"+b.String(), r.action(b))
	}
	r.prev = f.Buttons
	if len(r.lines) >= r.cfg.FlushLines {
		r.flushLocked()
	}
}

func (r *Recorder) action(b robot.Button) string {
	if r.cfg.Actions == nil {
		return "NO_ACTION"
	}
	return r.cfg.Actions(b)
}

func (r *Recorder) appendLine(label, value string) {
	r.lines = append(r.lines, label+" : "+value)
	r.lineCount++
}

// flushLocked hands the buffered lines to the writer. When the writer is
// backed up the lines stay buffered until the next attempt. Once the buffer
// holds maxPendingBatches batches the session stops taking frames.
func (r *Recorder) flushLocked() {
	if len(r.lines) == 0 || r.writer == nil {
		return
	}
	if r.writer.trySend(r.lines) {
		r.lines = nil
		return
	}
	if len(r.lines) >= maxPendingBatches*r.cfg.FlushLines {
		r.overflow = true
		r.log.Warn("drive log writer backed up, dropping frames",
			"id", r.session.ID, "file", r.session.File, "buffered", len(r.lines))
	}
}

// Stop ends the active session, flushing and closing the drive log. It
// reports false when nothing was recording. The session is closed to new
// samples before the log drains, so Sample never waits on storage.
func (r *Recorder) Stop(reason string) (Summary, bool) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return Summary{}, false
	}
	sum, w, final := r.detachLocked(reason)
	r.mu.Unlock()

	r.closeLog(w, final, sum.File)
	return sum, true
}

// stopLocked ends a session from inside Sample. Only step sessions stop
// themselves, and they have no drive log to close.
func (r *Recorder) stopLocked(reason string) Summary {
	sum, w, final := r.detachLocked(reason)
	if w != nil {
		go r.closeLog(w, final, sum.File)
	}
	return sum
}

func (r *Recorder) closeLog(w *frameWriter, final []string, file string) {
	if w == nil {
		return
	}
	if err := w.close(final); err != nil {
		r.log.Warn("drive log incomplete", "file", file, "error", err)
	}
}

// detachLocked marks the session inactive and hands back the writer and the
// lines it still has to write.
func (r *Recorder) detachLocked(reason string) (Summary, *frameWriter, []string) {
	if reason == "" {
		reason = ReasonUser
	}
	var w *frameWriter
	var final []string
	if r.mode == Frames {
		r.appendLine("REC_STOP", reason)
		w, final = r.writer, r.lines
		r.writer = nil
		r.lines = nil
	}
	r.active = false
	r.sink = nil

	sum := Summary{
		Session:  r.session,
		Stopped:  r.clk.Now(),
		Reason:   reason,
		Samples:  r.samples,
		Full:     r.full,
		Overflow: r.overflow,
	}
	if r.mode == Steps {
		sum.Steps = r.steps
	} else {
		sum.Lines = r.lineCount
	}
	r.last = sum
	r.log.Info("recording stopped", "id", sum.ID, "reason", reason, "samples", sum.Samples)
	return sum, w, final
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Full reports whether the last step session stopped on plan capacity.
func (r *Recorder) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.full
}

// Session returns the active session, if any.
func (r *Recorder) Session() (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session, r.active
}

// TakeSummary returns the summary of a session that stopped on its own
// (capacity reached) since the last call, then forgets it.
func (r *Recorder) TakeSummary() (Summary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last.ID == "" || r.last.Reason != ReasonFull {
		return Summary{}, false
	}
	sum := r.last
	r.last = Summary{}
	return sum, true
}

func validAxis(n int) bool {
	return n >= 1 && n <= robot.AxisCount
}

// LogFileName returns the drive log name for a session started at t.
func LogFileName(t time.Time) string {
	return "drive_log_" + t.Format("20060102_150405") + ".txt"
}
