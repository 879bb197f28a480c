package sim

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/danieljhkim/autonkit/internal/recorder"
	"github.com/danieljhkim/autonkit/internal/robot"
)

// Script is a robot.Controller that plays back a fixed list of frames, one
// per Poll. Once exhausted it returns idle frames.
type Script struct {
	mu     sync.Mutex
	frames []robot.InputFrame
	hold   int
	polls  int
}

// NewScript creates a controller over frames.
func NewScript(frames ...robot.InputFrame) *Script {
	return &Script{frames: frames, hold: 1}
}

// Hold makes every frame answer n consecutive polls, to replay a log
// sampled slower than the poll rate.
func (s *Script) Hold(n int) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.hold = n
	}
	return s
}

// Poll implements robot.Controller.
func (s *Script) Poll() robot.InputFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.polls / s.hold
	if i >= len(s.frames) {
		return robot.InputFrame{}
	}
	s.polls++
	return s.frames[i]
}

// Remaining returns how many polls are left before the script runs out.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)*s.hold - s.polls
}

// ReadScript parses a raw drive log into frames. Each AXIS1 line starts a
// frame. Drive logs only record rising edges, so a BTN_<NAME> line presses
// that button for the one frame it follows.
func ReadScript(r io.Reader) (*Script, error) {
	var frames []robot.InputFrame
	var cur robot.InputFrame
	pending := false

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		label, value, ok := recorder.ParseLine(sc.Text())
		if !ok {
			continue
		}
		switch {
		case strings.HasPrefix(label, "AXIS"):
			n, err := strconv.Atoi(strings.TrimPrefix(label, "AXIS"))
			if err != nil || n < 1 || n > robot.AxisCount {
				continue
			}
			v, err := strconv.Atoi(value)
			if err != nil {
				continue
			}
			if n == 1 {
				if pending {
					frames = append(frames, cur)
				}
				cur = robot.InputFrame{}
				pending = true
			}
			cur.Axes[n-1] = v
		case strings.HasPrefix(label, "BTN_") && pending:
			if b, ok := robot.ParseButton(strings.TrimPrefix(label, "BTN_")); ok {
				cur.Buttons |= robot.Buttons(b)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read drive log: %w", err)
	}
	if pending {
		frames = append(frames, cur)
	}
	return NewScript(frames...), nil
}
