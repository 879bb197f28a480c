package plan

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type section int

const (
	sectionNone section = iota
	sectionPrimary
	sectionSecondary
)

// sectionMarkers maps exact marker lines to sections. [GPS] and [BASIC] are
// the markers older firmware wrote.
var sectionMarkers = map[string]section{
	"[PRIMARY]":   sectionPrimary,
	"[SECONDARY]": sectionSecondary,
	"[GPS]":       sectionPrimary,
	"[BASIC]":     sectionSecondary,
}

// Decode reads a plan file. Comments, blank lines, malformed records and
// records outside a known section are skipped; the only error returned is a
// read failure. Records past capacity are dropped.
func Decode(r io.Reader, capacity int) (primary, secondary Plan, err error) {
	primary = Plan{Capacity: capacity}
	secondary = Plan{Capacity: capacity}

	current := sectionNone
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			// Unknown markers close the current section.
			current = sectionMarkers[line]
			continue
		}

		step, ok := ParseRecord(line)
		if !ok {
			continue
		}
		switch current {
		case sectionPrimary:
			primary.Append(step)
		case sectionSecondary:
			secondary.Append(step)
		}
	}
	if err := scanner.Err(); err != nil {
		return primary, secondary, fmt.Errorf("failed to read plan: %w", err)
	}
	return primary, secondary, nil
}

// ParseRecord tokenizes one TYPE,v1[,v2[,v3]] record. Missing trailing values
// default to 0 and fields past the fourth are ignored. It reports false when
// the record has no v1 or a value is not an integer.
func ParseRecord(line string) (Step, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return Step{}, false
	}

	var values [3]int
	for i := 0; i < len(values) && i+1 < len(fields); i++ {
		v, err := strconv.Atoi(strings.TrimSpace(fields[i+1]))
		if err != nil {
			return Step{}, false
		}
		values[i] = v
	}

	return Step{
		Type: ParseStepType(strings.TrimSpace(fields[0])),
		V1:   values[0],
		V2:   values[1],
		V3:   values[2],
	}, true
}

// Encode writes both plans under their section markers. An empty plan still
// gets its marker so it round-trips as empty.
func Encode(w io.Writer, primary, secondary Plan) error {
	bw := bufio.NewWriter(w)
	for _, m := range Modes {
		p := primary
		if m == Secondary {
			p = secondary
		}
		if _, err := fmt.Fprintln(bw, m.Marker()); err != nil {
			return fmt.Errorf("failed to write %s section: %w", m, err)
		}
		for _, s := range p.Steps {
			if _, err := fmt.Fprintln(bw, s.String()); err != nil {
				return fmt.Errorf("failed to write %s step: %w", m, err)
			}
		}
	}
	return bw.Flush()
}

// Marshal is Encode into a byte slice.
func Marshal(primary, secondary Plan) []byte {
	var sb strings.Builder
	// strings.Builder never fails to write.
	_ = Encode(&sb, primary, secondary)
	return []byte(sb.String())
}
