package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/danieljhkim/autonkit/internal/engine"
	"github.com/danieljhkim/autonkit/internal/plan"
)

// captureOutput redirects the package writers for the duration of a test.
func captureOutput(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	oldOut, oldErr := stdout, stderr
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	stdout, stderr = out, errOut
	t.Cleanup(func() {
		stdout, stderr = oldOut, oldErr
	})
	return out, errOut
}

func TestFormatJSON(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{
			name:  "simple map",
			input: map[string]string{"key": "value"},
			want:  "{\n  \"key\": \"value\"\n}",
		},
		{
			name:  "empty map",
			input: map[string]string{},
			want:  "{}",
		},
		{
			name:  "array",
			input: []string{"a", "b", "c"},
			want:  "[\n  \"a\",\n  \"b\",\n  \"c\"\n]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatJSON(tt.input)
			if err != nil {
				t.Fatalf("formatJSON() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("formatJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutputJSON(t *testing.T) {
	out, _ := captureOutput(t)

	if err := outputJSON(map[string]string{"test": "value"}); err != nil {
		t.Fatalf("outputJSON() error = %v", err)
	}

	var v map[string]string
	if err := json.Unmarshal(out.Bytes(), &v); err != nil {
		t.Fatalf("outputJSON() produced invalid JSON: %v", err)
	}
	if v["test"] != "value" {
		t.Errorf("outputJSON() = %v", v)
	}
}

func TestPrintFunctions(t *testing.T) {
	out, errOut := captureOutput(t)

	PrintSuccess("Success message")
	PrintWarning("Warning message")
	PrintError("Error message")
	PrintInfo("Info message")

	for _, want := range []string{"Success message", "Warning message", "Info message"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("stdout missing %q", want)
		}
	}
	if strings.Contains(out.String(), "Error message") {
		t.Error("PrintError should not write to stdout")
	}
	if !strings.Contains(errOut.String(), "Error message") {
		t.Error("PrintError should write to stderr")
	}
}

func TestPrintPlan(t *testing.T) {
	out, _ := captureOutput(t)

	PrintPlan("primary plan", plan.New(8,
		plan.Drive(60, 1200),
		plan.Turn(90),
		plan.Tank(40, -40, 500),
	))

	text := out.String()
	for _, want := range []string{"3 steps", "drive 60% for 1200ms", "turn to 90°", "left 40% right -40% for 500ms"} {
		if !strings.Contains(text, want) {
			t.Errorf("PrintPlan output missing %q:\n%s", want, text)
		}
	}
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"1", 0, false},
		{"3", 2, false},
		{"0", 0, true},
		{"4", 0, true},
		{"two", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseSlot(tt.arg)
			if tt.wantErr {
				if !errors.Is(err, engine.ErrInvalidSlot) {
					t.Errorf("parseSlot(%q) error = %v, want ErrInvalidSlot", tt.arg, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("parseSlot(%q) = %d, %v, want %d", tt.arg, got, err, tt.want)
			}
		})
	}
}

func TestParseIndex(t *testing.T) {
	if got, err := parseIndex("4"); err != nil || got != 3 {
		t.Errorf("parseIndex(4) = %d, %v", got, err)
	}
	for _, bad := range []string{"0", "-1", "x"} {
		if _, err := parseIndex(bad); err == nil {
			t.Errorf("parseIndex(%q) should fail", bad)
		}
	}
}
