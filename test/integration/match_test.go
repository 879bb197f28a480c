package integration

import (
	"math"
	"strings"
	"testing"

	"github.com/danieljhkim/autonkit/internal/engine"
	"github.com/danieljhkim/autonkit/internal/guard"
	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/planstore"
	"github.com/danieljhkim/autonkit/internal/recorder"
)

func TestMatch_RecordSaveRebootRun(t *testing.T) {
	card := newCardFS()
	history := openHistory(t)

	// Practice: the driver records a plan with the sticks and saves it.
	practice := bootRobot(t, card, history)
	if !practice.engine.StartRecording() {
		t.Fatal("StartRecording refused")
	}
	practice.drive(sticks(60, 60), 50)
	practice.drive(sticks(-40, 40), 25)
	if _, err := practice.engine.StopRecording(""); err != nil {
		t.Fatalf("StopRecording() error = %v", err)
	}
	if err := practice.engine.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	want := plan.New(0, plan.Tank(60, 60, 1000), plan.Tank(-40, 40, 500))
	text := cardText(t, card, planstore.SlotFile(0))
	if !strings.HasPrefix(text, "[PRIMARY]\nTANK_FOR_DURATION,60,60,1000\nTANK_FOR_DURATION,-40,40,500\n[SECONDARY]") {
		t.Errorf("slot file =\n%s", text)
	}

	// Match: the robot reboots and runs the saved plan in autonomous.
	match := bootRobot(t, card, history)
	if got := match.engine.Plan(plan.Primary); !got.Equal(want) {
		t.Fatalf("loaded plan = %v, want %v", got.Steps, want.Steps)
	}

	result, ok := match.engine.OnAutonomous()
	if !ok {
		t.Fatal("OnAutonomous refused to start")
	}
	if result.State != guard.Completed || result.Outcome.Completed != 2 {
		t.Errorf("result = %+v", result)
	}
	if d := result.Duration().Milliseconds(); d < 1500 || d > 1600 {
		t.Errorf("run took %dms, want about 1500ms", d)
	}

	stats := match.bot.Stats()
	if math.Abs(stats.Distance-0.72) > 0.01 {
		t.Errorf("distance = %.3f m, want 0.72", stats.Distance)
	}
	if h := match.bot.HeadingDegrees(); math.Abs(h-268.3) > 1 {
		t.Errorf("heading = %.1f, want about 268.3", h)
	}

	runs, err := history.Executions(0)
	if err != nil {
		t.Fatalf("Executions() error = %v", err)
	}
	if len(runs) != 1 || runs[0].Trigger != string(engine.TriggerCompetition) || runs[0].Outcome != "COMPLETED" {
		t.Errorf("executions = %+v", runs)
	}
	if runs[0].PlanHash != result.PlanHash {
		t.Errorf("recorded hash %q, result hash %q", runs[0].PlanHash, result.PlanHash)
	}

	recs, err := history.Recordings(0)
	if err != nil {
		t.Fatalf("Recordings() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Steps != 2 || recs[0].Samples != 15 || recs[0].Reason != recorder.ReasonUser {
		t.Errorf("recordings = %+v", recs)
	}
}

func TestFrameLog_ImportMatchesLiveRecording(t *testing.T) {
	inputs := []struct {
		left, right, ticks int
	}{
		{60, 60, 20},
		{62, 58, 10},
		{0, 0, 5},
		{-50, 50, 15},
		{30, 80, 10},
	}

	live := bootRobot(t, newCardFS(), openHistory(t))
	live.engine.StartRecording()
	for _, in := range inputs {
		live.drive(sticks(in.left, in.right), in.ticks)
	}
	if _, err := live.engine.StopRecording(""); err != nil {
		t.Fatal(err)
	}
	recorded := live.engine.Plan(plan.Primary)

	card := newCardFS()
	logged := bootRobot(t, card, openHistory(t))
	session, err := logged.engine.StartFrameLog()
	if err != nil {
		t.Fatalf("StartFrameLog() error = %v", err)
	}
	for _, in := range inputs {
		logged.drive(sticks(in.left, in.right), in.ticks)
	}
	sum, err := logged.engine.StopRecording("")
	if err != nil {
		t.Fatal(err)
	}
	if sum.File != session.File || len(card.names("drive_log_")) != 1 {
		t.Fatalf("drive logs on card = %v, session file %q", card.names("drive_log_"), session.File)
	}

	data, err := card.ReadFile(session.File)
	if err != nil {
		t.Fatal(err)
	}
	imported, stats, err := recorder.ImportFrames(strings.NewReader(string(data)), 0, engine.DefaultOptions().Recorder)
	if err != nil {
		t.Fatalf("ImportFrames() error = %v", err)
	}
	if stats.Frames != sum.Samples {
		t.Errorf("imported %d frames, recorded %d samples", stats.Frames, sum.Samples)
	}
	if !imported.Equal(recorded) {
		t.Errorf("imported plan = %v\nlive plan = %v", imported.Steps, recorded.Steps)
	}
}

func TestSlots_SelectionSurvivesReboot(t *testing.T) {
	card := newCardFS()
	history := openHistory(t)

	first := bootRobot(t, card, history)
	if err := first.engine.SelectSlot(2); err != nil {
		t.Fatalf("SelectSlot() error = %v", err)
	}
	first.engine.ClearPlan()
	first.engine.EditStep(0, plan.Drive(40, 300))
	if err := first.engine.Save(); err != nil {
		t.Fatal(err)
	}
	if got := cardText(t, card, planstore.SlotIndexFile); got != "3" {
		t.Errorf("slot index file = %q, want 3", got)
	}

	second := bootRobot(t, card, history)
	if got := second.engine.ActiveSlot(); got != 2 {
		t.Fatalf("ActiveSlot() after reboot = %d, want 2", got)
	}
	if got := second.engine.Plan(plan.Primary); !got.Equal(plan.New(0, plan.Drive(40, 300))) {
		t.Errorf("slot 3 plan = %v", got.Steps)
	}

	// Slot 1 was never saved, so selecting it brings back the defaults.
	if err := second.engine.SelectSlot(0); err != nil {
		t.Fatal(err)
	}
	if got := second.engine.Plan(plan.Primary); !got.Equal(plan.DefaultPrimary(0)) {
		t.Errorf("slot 1 plan = %v", got.Steps)
	}
}

func TestManualRequest_RunsSelectedPlan(t *testing.T) {
	history := openHistory(t)
	rig := bootRobot(t, newCardFS(), history)
	rig.engine.SetMode(plan.Secondary)

	rig.drive(press(), 1)
	rig.engine.RequestAutonomous()
	rig.drive(sticks(80, 80), 1)

	status := rig.engine.Status()
	if status.LastRun == nil || status.LastRun.Mode != "secondary" || status.LastRun.Trigger != engine.TriggerManual {
		t.Fatalf("last run = %+v", status.LastRun)
	}
	if status.LastRun.Outcome.Completed != plan.DefaultSecondary(0).Len() {
		t.Errorf("outcome = %+v", status.LastRun.Outcome)
	}

	runs, err := history.Executions(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Mode != "secondary" || runs[0].Trigger != "MANUAL" {
		t.Errorf("executions = %+v", runs)
	}
}
