package clock

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := &RealClock{}

	t.Run("returns current time", func(t *testing.T) {
		before := time.Now()
		actual := clock.Now()
		after := time.Now()

		if actual.Before(before) || actual.After(after) {
			t.Errorf("RealClock.Now() returned time outside expected range: got %v, expected between %v and %v", actual, before, after)
		}
	})
}

func TestRealClock_After(t *testing.T) {
	clock := &RealClock{}

	start := time.Now()
	<-clock.After(5 * time.Millisecond)
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("RealClock.After(5ms) fired after %v", elapsed)
	}
}

func TestFakeClock_Now(t *testing.T) {
	fixedTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	clock := NewFakeClock(fixedTime)

	t.Run("returns fixed time", func(t *testing.T) {
		if actual := clock.Now(); !actual.Equal(fixedTime) {
			t.Errorf("FakeClock.Now() = %v, want %v", actual, fixedTime)
		}
	})

	t.Run("subsequent calls return same time", func(t *testing.T) {
		first := clock.Now()
		time.Sleep(1 * time.Millisecond)
		second := clock.Now()

		if !first.Equal(second) {
			t.Errorf("FakeClock.Now() should return consistent time: first=%v, second=%v", first, second)
		}
	})
}

func TestFakeClock_After(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("fires immediately and advances time", func(t *testing.T) {
		clock := NewFakeClock(start)

		select {
		case fired := <-clock.After(20 * time.Millisecond):
			want := start.Add(20 * time.Millisecond)
			if !fired.Equal(want) {
				t.Errorf("After() fired with %v, want %v", fired, want)
			}
		default:
			t.Fatal("After() channel was not ready")
		}

		if got := clock.Now(); !got.Equal(start.Add(20 * time.Millisecond)) {
			t.Errorf("Now() after After(20ms) = %v", got)
		}
	})

	t.Run("non-positive duration does not move time", func(t *testing.T) {
		clock := NewFakeClock(start)
		<-clock.After(0)
		<-clock.After(-time.Second)

		if got := clock.Now(); !got.Equal(start) {
			t.Errorf("Now() = %v, want %v", got, start)
		}
	})
}

func TestFakeClock_Advance(t *testing.T) {
	initialTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := NewFakeClock(initialTime)

	t.Run("multiple advances accumulate", func(t *testing.T) {
		clock.Advance(1 * time.Second)
		clock.Advance(500 * time.Millisecond)
		clock.Advance(20 * time.Millisecond)

		want := initialTime.Add(1520 * time.Millisecond)
		if actual := clock.Now(); !actual.Equal(want) {
			t.Errorf("After multiple advances, Now() = %v, want %v", actual, want)
		}
	})

	t.Run("set can move time backwards", func(t *testing.T) {
		clock.Set(initialTime)
		if actual := clock.Now(); !actual.Equal(initialTime) {
			t.Errorf("After Set(), Now() = %v, want %v", actual, initialTime)
		}
	})
}
