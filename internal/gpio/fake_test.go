package gpio

import (
	"errors"
	"testing"
)

func TestFakeChannelReadInput(t *testing.T) {
	f := NewFakeChannel([]bool{true, false, true})

	want := []bool{true, false, true, true} // last level repeats
	for i, w := range want {
		level, err := f.ReadInput()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if level != w {
			t.Errorf("read %d: got %v, want %v", i, level, w)
		}
	}
}

func TestFakeChannelNoLevels(t *testing.T) {
	f := NewFakeChannel(nil)

	_, err := f.ReadInput()
	if err == nil {
		t.Error("expected error with no levels")
	}
}

func TestFakeChannelReadError(t *testing.T) {
	f := NewFakeChannel([]bool{true})
	f.ReadError = errors.New("simulated error")

	_, err := f.ReadInput()
	if err == nil {
		t.Error("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeChannelRecordsOutput(t *testing.T) {
	f := NewFakeChannel([]bool{true})

	if f.Driven {
		t.Error("fault line should float initially")
	}

	if err := f.DriveLow(); err != nil {
		t.Fatalf("DriveLow: %v", err)
	}
	if !f.Driven {
		t.Error("expected Driven=true after DriveLow")
	}

	if err := f.FloatHigh(); err != nil {
		t.Fatalf("FloatHigh: %v", err)
	}
	if f.Driven {
		t.Error("expected Driven=false after FloatHigh")
	}

	if f.DriveLows != 1 || f.FloatHighs != 1 {
		t.Errorf("op counts: got %d drives, %d floats, want 1 each", f.DriveLows, f.FloatHighs)
	}
}

func TestFakeChannelClose(t *testing.T) {
	f := NewFakeChannel([]bool{true})

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeChannelReset(t *testing.T) {
	f := NewFakeChannel([]bool{true, false})

	f.ReadInput()
	f.DriveLow()
	f.Reset()

	level, _ := f.ReadInput()
	if level != true {
		t.Errorf("after reset: got %v, want true", level)
	}
	if f.Driven || f.DriveLows != 0 {
		t.Error("after reset: output state should be cleared")
	}
}
