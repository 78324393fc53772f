package notify

import (
	"fmt"
	"testing"
)

func TestCenter(t *testing.T) {
	t.Run("drain returns pending toasts once", func(t *testing.T) {
		c := NewCenter()
		c.Success("saved")
		c.Error("boom")

		got := c.Drain()
		if len(got) != 2 {
			t.Fatalf("drained %d, want 2", len(got))
		}
		if got[0].Level != LevelSuccess || got[1].Message != "boom" {
			t.Errorf("unexpected order: %+v", got)
		}
		if got[0].ID == "" || got[0].ID == got[1].ID {
			t.Error("toasts need distinct ids")
		}

		if again := c.Drain(); len(again) != 0 {
			t.Errorf("second drain should be empty, got %d", len(again))
		}
	})

	t.Run("retention is bounded", func(t *testing.T) {
		c := NewCenter()
		for i := 0; i < 80; i++ {
			c.Info(fmt.Sprintf("msg %d", i))
		}
		got := c.Drain()
		if len(got) != 50 {
			t.Fatalf("kept %d, want 50", len(got))
		}
		if got[0].Message != "msg 30" {
			t.Errorf("oldest kept = %q, want msg 30", got[0].Message)
		}
	})
}
