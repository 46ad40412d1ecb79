package marketdata

import "testing"

func TestSimulatedNextPrice(t *testing.T) {
	t.Run("stays_within_move_bounds", func(t *testing.T) {
		src := NewSimulatedWithSeed(0.02, 1)
		last := 100.0
		for i := 0; i < 1000; i++ {
			next := src.NextPrice("RELIANCE", last)
			if next < last*0.98 || next > last*1.02 {
				t.Fatalf("tick %d moved outside ±2%%: %f -> %f", i, last, next)
			}
			last = next
		}
	})

	t.Run("never_returns_nonpositive", func(t *testing.T) {
		src := NewSimulatedWithSeed(0.02, 2)
		last := tickFloor
		for i := 0; i < 1000; i++ {
			last = src.NextPrice("PENNY", last)
			if last <= 0 {
				t.Fatalf("tick %d produced nonpositive price %f", i, last)
			}
		}
	})

	t.Run("zero_last_price_starts_at_floor", func(t *testing.T) {
		src := NewSimulatedWithSeed(0.02, 3)
		if got := src.NextPrice("NEW", 0); got != tickFloor {
			t.Errorf("expected floor price %f, got %f", tickFloor, got)
		}
	})

	t.Run("deterministic_with_seed", func(t *testing.T) {
		a := NewSimulatedWithSeed(0.02, 7)
		b := NewSimulatedWithSeed(0.02, 7)
		for i := 0; i < 10; i++ {
			if a.NextPrice("X", 100) != b.NextPrice("X", 100) {
				t.Fatal("same seed produced different walks")
			}
		}
	})
}
