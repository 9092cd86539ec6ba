package gosqs

import "testing"

func TestWithDefaultsAppliesMaxInFlightWhenUnset(t *testing.T) {
	cfg := ConsumerConfig{}.withDefaults()
	if got := cfg.maxInFlight(); got != 100 {
		t.Fatalf("expected default maxInFlight of 100, got %d", got)
	}
}

func TestWithDefaultsPreservesExplicitZeroMaxInFlightAsUnbounded(t *testing.T) {
	zero := 0
	cfg := ConsumerConfig{MaxInFlight: &zero}.withDefaults()
	if got := cfg.maxInFlight(); got != 0 {
		t.Fatalf("expected explicit 0 to survive withDefaults as unbounded, got %d", got)
	}
}

func TestWithDefaultsPreservesExplicitNonZeroMaxInFlight(t *testing.T) {
	five := 5
	cfg := ConsumerConfig{MaxInFlight: &five}.withDefaults()
	if got := cfg.maxInFlight(); got != 5 {
		t.Fatalf("expected explicit maxInFlight of 5 to survive withDefaults, got %d", got)
	}
}
