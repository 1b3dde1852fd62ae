package main

import "testing"

func TestResolveStepsDefault(t *testing.T) {
	got, err := resolveSteps(nil, 50, 0)
	if err != nil {
		t.Fatalf("resolveSteps() error = %v", err)
	}
	if got[0] != 0 || got[len(got)-1] != 49 {
		t.Fatalf("steps = %v, want 0 ... 49", got)
	}
	if len(got) != 26 {
		t.Fatalf("len = %d, want 26", len(got))
	}
}

func TestResolveStepsEvery(t *testing.T) {
	got, err := resolveSteps(nil, 6, 5)
	if err != nil {
		t.Fatalf("resolveSteps() error = %v", err)
	}
	want := []int{0, 5}
	if len(got) != len(want) || got[0] != 0 || got[1] != 5 {
		t.Fatalf("steps = %v, want %v", got, want)
	}
}

func TestResolveStepsExplicit(t *testing.T) {
	got, err := resolveSteps([]string{"3", "0"}, 4, 0)
	if err != nil {
		t.Fatalf("resolveSteps() error = %v", err)
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 0 {
		t.Fatalf("steps = %v, want [3 0]", got)
	}

	for _, args := range [][]string{{"4"}, {"-1"}, {"x"}} {
		if _, err := resolveSteps(args, 4, 0); err == nil {
			t.Fatalf("resolveSteps(%v) error = nil", args)
		}
	}
}
