package domain

import "testing"

func TestEffective(t *testing.T) {
	tests := []struct {
		name          string
		state         ViewState
		id            string
		onActiveTrail bool
		want          bool
	}{
		{name: "Absent Off Trail", state: NewViewState(), id: "a", want: false},
		{name: "Absent On Trail", state: NewViewState(), id: "a", onActiveTrail: true, want: true},
		{name: "Explicit True Off Trail", state: WithExpanded(NewViewState(), "a", true), id: "a", want: true},
		{name: "Explicit False On Trail", state: WithExpanded(NewViewState(), "a", false), id: "a", onActiveTrail: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Effective(tt.id, tt.onActiveTrail); got != tt.want {
				t.Errorf("Effective(%q, %v) = %v, want %v", tt.id, tt.onActiveTrail, got, tt.want)
			}
		})
	}
}

func TestWithToggled(t *testing.T) {
	t.Run("Toggle Twice Restores Effective State", func(t *testing.T) {
		s := NewViewState()

		once := WithToggled(s, "a", false)
		if !once.Effective("a", false) {
			t.Fatal("first toggle should expand")
		}

		twice := WithToggled(once, "a", false)
		if twice.Effective("a", false) != s.Effective("a", false) {
			t.Errorf("double toggle changed effective state: %v", twice.Effective("a", false))
		}
	})

	t.Run("Toggle Implicitly Expanded Trail Node Records False", func(t *testing.T) {
		s := NewViewState()

		next := WithToggled(s, "a", true)
		v, ok := next.Expanded["a"]
		if !ok || v != false {
			t.Errorf("expected explicit false override, got %v (present=%v)", v, ok)
		}
	})

	t.Run("Does Not Mutate Input", func(t *testing.T) {
		s := NewViewState()
		_ = WithToggled(s, "a", false)
		if _, ok := s.Expanded["a"]; ok {
			t.Error("input state was mutated")
		}
	})
}

func TestWithAllExpanded(t *testing.T) {
	known := func(id string) bool { return id == "a" || id == "b" }

	s := WithAllExpanded(NewViewState(), []string{"a", "b", "ghost"}, known)

	if !s.Expanded["a"] || !s.Expanded["b"] {
		t.Error("known ids should be expanded")
	}
	if _, ok := s.Expanded["ghost"]; ok {
		t.Error("unknown id should be ignored silently")
	}
}

func TestWithActiveID(t *testing.T) {
	s := WithActiveID(NewViewState(), "a")
	if s.ActiveID != "a" {
		t.Fatalf("ActiveID = %q", s.ActiveID)
	}

	// Re-activating the same id is a no-op write.
	again := WithActiveID(s, "a")
	if again.ActiveID != "a" {
		t.Errorf("ActiveID = %q", again.ActiveID)
	}

	cleared := WithActiveID(s, "")
	if cleared.ActiveID != "" {
		t.Errorf("ActiveID = %q, want empty", cleared.ActiveID)
	}
}
