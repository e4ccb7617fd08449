package utils

import "testing"

func TestKeySet(t *testing.T) {
	tests := []struct {
		key       string
		wantAdded bool
		wantSize  int
	}{
		{"1651363200000|1 main st|200000", true, 1},
		{"1651363200000|1 main st|200000", false, 1},
		{"1651363200000|2 oak ave|150000", true, 2},
		{"", true, 3},
		{"", false, 3},
	}

	s := NewKeySet()
	for _, tt := range tests {
		if got := s.Add(tt.key); got != tt.wantAdded {
			t.Errorf("Add(%q): got %v, want %v", tt.key, got, tt.wantAdded)
		}
		if !s.Contains(tt.key) {
			t.Errorf("Contains(%q) should be true after Add", tt.key)
		}
		if s.Size() != tt.wantSize {
			t.Errorf("Size after %q: got %d, want %d", tt.key, s.Size(), tt.wantSize)
		}
	}

	if s.Contains("missing") {
		t.Error("Contains should be false for a key never added")
	}
}
