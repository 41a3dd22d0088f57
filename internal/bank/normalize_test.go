package bank

import (
	"math/rand"
	"sort"
	"testing"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Who wrote &quot;Hamlet&quot;?", `Who wrote "Hamlet"?`},
		{"Beyonc&eacute;", "Beyoncé"},
		{"Rock &amp; Roll", "Rock & Roll"},
		{"It&#039;s", "It's"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := DecodeText(tt.raw); got != tt.want {
			t.Errorf("DecodeText(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNewRecordKeepsAllOptions(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	record, ok := NewRecord("Q", "A", []string{"B", "C", "D"}, rnd, nil)
	if !ok {
		t.Fatalf("expected record")
	}
	got := append([]string(nil), record.Options...)
	sort.Strings(got)
	want := []string{"A", "B", "C", "D"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected options %v, got %v", want, record.Options)
		}
	}
}

func TestNewRecordRejectsBrokenInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	tests := []struct {
		name      string
		correct   string
		incorrect []string
	}{
		{"single option", "A", nil},
		{"too many options", "A", []string{"B", "C", "D", "E"}},
		{"correct answer duplicated", "A", []string{"A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := NewRecord("Q", tt.correct, tt.incorrect, rnd, nil); ok {
				t.Fatalf("expected record to be rejected")
			}
		})
	}
}

func TestNewRecordShuffleIsUniformEnough(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	positions := make(map[int]int)
	for i := 0; i < 400; i++ {
		record, _ := NewRecord("Q", "A", []string{"B", "C", "D"}, rnd, nil)
		for idx, opt := range record.Options {
			if opt == "A" {
				positions[idx]++
			}
		}
	}
	for idx := 0; idx < 4; idx++ {
		if positions[idx] < 50 {
			t.Fatalf("correct answer rarely lands at %d: %v", idx, positions)
		}
	}
}
