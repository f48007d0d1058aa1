package id

import "testing"

func TestNew_MonotonicAndUnique(t *testing.T) {
	prev := New()
	seen := map[int64]bool{prev: true}

	for i := 0; i < 1000; i++ {
		next := New()
		if next <= prev {
			t.Fatalf("expected increasing ids, got %d after %d", next, prev)
		}
		if seen[next] {
			t.Fatalf("duplicate id %d", next)
		}
		seen[next] = true
		prev = next
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("not-a-number"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}

	n, err := Parse("1234567890")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1234567890 {
		t.Fatalf("expected 1234567890, got %d", n)
	}
}
