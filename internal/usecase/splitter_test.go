package usecase

import (
	"reflect"
	"testing"
)

func TestBlockSplitterPush(t *testing.T) {
	t.Run("returns nothing until a delimiter arrives", func(t *testing.T) {
		s := NewBlockSplitter()
		if got := s.Push("Trader Joe's\n**Address:** 123 Main"); got != nil {
			t.Errorf("Push returned %v, want nil", got)
		}
	})

	t.Run("leading delimiter produces no empty block", func(t *testing.T) {
		s := NewBlockSplitter()
		if got := s.Push("### Trader Joe's\n"); got != nil {
			t.Errorf("Push returned %v, want nil", got)
		}
	})

	t.Run("second delimiter completes the first block", func(t *testing.T) {
		s := NewBlockSplitter()
		s.Push("### Trader Joe's\n- Milk: $3.99\n")
		got := s.Push("### Safeway\n")
		want := []string{"Trader Joe's\n- Milk: $3.99"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Push returned %v, want %v", got, want)
		}
	})

	t.Run("one fragment can complete multiple blocks", func(t *testing.T) {
		s := NewBlockSplitter()
		got := s.Push("### A\nx\n### B\ny\n### C")
		want := []string{"A\nx", "B\ny"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Push returned %v, want %v", got, want)
		}
	})

	t.Run("delimiter split across fragments", func(t *testing.T) {
		s := NewBlockSplitter()
		if got := s.Push("### A\nx\n#"); got != nil {
			t.Errorf("partial delimiter completed blocks early: %v", got)
		}
		got := s.Push("## B\ny")
		want := []string{"A\nx"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Push returned %v, want %v", got, want)
		}
	})
}

func TestBlockSplitterFlush(t *testing.T) {
	t.Run("returns the trailing block", func(t *testing.T) {
		s := NewBlockSplitter()
		s.Push("### A\nx\n### B\ny")
		block, ok := s.Flush()
		if !ok || block != "B\ny" {
			t.Errorf("Flush = (%q, %v), want (%q, true)", block, ok, "B\ny")
		}
	})

	t.Run("empty buffer flushes nothing", func(t *testing.T) {
		s := NewBlockSplitter()
		if block, ok := s.Flush(); ok {
			t.Errorf("Flush on empty buffer returned %q", block)
		}
	})

	t.Run("whitespace-only remainder flushes nothing", func(t *testing.T) {
		s := NewBlockSplitter()
		s.Push("### A\nx\n###  \n")
		s.Flush()
		if block, ok := s.Flush(); ok {
			t.Errorf("second Flush returned %q", block)
		}
	})
}

// Fragmentation must not affect output: any way of slicing the same stream
// into fragments yields the same block sequence.
func TestBlockSplitterFragmentationInvariance(t *testing.T) {
	full := "### Trader Joe's\n**Address:** 123 Main St\n- Milk: $3.99\n### Safeway\n**Address:** 456 Oak Ave\n- Milk: $4.49\n### Costco\n- Milk: $2.99\n"

	collect := func(fragments []string) []string {
		s := NewBlockSplitter()
		var blocks []string
		for _, f := range fragments {
			blocks = append(blocks, s.Push(f)...)
		}
		if block, ok := s.Flush(); ok {
			blocks = append(blocks, block)
		}
		return blocks
	}

	want := collect([]string{full})
	if len(want) != 3 {
		t.Fatalf("expected 3 blocks from full stream, got %d: %v", len(want), want)
	}

	for _, size := range []int{1, 2, 3, 7, 16, 100} {
		var fragments []string
		for i := 0; i < len(full); i += size {
			end := i + size
			if end > len(full) {
				end = len(full)
			}
			fragments = append(fragments, full[i:end])
		}
		got := collect(fragments)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("fragment size %d: got %v, want %v", size, got, want)
		}
	}
}
