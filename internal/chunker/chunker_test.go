package chunker

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
)

// words builds a space-joined text of n distinct words.
func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "w" + strconv.Itoa(i)
	}
	return strings.Join(parts, " ")
}

func TestNew(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		c, err := New(1000, 200)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ChunkSize() != 1000 || c.Overlap() != 200 {
			t.Errorf("unexpected configuration: size=%d overlap=%d", c.ChunkSize(), c.Overlap())
		}
	})

	t.Run("overlap equal to chunk size rejected", func(t *testing.T) {
		_, err := New(100, 100)
		if err == nil {
			t.Fatal("expected error for overlap == chunk size")
		}
	})

	t.Run("overlap above chunk size rejected", func(t *testing.T) {
		_, err := New(100, 150)
		if err == nil {
			t.Fatal("expected error for overlap > chunk size")
		}
	})

	t.Run("non-positive chunk size rejected", func(t *testing.T) {
		if _, err := New(0, 0); err == nil {
			t.Fatal("expected error for zero chunk size")
		}
	})

	t.Run("negative overlap rejected", func(t *testing.T) {
		if _, err := New(100, -1); err == nil {
			t.Fatal("expected error for negative overlap")
		}
	})

	t.Run("errors wrap invalid input", func(t *testing.T) {
		_, err := New(10, 10)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	c, _ := New(100, 20)
	if got := c.Split(""); got != nil {
		t.Errorf("expected no chunks for empty text, got %d", len(got))
	}
	if got := c.Split("   \n\t "); got != nil {
		t.Errorf("expected no chunks for whitespace text, got %d", len(got))
	}
}

func TestSplit_SingleChunk(t *testing.T) {
	c, _ := New(100, 20)

	text := words(100)
	chunks := c.Split(text)
	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk when len(words) == chunk size, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Error("single chunk should equal the whole text")
	}

	if got := c.Split(words(40)); len(got) != 1 {
		t.Errorf("expected 1 chunk for short text, got %d", len(got))
	}
}

func TestSplit_StrideAndOverlap(t *testing.T) {
	c, _ := New(10, 3)
	text := words(24)

	chunks := c.Split(text)
	// stride = 7: windows [0:10) [7:17) [14:24)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	if len(first) != 10 || len(second) != 10 {
		t.Errorf("expected full windows of 10 words, got %d and %d", len(first), len(second))
	}

	// Consecutive chunks share exactly overlap words.
	sharedWant := first[7:]
	sharedGot := second[:3]
	for i := range sharedWant {
		if sharedWant[i] != sharedGot[i] {
			t.Errorf("overlap mismatch at %d: %q vs %q", i, sharedWant[i], sharedGot[i])
		}
	}
}

func TestSplit_LargeDocument(t *testing.T) {
	c, _ := New(1000, 200)
	chunks := c.Split(words(2400))

	// stride = 800: windows [0:1000) [800:1800) [1600:2400)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 2400 words, got %d", len(chunks))
	}
	sizes := []int{
		len(strings.Fields(chunks[0])),
		len(strings.Fields(chunks[1])),
		len(strings.Fields(chunks[2])),
	}
	if sizes[0] != 1000 || sizes[1] != 1000 {
		t.Errorf("expected full leading windows, got %v", sizes)
	}
	if sizes[2] >= 1000 || sizes[2] <= 0 {
		t.Errorf("final window should be a shorter remainder, got %d", sizes[2])
	}
}

func TestSplit_FullCoverage(t *testing.T) {
	c, _ := New(10, 4)
	n := 57
	chunks := c.Split(words(n))

	seen := make(map[string]bool, n)
	for _, chunk := range chunks {
		for _, w := range strings.Fields(chunk) {
			seen[w] = true
		}
	}
	if len(seen) != n {
		t.Errorf("expected every word covered, got %d of %d", len(seen), n)
	}

	// count = ceil((n - overlap) / (size - overlap)) when n > size
	want := (n - 4 + (10 - 4) - 1) / (10 - 4)
	if len(chunks) != want {
		t.Errorf("expected %d chunks, got %d", want, len(chunks))
	}
}
