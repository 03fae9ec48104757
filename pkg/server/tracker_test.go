package server

import (
	"sync"
	"testing"

	"pgregory.net/rapid"
)

func TestTrackerRecordAndCount(t *testing.T) {
	tr := NewUsageTracker()

	if got := tr.Record("a.txt"); got != 1 {
		t.Fatalf("first record should return 1, got %d", got)
	}
	if got := tr.Record("a.txt"); got != 2 {
		t.Fatalf("second record should return 2, got %d", got)
	}
	if got := tr.Count("a.txt"); got != 2 {
		t.Fatalf("expected count 2, got %d", got)
	}
	if got := tr.Count("never.txt"); got != 0 {
		t.Fatalf("expected count 0 for unknown file, got %d", got)
	}
	if got := tr.Len(); got != 1 {
		t.Fatalf("expected 1 tracked file, got %d", got)
	}
}

func TestTrackerTopEmpty(t *testing.T) {
	tr := NewUsageTracker()

	name, count := tr.Top()
	if name != "" || count != 0 {
		t.Fatalf("empty tracker should report (\"\", 0), got (%q, %d)", name, count)
	}
}

func TestTrackerTopPicksHighestCount(t *testing.T) {
	tr := NewUsageTracker()
	tr.Record("a.txt")
	tr.Record("b.txt")
	tr.Record("b.txt")

	name, count := tr.Top()
	if name != "b.txt" || count != 2 {
		t.Fatalf("expected (b.txt, 2), got (%q, %d)", name, count)
	}
}

func TestTrackerTopTieBreaksLexicographically(t *testing.T) {
	tr := NewUsageTracker()
	tr.Seed(map[string]int64{
		"zebra.txt":  3,
		"apple.txt":  3,
		"mango.txt":  3,
		"cherry.txt": 1,
	})

	name, count := tr.Top()
	if name != "apple.txt" || count != 3 {
		t.Fatalf("expected tie to resolve to (apple.txt, 3), got (%q, %d)", name, count)
	}
}

func TestTrackerSeedThenRecord(t *testing.T) {
	tr := NewUsageTracker()
	tr.Seed(map[string]int64{"old.txt": 41})

	if got := tr.Record("old.txt"); got != 42 {
		t.Fatalf("expected seeded count to continue at 42, got %d", got)
	}
}

func TestTrackerConcurrentRecords(t *testing.T) {
	tr := NewUsageTracker()

	const workers = 50
	const perWorker = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				tr.Record("shared.bin")
			}
		}()
	}
	wg.Wait()

	if got := tr.Count("shared.bin"); got != workers*perWorker {
		t.Fatalf("expected count %d, got %d", workers*perWorker, got)
	}
}

// TestTrackerRapidCounts tests that for any sequence of records, each file's
// count equals the number of times it was recorded.
func TestTrackerRapidCounts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := NewUsageTracker()
		names := rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "c", "d"}), 0, 200).Draw(t, "names")

		want := make(map[string]int64)
		for _, name := range names {
			want[name]++
			tr.Record(name)
		}

		for name, count := range want {
			if got := tr.Count(name); got != count {
				t.Fatalf("count mismatch for %q: got %d, want %d", name, got, count)
			}
		}

		topName, topCount := tr.Top()
		for name, count := range want {
			if count > topCount {
				t.Fatalf("top (%q, %d) missed higher count (%q, %d)", topName, topCount, name, count)
			}
			if count == topCount && name < topName {
				t.Fatalf("top %q is not the lexicographically smallest among count %d (found %q)", topName, topCount, name)
			}
		}
	})
}
