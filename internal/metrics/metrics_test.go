package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is an in-memory Backend for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []counterCall
	histograms []histCall
	flushCount int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func install(t *testing.T) *fakeBackend {
	t.Helper()
	orig := backend
	t.Cleanup(func() { backend = orig })
	fb := &fakeBackend{}
	backend = fb
	return fb
}

func TestRecordStep(t *testing.T) {
	fb := install(t)

	RecordStep("dplace", "write", nil, 2*time.Second)
	RecordStep("dplace", "validate", errors.New("bad lat"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("got %d counters, %d histograms; want 2, 2", len(fb.counters), len(fb.histograms))
	}
	c0 := fb.counters[0]
	if c0.name != StepTotal || c0.delta != 1 {
		t.Fatalf("counter[0] = %#v; want %s delta 1", c0, StepTotal)
	}
	if c0.labels["step"] != "write" || c0.labels["status"] != StatusSuccess {
		t.Fatalf("counter[0].labels = %v", c0.labels)
	}
	if got := fb.counters[1].labels["status"]; got != StatusFailure {
		t.Fatalf("counter[1] status = %q; want %q", got, StatusFailure)
	}
	if h := fb.histograms[1]; h.name != StepDuration || h.value < 1.499 || h.value > 1.501 {
		t.Fatalf("hist[1] = %#v; want %s ~1.5", h, StepDuration)
	}
}

func TestRecordRowsAndDatasets(t *testing.T) {
	fb := install(t)

	RecordRows("dplace", "societies.csv", 2)
	RecordRows("dplace", "societies_mapping.csv", 0) // ignored
	RecordDatasets("dplace", StatusValidated)

	if len(fb.counters) != 2 {
		t.Fatalf("expected 2 counter calls, got %d", len(fb.counters))
	}
	if c := fb.counters[0]; c.name != RowsTotal || c.delta != 2 || c.labels["table"] != "societies.csv" {
		t.Fatalf("counter[0] = %#v", c)
	}
	if c := fb.counters[1]; c.name != DatasetsTotal || c.labels["status"] != StatusValidated || c.labels["job"] != "dplace" {
		t.Fatalf("counter[1] = %#v", c)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	if backend != fb {
		t.Fatal("SetBackend did not replace global backend")
	}
	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}
}
