package metrics

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestMeanFrame(t *testing.T) {
	m := NewMeanFrame()

	if m.Value() != 0 {
		t.Error("expected 0 with no samples")
	}

	m.Observe(10 * time.Millisecond)
	m.Observe(20 * time.Millisecond)

	if math.Abs(m.Value()-15) > 1e-9 {
		t.Errorf("expected 15ms, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected 0 after reset")
	}
}

func TestMaxFrame(t *testing.T) {
	m := NewMaxFrame()
	for _, d := range []time.Duration{3, 9, 4} {
		m.Observe(d * time.Millisecond)
	}
	if m.Value() != 9 {
		t.Errorf("expected 9ms, got %f", m.Value())
	}
}

func TestBudgetMisses(t *testing.T) {
	b := NewBudgetMisses(16 * time.Millisecond)
	for _, d := range []time.Duration{10, 17, 12, 30} {
		b.Observe(d * time.Millisecond)
	}
	if b.Value() != 0.5 {
		t.Errorf("expected 0.5 miss ratio, got %f", b.Value())
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		q        float64
		expected float64
		name     string
	}{
		{50, 50, "p50_frame_ms"},
		{95, 95, "p95_frame_ms"},
		{100, 100, "p100_frame_ms"},
		{0, 1, "p0_frame_ms"},
		{99.5, 100, "p99.5_frame_ms"},
	}

	for _, tt := range tests {
		p := NewPercentile(tt.q)
		for i := 100; i >= 1; i-- {
			p.Observe(time.Duration(i) * time.Millisecond)
		}
		if p.Value() != tt.expected {
			t.Errorf("q=%v: expected %v, got %v", tt.q, tt.expected, p.Value())
		}
		if p.Name() != tt.name {
			t.Errorf("expected name %s, got %s", tt.name, p.Name())
		}
	}
}

func TestFrameBudget(t *testing.T) {
	f := NewFrameBudget(50)
	if f.Budget != 20*time.Millisecond {
		t.Fatalf("expected 20ms budget, got %v", f.Budget)
	}

	f.Observe(10 * time.Millisecond)
	f.Observe(30 * time.Millisecond)

	v := f.Values()
	if v["mean_frame_ms"] != 20 {
		t.Errorf("expected mean 20, got %f", v["mean_frame_ms"])
	}
	if v["budget_miss_ratio"] != 0.5 {
		t.Errorf("expected miss ratio 0.5, got %f", v["budget_miss_ratio"])
	}

	boom := errors.New("boom")
	if err := f.Time(func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}

	f.Reset()
	if f.Values()["max_frame_ms"] != 0 {
		t.Error("expected reset")
	}
}

func TestPercentileWindow(t *testing.T) {
	p := NewPercentile(100)
	p.Observe(500 * time.Millisecond)
	for i := 0; i < PercentileWindow; i++ {
		p.Observe(time.Millisecond)
	}
	if p.Value() != 1 {
		t.Errorf("expected the old sample to age out, got %v", p.Value())
	}
}
