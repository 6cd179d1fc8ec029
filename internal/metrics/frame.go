package metrics

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// Metric accumulates frame durations into a single figure.
type Metric interface {
	Name() string
	Observe(d time.Duration)
	Value() float64
	Reset()
}

// MeanFrame is the average frame time in milliseconds.
type MeanFrame struct {
	sum     time.Duration
	samples int
}

func NewMeanFrame() *MeanFrame { return &MeanFrame{} }

func (m *MeanFrame) Name() string { return "mean_frame_ms" }

func (m *MeanFrame) Observe(d time.Duration) {
	m.sum += d
	m.samples++
}

func (m *MeanFrame) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return ms(m.sum) / float64(m.samples)
}

func (m *MeanFrame) Reset() {
	m.sum = 0
	m.samples = 0
}

// MaxFrame is the slowest frame in milliseconds.
type MaxFrame struct {
	max time.Duration
}

func NewMaxFrame() *MaxFrame { return &MaxFrame{} }

func (m *MaxFrame) Name() string { return "max_frame_ms" }

func (m *MaxFrame) Observe(d time.Duration) {
	if d > m.max {
		m.max = d
	}
}

func (m *MaxFrame) Value() float64 { return ms(m.max) }
func (m *MaxFrame) Reset()         { m.max = 0 }

// BudgetMisses is the fraction of frames slower than the budget.
type BudgetMisses struct {
	budget  time.Duration
	misses  int
	samples int
}

func NewBudgetMisses(budget time.Duration) *BudgetMisses {
	return &BudgetMisses{budget: budget}
}

func (b *BudgetMisses) Name() string { return "budget_miss_ratio" }

func (b *BudgetMisses) Observe(d time.Duration) {
	if d > b.budget {
		b.misses++
	}
	b.samples++
}

func (b *BudgetMisses) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return float64(b.misses) / float64(b.samples)
}

func (b *BudgetMisses) Reset() {
	b.misses = 0
	b.samples = 0
}

// PercentileWindow is how many recent frames a Percentile ranks.
const PercentileWindow = 1024

// Percentile reports the q-th percentile in milliseconds over the last
// PercentileWindow samples.
type Percentile struct {
	q       float64
	samples []time.Duration
	next    int
}

func NewPercentile(q float64) *Percentile {
	return &Percentile{q: math.Max(0, math.Min(100, q))}
}

func (p *Percentile) Name() string { return "p" + trimFloat(p.q) + "_frame_ms" }

func (p *Percentile) Observe(d time.Duration) {
	if len(p.samples) < PercentileWindow {
		p.samples = append(p.samples, d)
		return
	}
	p.samples[p.next] = d
	p.next = (p.next + 1) % PercentileWindow
}

// Value uses nearest-rank on a sorted copy.
func (p *Percentile) Value() float64 {
	n := len(p.samples)
	if n == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), p.samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	rank := int(math.Ceil(p.q / 100 * float64(n)))
	rank = min(max(rank, 1), n)
	return ms(sorted[rank-1])
}

func (p *Percentile) Reset() { p.samples, p.next = p.samples[:0], 0 }

// FrameBudget bundles the frame metrics for one target frame rate.
type FrameBudget struct {
	Budget  time.Duration
	Metrics []Metric
}

func NewFrameBudget(fps float64) *FrameBudget {
	budget := time.Duration(float64(time.Second) / fps)
	return &FrameBudget{
		Budget: budget,
		Metrics: []Metric{
			NewMeanFrame(),
			NewPercentile(95),
			NewMaxFrame(),
			NewBudgetMisses(budget),
		},
	}
}

func (f *FrameBudget) Observe(d time.Duration) {
	for _, m := range f.Metrics {
		m.Observe(d)
	}
}

// Time runs fn and records its duration.
func (f *FrameBudget) Time(fn func() error) error {
	start := time.Now()
	err := fn()
	f.Observe(time.Since(start))
	return err
}

func (f *FrameBudget) Values() map[string]float64 {
	out := make(map[string]float64, len(f.Metrics))
	for _, m := range f.Metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (f *FrameBudget) Reset() {
	for _, m := range f.Metrics {
		m.Reset()
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
