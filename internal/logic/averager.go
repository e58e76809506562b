package logic

import "math"

// Averager accumulates raw samples into three parallel buffers and yields
// truncated integer means once any buffer holds Capacity values.
type Averager struct {
	capacity int
	inside   []float64
	outside  []float64
	humidity []float64
}

// NewAverager creates an Averager with window size k. k < 1 is treated as 1.
func NewAverager(k int) *Averager {
	if k < 1 {
		k = 1
	}
	return &Averager{
		capacity: k,
		inside:   make([]float64, 0, k),
		outside:  make([]float64, 0, k),
		humidity: make([]float64, 0, k),
	}
}

// Capacity returns the window size.
func (a *Averager) Capacity() int {
	return a.capacity
}

// Len returns the number of buffered values in the fullest accumulator.
func (a *Averager) Len() int {
	return max(len(a.inside), len(a.outside), len(a.humidity))
}

// Observe appends the sample to all three accumulators. When any accumulator
// reaches capacity, the means are returned and all three are cleared together.
func (a *Averager) Observe(s Sample) (Means, bool) {
	a.inside = append(a.inside, s.InsideTemp)
	a.outside = append(a.outside, s.OutsideTemp)
	a.humidity = append(a.humidity, s.OutsideHumidity)

	if len(a.inside) < a.capacity && len(a.outside) < a.capacity && len(a.humidity) < a.capacity {
		return Means{}, false
	}

	m := Means{
		InsideTemp:      truncatedMean(a.inside),
		OutsideTemp:     truncatedMean(a.outside),
		OutsideHumidity: truncatedMean(a.humidity),
	}
	a.Reset()
	return m, true
}

// Reset discards all buffered values.
func (a *Averager) Reset() {
	a.inside = a.inside[:0]
	a.outside = a.outside[:0]
	a.humidity = a.humidity[:0]
}

// truncatedMean divides the real-valued sum by the count and truncates toward zero.
func truncatedMean(values []float64) int {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return int(math.Trunc(sum / float64(len(values))))
}
