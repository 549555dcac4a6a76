package utils

// RollingAverage is the mean of the last NumSamples values added. Slots that were never written
// do not count towards the mean.
type RollingAverage struct {
	data   []float64
	pos    int
	filled int
}

// NewRollingAverage returns an empty average over at most numSamples values. numSamples below
// one is treated as one.
func NewRollingAverage(numSamples int) *RollingAverage {
	if numSamples < 1 {
		numSamples = 1
	}
	return &RollingAverage{data: make([]float64, numSamples)}
}

// NumSamples is the window size.
func (ra *RollingAverage) NumSamples() int {
	return len(ra.data)
}

// Add records x, evicting the oldest value once the window is full.
func (ra *RollingAverage) Add(x float64) {
	ra.data[ra.pos] = x
	ra.pos++
	if ra.pos >= len(ra.data) {
		ra.pos = 0
	}
	if ra.filled < len(ra.data) {
		ra.filled++
	}
}

// Average returns the mean of the retained values, 0 when empty.
func (ra *RollingAverage) Average() float64 {
	if ra.filled == 0 {
		return 0
	}
	var sum float64
	for _, d := range ra.data[:ra.filled] {
		sum += d
	}
	return sum / float64(ra.filled)
}
