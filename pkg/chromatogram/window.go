package chromatogram

import "github.com/samber/lo"

const (
	// windowPad absorbs peak tails on both sides of the informative region.
	windowPad = 100
	// signalRatio is the fraction of the merged peak below which samples
	// count as empty trace.
	signalRatio = 0.01
)

// Window returns the inclusive [start, end] trace-index range worth
// displaying. Base-call positions bound the region when known; otherwise the
// merged signal energy is thresholded at 1% of its peak. The range is always
// clamped to [0, Length()-1] and the receiver is never mutated.
func (td *TraceData) Window() (start, end int) {
	length := td.Length()
	if length == 0 {
		return 0, 0
	}

	if len(td.Positions) > 0 {
		start = max(lo.Min(td.Positions)-windowPad, 0)
		end = min(lo.Max(td.Positions)+windowPad, length-1)
		return start, end
	}

	// merge the four channels so one weak channel cannot skew the guess
	merged := make([]int, length)
	for _, base := range td.ChannelOrder {
		for i, v := range td.Traces[base] {
			if i < length {
				merged[i] += v
			}
		}
	}

	peak := lo.Max(merged)
	if peak <= 0 {
		return 0, length - 1
	}

	threshold := float64(peak) * signalRatio
	first, last := -1, -1
	for i, v := range merged {
		if float64(v) >= threshold {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return 0, length - 1
	}
	return max(first-windowPad, 0), min(last+windowPad, length-1)
}
