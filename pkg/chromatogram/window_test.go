package chromatogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func flatTrace(length int) *TraceData {
	td := &TraceData{
		ChannelOrder: []string{"G", "A", "T", "C"},
		Traces:       make(map[string][]int, 4),
	}
	for _, base := range td.ChannelOrder {
		td.Traces[base] = make([]int, length)
	}
	return td
}

func TestWindowAllZero(t *testing.T) {
	td := flatTrace(500)
	start, end := td.Window()
	assert.Equal(t, 0, start)
	assert.Equal(t, 499, end)
}

func TestWindowSingleSpike(t *testing.T) {
	td := flatTrace(2000)
	td.Traces["A"][500] = 1000

	start, end := td.Window()
	assert.Equal(t, 400, start)
	assert.Equal(t, 600, end)
}

func TestWindowSpikeNearEdges(t *testing.T) {
	td := flatTrace(2000)
	td.Traces["A"][5] = 1000

	start, end := td.Window()
	assert.Equal(t, 0, start)
	assert.Equal(t, 105, end)

	td = flatTrace(2000)
	td.Traces["T"][1995] = 1000
	start, end = td.Window()
	assert.Equal(t, 1895, start)
	assert.Equal(t, 1999, end)
}

func TestWindowFromBasePositions(t *testing.T) {
	td := flatTrace(1000)
	td.Positions = []int{10, 20, 30}

	start, end := td.Window()
	assert.Equal(t, 0, start)
	assert.Equal(t, 130, end)
}

func TestWindowPositionsBeatSignal(t *testing.T) {
	td := flatTrace(5000)
	td.Traces["G"][4000] = 1000 // ignored, positions are present
	td.Positions = []int{300, 400}

	start, end := td.Window()
	assert.Equal(t, 200, start)
	assert.Equal(t, 500, end)
}

func TestWindowThresholdExcludesNoise(t *testing.T) {
	td := flatTrace(3000)
	// real peak region at [1000, 1200], sub-1% noise everywhere else
	for i := 1000; i <= 1200; i++ {
		td.Traces["C"][i] = 2000
	}
	for i := 0; i < 3000; i += 97 {
		td.Traces["A"][i] = 5 // 0.25% of the merged peak
	}

	start, end := td.Window()
	assert.Equal(t, 900, start)
	assert.Equal(t, 1300, end)
}

func TestWindowDoesNotMutate(t *testing.T) {
	td := flatTrace(100)
	td.Traces["A"][50] = 7
	td.Window()
	assert.Equal(t, 7, td.Traces["A"][50])
	sum := 0
	for _, v := range td.Traces["G"] {
		sum += v
	}
	assert.Equal(t, 0, sum)
}

func TestWindowEmptyTrace(t *testing.T) {
	td := &TraceData{}
	start, end := td.Window()
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}
