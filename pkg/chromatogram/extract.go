// Package chromatogram turns Sanger trace files into labeled chromatogram
// images: tag extraction, display-window trimming and PNG rendering.
package chromatogram

import (
	"fmt"
	"strings"

	"ab1png/pkg/abif"

	"github.com/samber/lo"
)

// DefaultChannelOrder is substituted when the FWO_ tag is absent or carries
// no valid base letters.
var DefaultChannelOrder = []string{"G", "A", "T", "C"}

// TraceData is everything one render needs from a trace file. The four
// intensity sequences in Traces are keyed by base letter; ChannelOrder keeps
// the order they were read from the file. Positions may be nil on older or
// degenerate files.
type TraceData struct {
	ChannelOrder []string
	Traces       map[string][]int
	Seq          string
	Positions    []int
}

// Length is the trace length, taken from the first channel.
func (td *TraceData) Length() int {
	if len(td.ChannelOrder) == 0 {
		return 0
	}
	return len(td.Traces[td.ChannelOrder[0]])
}

// Extract maps the container's raw tags into TraceData:
//
//   - base calls from PBAS 2, falling back to PBAS 1
//   - per-base trace positions from PLOC 2 when present
//   - channel order from FWO_ 1, defaulting to G,A,T,C
//   - intensities from DATA 9..12, each required
func Extract(tc abif.TraceContainer) (*TraceData, error) {
	seq, ok := tc.Text("PBAS", 2)
	if !ok {
		seq, ok = tc.Text("PBAS", 1)
	}
	if !ok {
		return nil, &MissingFieldError{Tag: "PBAS"}
	}

	positions, _ := tc.Samples("PLOC", 2)

	order := DefaultChannelOrder
	if fwo, ok := tc.Text("FWO_", 1); ok {
		letters := lo.Filter(strings.Split(strings.ToUpper(fwo), ""), func(s string, _ int) bool {
			return s == "A" || s == "C" || s == "G" || s == "T"
		})
		if len(letters) > 0 {
			order = letters
		}
	}

	var channels [4][]int
	for i := int32(0); i < 4; i++ {
		tag := fmt.Sprintf("DATA%d", 9+i)
		samples, ok := tc.Samples("DATA", 9+i)
		if !ok {
			return nil, &MissingFieldError{Tag: tag}
		}
		channels[i] = samples
	}

	td := &TraceData{
		Traces:    make(map[string][]int, 4),
		Seq:       seq,
		Positions: positions,
	}
	// zip channel order with DATA9..12; fewer than 4 letters populates
	// fewer bases, which downstream tolerates
	for i, base := range order {
		if i == len(channels) {
			break
		}
		td.ChannelOrder = append(td.ChannelOrder, base)
		td.Traces[base] = channels[i]
	}
	// a malformed FWO_ can repeat a letter; the repeated channel wins,
	// the key stays unique
	td.ChannelOrder = lo.Uniq(td.ChannelOrder)

	return td, nil
}

// ExtractFile opens path as an ABIF container and extracts it. No file
// handle is retained after return.
func ExtractFile(path string) (*TraceData, error) {
	f, err := abif.Open(path)
	if err != nil {
		return nil, err
	}
	return Extract(f)
}
