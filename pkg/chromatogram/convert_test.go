package chromatogram

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"ab1png/pkg/abif"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type testTag struct {
	name   string
	number int32
	elem   int16
	size   int16
	data   []byte
}

func testCharTag(name string, number int32, s string) testTag {
	return testTag{name: name, number: number, elem: 2, size: 1, data: []byte(s)}
}

func testShortTag(name string, number int32, vals []int) testTag {
	data := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint16(data[i*2:], uint16(int16(v)))
	}
	return testTag{name: name, number: number, elem: 4, size: 2, data: data}
}

// buildAB1 assembles a minimal but valid ABIF byte stream. Tags named in
// skip are left out.
func buildAB1(t *testing.T, skip ...string) []byte {
	t.Helper()

	channel := make([]int, 300)
	for i := 50; i < 250; i++ {
		channel[i] = 400
	}
	all := []testTag{
		testCharTag("PBAS", 2, "ACGTACGTACGT"),
		testCharTag("FWO_", 1, "GATC"),
		testShortTag("PLOC", 2, []int{60, 80, 100, 120, 140, 160, 180, 200, 210, 220, 230, 240}),
		testShortTag("DATA", 9, channel),
		testShortTag("DATA", 10, channel),
		testShortTag("DATA", 11, channel),
		testShortTag("DATA", 12, channel),
	}
	var tags []testTag
	for _, tg := range all {
		skipped := false
		for _, s := range skip {
			if tg.name+strconv.Itoa(int(tg.number)) == s || tg.name == s {
				skipped = true
			}
		}
		if !skipped {
			tags = append(tags, tg)
		}
	}

	var blob bytes.Buffer
	dataStart := int32(6 + 28)
	offsets := make([]int32, len(tags))
	for i, tg := range tags {
		if len(tg.data) > 4 {
			offsets[i] = dataStart + int32(blob.Len())
			blob.Write(tg.data)
		}
	}
	dirOff := dataStart + int32(blob.Len())

	entry := func(out *bytes.Buffer, name string, number int32, elem, size int16, count, dataSize, dataOff int32, inline []byte) {
		out.WriteString(name)
		binary.Write(out, binary.BigEndian, number)
		binary.Write(out, binary.BigEndian, elem)
		binary.Write(out, binary.BigEndian, size)
		binary.Write(out, binary.BigEndian, count)
		binary.Write(out, binary.BigEndian, dataSize)
		if inline != nil {
			padded := make([]byte, 4)
			copy(padded, inline)
			out.Write(padded)
		} else {
			binary.Write(out, binary.BigEndian, dataOff)
		}
		binary.Write(out, binary.BigEndian, int32(0))
	}

	out := &bytes.Buffer{}
	out.WriteString("ABIF")
	binary.Write(out, binary.BigEndian, uint16(101))
	entry(out, "tdir", 1, 1023, 28, int32(len(tags)), int32(len(tags)*28), dirOff, nil)
	out.Write(blob.Bytes())
	for i, tg := range tags {
		count := int32(len(tg.data)) / int32(tg.size)
		if len(tg.data) <= 4 {
			entry(out, tg.name, tg.number, tg.elem, tg.size, count, int32(len(tg.data)), 0, tg.data)
		} else {
			entry(out, tg.name, tg.number, tg.elem, tg.size, count, int32(len(tg.data)), offsets[i], nil)
		}
	}
	return out.Bytes()
}

func writeAB1(t *testing.T, path string, skip ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, buildAB1(t, skip...), 0644))
}

func TestConvertSingleFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sample.ab1")
	writeAB1(t, in)
	outDir := filepath.Join(dir, "out")

	res := Convert(in, outDir, Options{DPI: 100})
	require.True(t, res.Ok, "convert failed: %v", res.Err)
	assert.Equal(t, filepath.Join(outDir, "sample.png"), res.Output)

	info, err := os.Stat(res.Output)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestConvertMissingChannelNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.ab1")
	writeAB1(t, in, "DATA10")
	outDir := filepath.Join(dir, "out")

	res := Convert(in, outDir, Options{DPI: 100})
	require.False(t, res.Ok)

	var mfe *MissingFieldError
	require.ErrorAs(t, res.Err, &mfe)
	assert.Equal(t, "DATA10", mfe.Tag)

	_, err := os.Stat(filepath.Join(outDir, "broken.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestConvertGarbageFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "garbage.ab1")
	require.NoError(t, os.WriteFile(in, []byte("this is not a trace"), 0644))

	res := Convert(in, filepath.Join(dir, "out"), Options{})
	require.False(t, res.Ok)

	var fe *abif.FormatError
	require.ErrorAs(t, res.Err, &fe)
}

func TestConvertPathBatch(t *testing.T) {
	dir := t.TempDir()
	inDir := filepath.Join(dir, "in")
	require.NoError(t, os.MkdirAll(inDir, 0755))

	writeAB1(t, filepath.Join(inDir, "a.ab1"))
	writeAB1(t, filepath.Join(inDir, "b.ABI")) // extension match is case-insensitive
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "c.ab1"), []byte("junk"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("skip me"), 0644))

	outDir := filepath.Join(dir, "out")
	results, err := ConvertPath(inDir, outDir, Options{DPI: 100})
	require.NoError(t, err)
	require.Len(t, results, 3)

	var ok, failed int
	for _, r := range results {
		if r.Ok {
			ok++
			_, err := os.Stat(r.Output)
			assert.NoError(t, err)
		} else {
			failed++
			assert.Error(t, r.Err)
		}
	}
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)

	_, err = os.Stat(filepath.Join(outDir, "a.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "b.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "c.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestConvertPathSingleFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "only.ab1")
	writeAB1(t, in)

	results, err := ConvertPath(in, filepath.Join(dir, "out"), Options{DPI: 100})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Ok)
}

func TestConvertPathMissingInput(t *testing.T) {
	_, err := ConvertPath(filepath.Join(t.TempDir(), "nope"), t.TempDir(), Options{})
	require.Error(t, err)
}

func TestConvertPathEmptyDir(t *testing.T) {
	results, err := ConvertPath(t.TempDir(), t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIsTraceFile(t *testing.T) {
	assert.True(t, IsTraceFile("x.ab1"))
	assert.True(t, IsTraceFile("x.AB1"))
	assert.True(t, IsTraceFile("x.abi"))
	assert.True(t, IsTraceFile("/some/dir/x.Abi"))
	assert.False(t, IsTraceFile("x.png"))
	assert.False(t, IsTraceFile("ab1"))
	assert.False(t, IsTraceFile("x.ab1.txt"))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "sample.png", OutputName("/a/b/sample.ab1"))
	assert.Equal(t, "sample.png", OutputName("sample.ABI"))
}

func TestWriteReport(t *testing.T) {
	results := []Result{
		{File: "a.ab1", Output: "out/a.png", Ok: true},
		{File: "b.ab1", Err: &MissingFieldError{Tag: "DATA9"}},
	}
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteReport(path, results))

	xlsx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer xlsx.Close()

	v, err := xlsx.GetCellValue("Results", "A1")
	require.NoError(t, err)
	assert.Equal(t, "File", v)

	v, err = xlsx.GetCellValue("Results", "C2")
	require.NoError(t, err)
	assert.Equal(t, "OK", v)

	v, err = xlsx.GetCellValue("Results", "C3")
	require.NoError(t, err)
	assert.Equal(t, "ERROR", v)
}
