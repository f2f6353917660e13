// Package abif reads the Applied Biosystems ABIF trace container used by
// .ab1/.abi Sanger chromatogram files. Only tag lookup is implemented; base
// calling itself is taken as-is from the tags written by the sequencer.
package abif

import (
	"encoding/binary"
	"fmt"
	"os"
)

// ABIF element type codes, per the ABIF file format specification.
const (
	elemByte    = 1
	elemChar    = 2
	elemWord    = 3
	elemShort   = 4
	elemLong    = 5
	elemPString = 18
	elemCString = 19
)

const (
	headerSize = 6
	entrySize  = 28
)

// TraceContainer is the capability the extractor needs from a parsed trace
// file: typed access to named tags. Text and Samples report absence via the
// bool, never by panicking on a malformed tag.
type TraceContainer interface {
	Text(name string, number int32) (string, bool)
	Samples(name string, number int32) ([]int, bool)
}

// FormatError wraps any failure to open or parse the trace container.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("abif: cannot read %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

type tagKey struct {
	name   string
	number int32
}

type entry struct {
	elemType  int16
	elemSize  int16
	elemCount int32
	data      []byte
}

// File is an eagerly parsed ABIF container. All tag data is copied out of
// the file during Open, so no OS handle outlives the call.
type File struct {
	Path    string
	Version uint16

	tags map[tagKey]entry
}

// Open reads and parses an ABIF file. A missing, truncated or non-ABIF file
// yields a *FormatError.
func Open(path string) (*File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	f, err := parse(buf)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	f.Path = path
	return f, nil
}

func parse(buf []byte) (*File, error) {
	if len(buf) < headerSize+entrySize {
		return nil, fmt.Errorf("file too short: %d bytes", len(buf))
	}
	if string(buf[0:4]) != "ABIF" {
		return nil, fmt.Errorf("bad magic %q", buf[0:4])
	}

	f := &File{
		Version: binary.BigEndian.Uint16(buf[4:6]),
		tags:    make(map[tagKey]entry),
	}

	// The root entry describes the directory: element count is the number
	// of 28-byte entries, data offset is their position in the file.
	count := int32(binary.BigEndian.Uint32(buf[headerSize+16 : headerSize+20]))
	dirOff := int32(binary.BigEndian.Uint32(buf[headerSize+24 : headerSize+28]))
	if count < 0 || dirOff < 0 || int64(dirOff)+int64(count)*entrySize > int64(len(buf)) {
		return nil, fmt.Errorf("directory out of bounds: count=%d offset=%d", count, dirOff)
	}

	for i := int32(0); i < count; i++ {
		raw := buf[dirOff+i*entrySize : dirOff+(i+1)*entrySize]
		key := tagKey{
			name:   string(raw[0:4]),
			number: int32(binary.BigEndian.Uint32(raw[4:8])),
		}
		e := entry{
			elemType:  int16(binary.BigEndian.Uint16(raw[8:10])),
			elemSize:  int16(binary.BigEndian.Uint16(raw[10:12])),
			elemCount: int32(binary.BigEndian.Uint32(raw[12:16])),
		}
		size := int32(binary.BigEndian.Uint32(raw[16:20]))
		if size <= 4 {
			// small values live inline in the offset field
			e.data = append([]byte(nil), raw[20:20+max(size, 0)]...)
		} else {
			off := int32(binary.BigEndian.Uint32(raw[20:24]))
			if off < 0 || int64(off)+int64(size) > int64(len(buf)) {
				// damaged entry, skip the tag rather than fail the file
				continue
			}
			e.data = append([]byte(nil), buf[off:off+size]...)
		}
		if _, ok := f.tags[key]; !ok {
			f.tags[key] = e
		}
	}

	return f, nil
}

// Text returns a tag decoded permissively as text. Pascal and C string
// framing is stripped; any other element type is returned byte-for-byte.
func (f *File) Text(name string, number int32) (string, bool) {
	e, ok := f.tags[tagKey{name: name, number: number}]
	if !ok {
		return "", false
	}
	data := e.data
	switch e.elemType {
	case elemPString:
		if len(data) > 0 {
			data = data[1:]
		}
	case elemCString:
		if n := len(data); n > 0 && data[n-1] == 0 {
			data = data[:n-1]
		}
	}
	return string(data), true
}

// Samples returns a numeric tag as a flat int slice. Unknown element types
// are treated as absent.
func (f *File) Samples(name string, number int32) ([]int, bool) {
	e, ok := f.tags[tagKey{name: name, number: number}]
	if !ok {
		return nil, false
	}

	var width int
	switch e.elemType {
	case elemByte, elemChar:
		width = 1
	case elemWord, elemShort:
		width = 2
	case elemLong:
		width = 4
	default:
		return nil, false
	}

	n := len(e.data) / width
	if int(e.elemCount) >= 0 && int(e.elemCount) < n {
		n = int(e.elemCount)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		switch width {
		case 1:
			out[i] = int(e.data[i])
		case 2:
			out[i] = int(int16(binary.BigEndian.Uint16(e.data[i*2 : i*2+2])))
		case 4:
			out[i] = int(int32(binary.BigEndian.Uint32(e.data[i*4 : i*4+4])))
		}
	}
	return out, true
}
