package chromatogram

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// Result is the per-file outcome of one conversion.
type Result struct {
	File   string
	Output string
	Ok     bool
	Err    error
}

var traceExts = []string{".ab1", ".abi"}

// IsTraceFile reports whether name has a trace-file extension,
// case-insensitively.
func IsTraceFile(name string) bool {
	return lo.Contains(traceExts, strings.ToLower(filepath.Ext(name)))
}

// OutputName is the image name for a trace file: same base name, .png.
func OutputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}

// Convert runs extract → window → render for one file. Any failure,
// including a panic, becomes an unsuccessful Result; nothing propagates to
// the batch caller.
func Convert(path, outDir string, opt Options) (res Result) {
	res = Result{File: path}
	defer func() {
		if e := recover(); e != nil {
			res.Ok = false
			res.Err = fmt.Errorf("panic: %v", e)
			slog.Error("convert", "file", path, "panic", e)
		}
	}()

	td, err := ExtractFile(path)
	if err != nil {
		res.Err = err
		slog.Error("convert", "file", path, "err", err)
		return res
	}

	out := filepath.Join(outDir, OutputName(path))
	if err := Render(td, filepath.Base(path), out, opt); err != nil {
		res.Err = err
		slog.Error("convert", "file", path, "err", err)
		return res
	}

	res.Output = out
	res.Ok = true
	slog.Info("convert", "file", path, "output", out)
	return res
}

// ConvertPath converts a single trace file, or every trace file under a
// directory. Files are processed one at a time, start to finish; a failing
// file is recorded and the batch continues.
func ConvertPath(input, outDir string, opt Options) ([]Result, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []Result{Convert(input, outDir, opt)}, nil
	}

	var files []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsTraceFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		slog.Warn("no .ab1/.abi files found", "dir", input)
		return nil, nil
	}

	slog.Info("batch", "dir", input, "count", len(files))
	results := make([]Result, 0, len(files))
	for _, f := range files {
		results = append(results, Convert(f, outDir, opt))
	}
	return results, nil
}
