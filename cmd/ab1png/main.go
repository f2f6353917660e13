package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"

	"ab1png/pkg/chromatogram"

	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/liserjrqlxue/version"
)

// flag
var (
	outDir = flag.String(
		"o",
		"png_output",
		"PNG output dir",
	)
	dpi = flag.Int(
		"dpi",
		chromatogram.DefaultDPI,
		"output PNG DPI",
	)
	xlsx = flag.String(
		"xlsx",
		"",
		"write batch report to this xlsx path",
	)
)

func init() {
	flag.StringVar(outDir, "outdir", "png_output", "PNG output dir (alias of -o)")
}

func main() {
	version.LogVersion()
	flag.Parse()
	if flag.NArg() < 1 {
		flag.PrintDefaults()
		log.Fatal("input .ab1 file or directory is required")
	}
	input := flag.Arg(0)

	results, err := chromatogram.ConvertPath(input, *outDir, chromatogram.Options{DPI: *dpi})
	if err != nil {
		log.Fatalf("convert %s: %v", input, err)
	}

	var success int
	for _, r := range results {
		if r.Ok {
			success++
			fmt.Printf("[OK] %s -> %s\n", r.File, r.Output)
		} else {
			fmt.Printf("[ERROR] %s: %v\n", r.File, r.Err)
		}
	}
	fmt.Printf("\nconverted %d/%d\n", success, len(results))

	if *xlsx != "" {
		simpleUtil.CheckErr(chromatogram.WriteReport(*xlsx, results))
		slog.Info("report", "xlsx", *xlsx)
	}
}
