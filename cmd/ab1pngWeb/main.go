package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"

	"ab1png/pkg/chromatogram"

	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/liserjrqlxue/version"
)

// flag
var (
	addr = flag.String(
		"addr",
		":5002",
		"listen address",
	)
	uploadDir = flag.String(
		"upload",
		"uploads",
		"upload staging dir",
	)
	outputDir = flag.String(
		"output",
		"output",
		"PNG output dir",
	)
	dpi = flag.Int(
		"dpi",
		chromatogram.DefaultDPI,
		"default output PNG DPI",
	)
)

func main() {
	version.LogVersion()
	flag.Parse()

	srv := simpleUtil.HandleError(NewServer(Config{
		Addr:      *addr,
		UploadDir: *uploadDir,
		OutputDir: *outputDir,
		DPI:       *dpi,
	}))

	slog.Info("listening", "addr", srv.cfg.Addr)
	log.Fatal(http.ListenAndServe(srv.cfg.Addr, srv.Handler()))
}
