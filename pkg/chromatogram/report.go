package chromatogram

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

var ReportTitle = []string{
	"File",
	"Output",
	"Status",
	"Error",
}

const reportSheet = "Results"

// WriteReport writes one batch's per-file outcomes and a success-count
// summary to an xlsx file.
func WriteReport(path string, results []Result) error {
	xlsx := excelize.NewFile()
	defer xlsx.Close()

	if _, err := xlsx.NewSheet(reportSheet); err != nil {
		return err
	}
	xlsx.SetSheetRow(reportSheet, "A1", &ReportTitle)

	var success int
	row := 2
	for _, r := range results {
		status := "OK"
		errMsg := ""
		if r.Ok {
			success++
		} else {
			status = "ERROR"
			if r.Err != nil {
				errMsg = r.Err.Error()
			}
		}
		line := []any{r.File, r.Output, status, errMsg}
		xlsx.SetSheetRow(reportSheet, fmt.Sprintf("A%d", row), &line)
		row++
	}

	summary := []any{fmt.Sprintf("converted %d/%d", success, len(results))}
	xlsx.SetSheetRow(reportSheet, fmt.Sprintf("A%d", row+1), &summary)

	xlsx.DeleteSheet("Sheet1")
	return xlsx.SaveAs(path)
}
