package main

import (
	"fmt"
	"strconv"
	"strings"

	"ab1png/pkg/chromatogram"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

func main() {
	a := app.NewWithID("com.ab1png.gui")
	w := a.NewWindow("AB1 to PNG")
	w.Resize(fyne.NewSize(760, 520))

	inputEntry := widget.NewEntry()
	inputEntry.SetPlaceHolder("input .ab1 file or folder")
	outEntry := widget.NewEntry()
	outEntry.SetText("png_output")
	dpiEntry := widget.NewEntry()
	dpiEntry.SetText(strconv.Itoa(chromatogram.DefaultDPI))

	logView := widget.NewMultiLineEntry()
	logView.Wrapping = fyne.TextWrapWord
	statusLabel := widget.NewLabel("ready")

	browseInput := widget.NewButton("Browse…", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			inputEntry.SetText(uri.Path())
		}, w)
	})
	browseOutput := widget.NewButton("Browse…", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			outEntry.SetText(uri.Path())
		}, w)
	})

	var convertBtn *widget.Button
	convertBtn = widget.NewButton("Convert", func() {
		input := inputEntry.Text
		if input == "" {
			dialog.ShowError(fmt.Errorf("select an input file or folder"), w)
			return
		}
		dpi, err := strconv.Atoi(strings.TrimSpace(dpiEntry.Text))
		if err != nil || dpi <= 0 {
			dialog.ShowError(fmt.Errorf("DPI must be a positive integer"), w)
			return
		}
		outDir := outEntry.Text

		// one conversion in flight at a time; the disabled button gates
		// re-entry while the worker runs
		convertBtn.Disable()
		logView.SetText("")
		statusLabel.SetText("converting…")

		go func() {
			results, err := chromatogram.ConvertPath(input, outDir, chromatogram.Options{DPI: dpi})

			var b strings.Builder
			var success int
			for _, r := range results {
				if r.Ok {
					success++
					fmt.Fprintf(&b, "[OK] %s -> %s\n", r.File, r.Output)
				} else {
					fmt.Fprintf(&b, "[ERROR] %s: %v\n", r.File, r.Err)
				}
			}

			status := fmt.Sprintf("converted %d/%d", success, len(results))
			if err != nil {
				status = "failed: " + err.Error()
			} else if len(results) == 0 {
				status = "no .ab1/.abi files found"
			}

			fyne.Do(func() {
				logView.SetText(b.String())
				statusLabel.SetText(status)
				convertBtn.Enable()
			})
		}()
	})

	form := container.NewVBox(
		widget.NewLabel("Input"),
		container.NewBorder(nil, nil, nil, browseInput, inputEntry),
		widget.NewLabel("Output folder"),
		container.NewBorder(nil, nil, nil, browseOutput, outEntry),
		container.NewBorder(nil, nil, widget.NewLabel("DPI"), convertBtn, dpiEntry),
		widget.NewSeparator(),
	)

	w.SetContent(container.NewBorder(form, statusLabel, nil, nil, logView))
	w.ShowAndRun()
}
