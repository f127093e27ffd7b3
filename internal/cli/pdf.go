package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"

	"github.com/idelchi/dirsize/internal/dirsize"
)

const (
	pdfMargin     = 10 // Margin in mm
	pdfLineHeight = 6  // Row height in mm
	pdfFontSize   = 9
)

// pdfColumns are the table columns and their widths in mm (A4 portrait minus margins).
//
//nolint:gochecknoglobals // Layout constant
var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Directory", 105, "L"},
	{"Files", 25, "R"},
	{"Size (MB)", 30, "R"},
	{"Size", 30, "R"},
}

// WritePDF writes the table report of res to path.
func WritePDF(res *dirsize.Result, path string, top int) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	// Core fonts are cp1252; translate the ellipsis used by trimPath.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", pdfFontSize+3)
	pdf.CellFormat(0, pdfLineHeight+2, tr("Directory: "+res.Root), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", pdfFontSize)
	pdf.SetFillColor(230, 230, 230)

	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, pdfLineHeight, col.title, "1", 0, col.align, true, 0, "")
	}

	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", pdfFontSize)

	for _, e := range limit(sortEntries(res.Entries), top) {
		cells := []string{
			trimPath(displayName(res.Root, e.Path)),
			humanize.Comma(e.FileCount),
			toMB(e.Size),
			humanize.IBytes(uint64(e.Size)), //nolint:gosec // Sizes are never negative
		}

		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, pdfLineHeight, tr(cells[i]), "1", 0, col.align, false, 0, "")
		}

		pdf.Ln(-1)
	}

	pdf.Ln(pdfLineHeight)
	pdf.SetFont("Helvetica", "", pdfFontSize)

	summary := []string{
		fmt.Sprintf("Total files: %s", humanize.Comma(res.Totals.FileCount)),
		fmt.Sprintf("Total size: %s MB (%s)", toMB(res.Totals.Size), humanize.IBytes(uint64(res.Totals.Size))), //nolint:gosec,lll // Sizes are never negative
		fmt.Sprintf("Errors: %d", len(res.Errors)),
		fmt.Sprintf("Elapsed: %d ms", res.Totals.Elapsed/time.Millisecond),
	}

	for _, line := range summary {
		pdf.CellFormat(0, pdfLineHeight, tr(line), "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing PDF %q: %w", path, err)
	}

	return nil
}
