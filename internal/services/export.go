// Package services – report export
//
// CSV and PDF renderings of a milk report. Both list one row per cow per
// day followed by the day's reconciliation.
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/milk"
)

var csvHeader = []string{"date", "identifier", "name", "yield", "day_total", "sold", "remaining", "oversold"}

// ExportCSV writes the farm's milk report as CSV to w.
func (s *ReportService) ExportCSV(ctx context.Context, farmSlug string, q ReportQuery, w io.Writer) error {
	rep, err := s.MilkReport(ctx, farmSlug, q)
	if err != nil {
		return err
	}
	return WriteReportCSV(w, rep)
}

// WriteReportCSV renders rep as CSV. Days without cows still get one row
// carrying the reconciliation.
func WriteReportCSV(w io.Writer, rep *milk.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range rep.Days {
		tail := []string{d.Total.StringFixed(2), d.Sold.StringFixed(2), d.Remaining.StringFixed(2), fmt.Sprint(d.Oversold)}
		if len(d.Cows) == 0 {
			if err := cw.Write(append([]string{d.Date, "", "", ""}, tail...)); err != nil {
				return err
			}
			continue
		}
		for _, c := range d.Cows {
			row := append([]string{d.Date, c.Identifier, c.Name, c.Total.StringFixed(2)}, tail...)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportPDF renders the farm's milk report as an A4 PDF.
func (s *ReportService) ExportPDF(ctx context.Context, farmSlug string, q ReportQuery) ([]byte, error) {
	rep, err := s.MilkReport(ctx, farmSlug, q)
	if err != nil {
		return nil, err
	}
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	return RenderReportPDF(f, rep, clock(s.Now).In(s.loc()).Format("02-Jan-2006 15:04"))
}

// RenderReportPDF lays rep out as a table per day.
func RenderReportPDF(f *domain.Farm, rep *milk.Report, generated string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	title := cases.Title(language.English).String(f.Name) + " - Milk Report"
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("%s to %s  |  Generated: %s", rep.From, rep.To, generated), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(63, 8, "Produced: "+rep.Produced.StringFixed(2), "1", 0, "C", true, 0, "")
	pdf.CellFormat(63, 8, "Sold: "+rep.Sold.StringFixed(2), "1", 0, "C", true, 0, "")
	pdf.CellFormat(64, 8, "Remaining: "+rep.Remaining.StringFixed(2), "1", 1, "C", true, 0, "")
	pdf.Ln(4)

	for _, d := range rep.Days {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, d.Date, "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(50, 7, "Identifier", "1", 0, "C", true, 0, "")
		pdf.CellFormat(90, 7, "Name", "1", 0, "C", true, 0, "")
		pdf.CellFormat(50, 7, "Yield", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, c := range d.Cows {
			pdf.CellFormat(50, 6, c.Identifier, "1", 0, "C", false, 0, "")
			pdf.CellFormat(90, 6, truncate(c.Name, 45), "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 6, c.Total.StringFixed(2), "1", 1, "R", false, 0, "")
		}

		if d.Oversold {
			pdf.SetFillColor(255, 200, 200)
		} else {
			pdf.SetFillColor(200, 255, 200)
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(63, 7, "Total: "+d.Total.StringFixed(2), "1", 0, "C", true, 0, "")
		pdf.CellFormat(63, 7, "Sold: "+d.Sold.StringFixed(2), "1", 0, "C", true, 0, "")
		pdf.CellFormat(64, 7, "Remaining: "+d.Remaining.StringFixed(2), "1", 1, "C", true, 0, "")
		pdf.Ln(3)
	}

	if !rep.Unmatched.IsZero() {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(190, 6, "Sold on days without recorded production: "+rep.Unmatched.StringFixed(2), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
