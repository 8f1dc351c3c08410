package interfaces

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	alerts "aquaculture-cloud/internal/alerts/domain"
)

const exportTimeLayout = "2006-01-02 15:04"

// BuildAlertReportPDF renders alerts and their stats as a PDF.
func BuildAlertReportPDF(list []alerts.Alert, stats alerts.Stats, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Alert Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %d  Unresolved: %d", stats.Total, stats.Unresolved))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	headers := []struct {
		title string
		width float64
	}{
		{"Time", 32}, {"Line", 20}, {"Tank", 20}, {"Parameter", 35},
		{"Value", 22}, {"Threshold", 32}, {"Status", 22}, {"Description", 94},
	}
	for _, h := range headers {
		pdf.CellFormat(h.width, 6, h.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, alert := range list {
		pdf.CellFormat(32, 6, alert.Timestamp.Format(exportTimeLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, alert.LineID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, alert.TankID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, tr(alert.ParameterName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%.2f", alert.Value), "1", 0, "R", false, 0, "")
		pdf.CellFormat(32, 6, fmt.Sprintf("%.2f - %.2f", alert.ThresholdMin, alert.ThresholdMax), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, statusLabel(alert), "1", 0, "C", false, 0, "")
		pdf.CellFormat(94, 6, tr(alert.Description), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildAlertReportXLSX renders alerts and per-line stats as a workbook.
func BuildAlertReportXLSX(list []alerts.Alert, stats alerts.Stats, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	alertsSheet := "alerts"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(alertsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Alert Report")
	_ = f.SetCellValue(summarySheet, "A2", "Generated")
	_ = f.SetCellValue(summarySheet, "B2", generatedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Line")
	_ = f.SetCellValue(summarySheet, "B4", "Total")
	_ = f.SetCellValue(summarySheet, "C4", "Unresolved")
	row := 5
	for _, line := range sortedLines(stats) {
		lineStats := stats.ByLine[line]
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), line)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), lineStats.Total)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), lineStats.Unresolved)
		row++
	}
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "All")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), stats.Total)
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), stats.Unresolved)

	headers := []string{"ID", "Time", "Line", "Tank", "Rule", "Parameter", "Value", "Unit", "Threshold Min", "Threshold Max", "Resolved", "Resolved At", "Description", "Remedial"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(alertsSheet, cell, header)
	}
	for i, alert := range list {
		resolvedAt := ""
		if alert.ResolvedAt != nil {
			resolvedAt = alert.ResolvedAt.Format(time.RFC3339)
		}
		values := []any{
			alert.ID, alert.Timestamp.Format(time.RFC3339), alert.LineID, alert.TankID, alert.RuleID,
			alert.ParameterName, alert.Value, alert.Unit, alert.ThresholdMin, alert.ThresholdMax,
			alert.Resolved, resolvedAt, alert.Description, alert.Remedial,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(alertsSheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func statusLabel(alert alerts.Alert) string {
	if alert.Resolved {
		return "resolved"
	}
	return "open"
}

func sortedLines(stats alerts.Stats) []string {
	lines := make([]string, 0, len(stats.ByLine))
	for line := range stats.ByLine {
		lines = append(lines, line)
	}
	sort.Strings(lines)
	return lines
}
