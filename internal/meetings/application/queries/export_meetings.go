package queries

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportMeetingsHandler renders a meeting listing as an xlsx workbook.
type ExportMeetingsHandler struct {
	list *ListMeetingsHandler
}

// NewExportMeetingsHandler creates a new ExportMeetingsHandler.
func NewExportMeetingsHandler(list *ListMeetingsHandler) *ExportMeetingsHandler {
	return &ExportMeetingsHandler{list: list}
}

const exportSheet = "Meetings"

var exportHeaders = []string{"Date", "Start", "End", "Title", "Participants", "Category", "Location", "Notes"}

var exportWidths = []float64{14, 8, 8, 36, 36, 14, 20, 40}

// Handle builds the workbook for the same filters ListMeetingsQuery accepts
// and returns the serialized file.
func (h *ExportMeetingsHandler) Handle(ctx context.Context, query ListMeetingsQuery) (*bytes.Buffer, error) {
	meetings, err := h.list.Handle(ctx, query)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(exportHeaders))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}

	for col, width := range exportWidths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheet, name, name, width); err != nil {
			return nil, err
		}
	}

	for i, m := range meetings {
		row := i + 2
		values := []any{
			m.Date.Format("2006-01-02"),
			m.StartTime,
			m.EndTime,
			m.Title,
			m.Participants,
			m.Category,
			m.Location,
			m.Notes,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if err := f.AutoFilter(exportSheet, fmt.Sprintf("A1:%s%d", lastCol, len(meetings)+1), nil); err != nil {
		return nil, fmt.Errorf("set auto filter: %w", err)
	}

	footerCell, err := excelize.CoordinatesToCellName(1, len(meetings)+3)
	if err != nil {
		return nil, err
	}
	footer := fmt.Sprintf("%d meetings exported", len(meetings))
	if err := f.SetCellValue(exportSheet, footerCell, footer); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}
