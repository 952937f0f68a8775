package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"royalpalace/internal/domain"
	"royalpalace/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

var statusFillColors = map[string]string{
	models.RoomAvailable:   "C6EFCE",
	models.RoomBooked:      "FFC7CE",
	models.RoomMaintenance: "FFEB9C",
	models.RoomUnavailable: "D9D9D9",
}

// ExcelExporter renders the occupancy grid downloaded from the admin panel:
// one row per room, one column per date, cells colored by status.
type ExcelExporter struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewExcelExporter(repo domain.Repository, logger *zerolog.Logger) *ExcelExporter {
	return &ExcelExporter{repo: repo, logger: logger}
}

func (e *ExcelExporter) OccupancyReport(ctx context.Context, from, to time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Occupancy"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	styles, err := buildStatusStyles(f)
	if err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetCellValue(sheet, "A1", "Room"); err != nil {
		return nil, err
	}

	var dates []time.Time
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}

	for i, d := range dates {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		if err := f.SetCellValue(sheet, cell, d.Format("02 Jan")); err != nil {
			return nil, err
		}
	}
	headerEnd, _ := excelize.CoordinatesToCellName(len(dates)+1, 1)
	if err := f.SetCellStyle(sheet, "A1", headerEnd, headerStyle); err != nil {
		return nil, err
	}

	for rowIdx, room := range e.repo.GetRooms() {
		row := rowIdx + 2
		nameCell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(sheet, nameCell, room.Name); err != nil {
			return nil, err
		}

		statuses, err := e.repo.GetDayStatuses(ctx, room.ID, from, to)
		if err != nil {
			return nil, err
		}

		for colIdx, d := range dates {
			label := models.DisplayLabel(statuses[d.Format(models.DateLayout)])
			cell, _ := excelize.CoordinatesToCellName(colIdx+2, row)
			if err := f.SetCellValue(sheet, cell, label); err != nil {
				return nil, err
			}
			if style, ok := styles[label]; ok {
				if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info().
		Int("rooms", len(e.repo.GetRooms())).
		Int("days", len(dates)).
		Msg("occupancy report generated")
	return buf, nil
}

func buildStatusStyles(f *excelize.File) (map[string]int, error) {
	styles := make(map[string]int, len(statusFillColors))
	for label, color := range statusFillColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create style for %s: %w", label, err)
		}
		styles[label] = id
	}
	return styles, nil
}
