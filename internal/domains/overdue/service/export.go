package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"library-lending-backend/internal/domains/overdue/model"

	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Overdue readers"

// ExportGroupedExcel xuất danh sách reader quá hạn, mỗi lending một dòng
func (s *OverdueService) ExportGroupedExcel(ctx context.Context) (*bytes.Buffer, error) {
	groups, err := s.ListGrouped(ctx)
	if err != nil {
		return nil, err
	}

	f, err := buildOverdueExcelFile(groups, s.now())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write overdue excel: %w", err)
	}
	return buf, nil
}

func buildOverdueExcelFile(groups []model.ReaderGroup, asOf time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{
		"Reader ID", "Reader Name", "Reader Email",
		"Lending ID", "Book Title", "Book ISBN",
		"Borrowed Date", "Due Date", "Status",
	}
	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(exportSheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(exportSheetName, "A1", lastCell, headerStyle)
	}

	rowNum := 2
	for _, g := range groups {
		for _, l := range g.Lendings {
			cell := func(col int) string {
				c, _ := excelize.CoordinatesToCellName(col, rowNum)
				return c
			}

			f.SetCellValue(exportSheetName, cell(1), g.Reader.ID.String())
			f.SetCellValue(exportSheetName, cell(2), g.Reader.Name)
			f.SetCellValue(exportSheetName, cell(3), g.Reader.Email)
			f.SetCellValue(exportSheetName, cell(4), l.ID.String())
			if l.Book != nil {
				f.SetCellValue(exportSheetName, cell(5), l.Book.Title)
				f.SetCellValue(exportSheetName, cell(6), l.Book.ISBN)
			} else {
				f.SetCellValue(exportSheetName, cell(5), "(removed from catalog)")
			}
			f.SetCellValue(exportSheetName, cell(7), l.BorrowedDate.Format("2006-01-02 15:04:05"))
			f.SetCellValue(exportSheetName, cell(8), l.DueDate.Format("2006-01-02 15:04:05"))
			f.SetCellValue(exportSheetName, cell(9), string(l.Status))
			rowNum++
		}
	}

	// dòng cuối ghi thời điểm xuất
	footer, _ := excelize.CoordinatesToCellName(1, rowNum+1)
	f.SetCellValue(exportSheetName, footer, "Generated at "+asOf.UTC().Format("2006-01-02 15:04:05 MST"))

	return f, nil
}
