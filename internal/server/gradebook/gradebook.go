// Package gradebook reads class rosters from and writes gradebooks to XLSX
// workbooks.
package gradebook

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Gradebook"

// ContentType is the media type of XLSX workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrEmptyWorkbook = errors.New("workbook does not contain any sheets")

// Export lays out one row per student and one column per assignment. A cell
// holds the grade, "submitted" for an ungraded answer, or nothing.
func Export(className string, students []*models.Enrollment, assignments []*models.Assignment, subs []*models.Submission) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Student", "Email"}
	for _, a := range assignments {
		header = append(header, a.Title)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	type cellKey struct {
		student    string
		assignment int64
	}
	marks := make(map[cellKey]string, len(subs))
	for _, s := range subs {
		mark := s.Status
		if s.Grade != nil {
			mark = *s.Grade
		}
		marks[cellKey{s.StudentID, s.AssignmentID}] = mark
	}

	for i, st := range students {
		row := []any{st.StudentName, st.StudentEmail}
		for _, a := range assignments {
			row = append(row, marks[cellKey{st.StudentID, a.ID}])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: className + " gradebook"}); err != nil {
		return nil, fmt.Errorf("doc props: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// RosterEntry is one student line of an uploaded roster.
type RosterEntry struct {
	Name  string
	Email string
}

// ParseRoster reads the first sheet of an XLSX roster. When the first row
// titles a column "email" (any case) it holds the address and a column
// titled "name" the display name. Otherwise the first two columns are taken
// as name and email, and the first row is data unless its email cell has
// no "@". Rows without an email are skipped.
func ParseRoster(r io.Reader) ([]RosterEntry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []RosterEntry{}, nil
	}

	nameCol, emailCol := 0, 1
	titled := false
	for i, title := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(title)) {
		case "name", "student":
			nameCol, titled = i, true
		case "email", "e-mail":
			emailCol, titled = i, true
		}
	}
	if titled || !strings.Contains(cellAt(rows[0], emailCol), "@") {
		rows = rows[1:]
	}

	out := make([]RosterEntry, 0, len(rows))
	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(cellAt(row, emailCol)))
		if email == "" {
			continue
		}
		out = append(out, RosterEntry{Name: strings.TrimSpace(cellAt(row, nameCol)), Email: email})
	}
	return out, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
