// Package report renders the task collection as a printable PDF.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskmaster/internal/query"
	"taskmaster/internal/task"
)

// PDF renders a title, the statistics and one block per task.
func PDF(title string, tasks []task.Task, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, tr(title))
	pdf.Ln(12)

	s := query.Summarize(tasks, now)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total %d  Pending %d  Completed %d  Overdue %d", s.Total, s.Pending, s.Completed, s.Overdue))
	pdf.Ln(10)

	if len(tasks) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No tasks.")
	}
	for _, t := range tasks {
		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s %s", mark(t.Status(now)), t.Title)), "0", "L", false)

		pdf.SetFont("Arial", "", 9)
		line := fmt.Sprintf("%s · %s", t.Category.Label(), t.Priority.Label())
		if t.DueDate != nil {
			line += " · due " + t.DueDate.Format("2006-01-02 15:04")
		}
		pdf.MultiCell(0, 5, tr(line), "0", "L", false)
		if t.Description != "" {
			pdf.MultiCell(0, 5, tr(t.Description), "0", "L", false)
		}
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mark(s task.Status) string {
	switch s {
	case task.StatusCompleted:
		return "[x]"
	case task.StatusOverdue:
		return "[!]"
	default:
		return "[ ]"
	}
}
