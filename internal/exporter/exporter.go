package exporter

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"wikijobs/internal/logging"
	"wikijobs/pkg/models"
)

// Sentinel errors to allow precise mapping in handlers
var (
	ErrRender = errors.New("render_error")
	ErrWrite  = errors.New("write_failed")
)

// Sheet names
const (
	MatchesSheet = "Matches"
	PlanSheet    = "Plan"
)

// ContentType is the MIME type of the workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var matchColumns = []struct {
	header string
	width  float64
}{
	{"Title", 40},
	{"Company", 25},
	{"Location", 20},
	{"Salary", 22},
	{"Match Score", 12},
	{"Mentorship", 12},
	{"Flexible Hours", 14},
	{"Return Program", 14},
	{"Job Type", 14},
	{"Category", 25},
	{"Posted", 12},
	{"Apply URL", 50},
}

// Export describes one workbook
type Export struct {
	SessionID string
	Jobs      []models.JobMatch
	// SelectedJob and Plan add a plan sheet when both are set
	SelectedJob *models.JobMatch
	Plan        *models.SkillGapPlan
}

// FileName returns the download name for the export
func (e Export) FileName() string {
	return fmt.Sprintf("wikijobs-%s-%s.xlsx", e.SessionID, time.Now().Format("20060102"))
}

// WriteXLSX renders the export as an xlsx workbook into w
func WriteXLSX(w io.Writer, e Export) error {
	logger := logging.ForComponent("exporter")

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MatchesSheet); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := writeMatches(f, e); err != nil {
		logger.Error("Failed to render job matches sheet", map[string]interface{}{
			"session_id": e.SessionID,
			"error":      err.Error(),
		})
		return fmt.Errorf("%w: %v", ErrRender, err)
	}

	if e.Plan != nil && e.SelectedJob != nil {
		if _, err := f.NewSheet(PlanSheet); err != nil {
			return fmt.Errorf("%w: %v", ErrRender, err)
		}
		if err := writePlan(f, *e.SelectedJob, *e.Plan); err != nil {
			logger.Error("Failed to render plan sheet", map[string]interface{}{
				"session_id": e.SessionID,
				"error":      err.Error(),
			})
			return fmt.Errorf("%w: %v", ErrRender, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func writeMatches(f *excelize.File, e Export) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	for i, col := range matchColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(MatchesSheet, cell, col.header); err != nil {
			return err
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(MatchesSheet, name, name, col.width); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(matchColumns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(MatchesSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for r, job := range e.Jobs {
		row := []interface{}{
			job.Title,
			job.Company,
			job.Location,
			job.Salary,
			job.MatchScore,
			yesNo(job.ReturnFriendly.Mentorship),
			yesNo(job.ReturnFriendly.FlexibleHours),
			yesNo(job.ReturnFriendly.ReturnProgram),
			job.JobType,
			job.Category,
			job.PostedDate,
			job.ApplyURL,
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(MatchesSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SetPanes(MatchesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writePlan(f *excelize.File, job models.JobMatch, plan models.SkillGapPlan) error {
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Vertical: "top"},
	})
	if err != nil {
		return err
	}
	if err := f.SetColWidth(PlanSheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(PlanSheet, "B", "B", 80); err != nil {
		return err
	}

	rows := [][2]string{
		{"Job", fmt.Sprintf("%s at %s", job.Title, job.Company)},
		{"Skills Gap", plan.GapAnalysis},
		{"Required Skills", strings.Join(plan.RequiredSkills, "\n")},
		{"Quick Wins", strings.Join(plan.ActionPlan.Immediate, "\n")},
		{"3-Month Plan", strings.Join(plan.ActionPlan.ShortTerm, "\n")},
		{"Courses", strings.Join(plan.Resources.Courses, "\n")},
		{"Certification", plan.Resources.Certification},
		{"Networking", plan.Resources.Networking},
		{"Time to Ready", fmt.Sprintf("%d months", plan.EstimatedTimeframe)},
	}

	for i, r := range rows {
		label := fmt.Sprintf("A%d", i+1)
		if err := f.SetCellValue(PlanSheet, label, r[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(PlanSheet, label, label, labelStyle); err != nil {
			return err
		}
		if err := f.SetCellValue(PlanSheet, fmt.Sprintf("B%d", i+1), r[1]); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
