// Package report exports a curriculum and its progress as an Excel
// workbook for download.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/openlearnhub/hub-edge/internal/curriculum"
)

const (
	overviewSheet = "Overview"
	coursesSheet  = "Courses"
)

// WriteProgress renders the curriculum as a two-sheet workbook: a
// profile overview and one row per course with its completion state.
func WriteProgress(w io.Writer, saved *curriculum.Saved, view *curriculum.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(coursesSheet); err != nil {
		return fmt.Errorf("adding sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	if err := writeOverview(f, bold, saved, view); err != nil {
		return err
	}
	if err := writeCourses(f, bold, saved, view); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeOverview(f *excelize.File, bold int, saved *curriculum.Saved, view *curriculum.View) error {
	rows := [][2]any{
		{"Curriculum ID", saved.ID},
		{"Learning goal", saved.FormData.LearningGoal},
		{"Profile", view.Profile.Summary},
		{"Starting tier", view.Profile.StartingTier},
		{"Weekly hours", view.Profile.WeeklyHours},
		{"Estimated weeks", view.Profile.Weeks},
		{"Created", saved.CreatedAt},
	}
	for i, row := range rows {
		labelCell := fmt.Sprintf("A%d", i+1)
		if err := f.SetCellValue(overviewSheet, labelCell, row[0]); err != nil {
			return fmt.Errorf("writing overview: %w", err)
		}
		if err := f.SetCellStyle(overviewSheet, labelCell, labelCell, bold); err != nil {
			return fmt.Errorf("styling overview: %w", err)
		}
		if err := f.SetCellValue(overviewSheet, fmt.Sprintf("B%d", i+1), row[1]); err != nil {
			return fmt.Errorf("writing overview: %w", err)
		}
	}
	return nil
}

func writeCourses(f *excelize.File, bold int, saved *curriculum.Saved, view *curriculum.View) error {
	headers := []string{"Tier", "Position", "Course", "Videos", "Hours", "Completed"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(coursesSheet, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		if err := f.SetCellStyle(coursesSheet, cell, cell, bold); err != nil {
			return fmt.Errorf("styling header: %w", err)
		}
	}

	row := 2
	for _, tier := range curriculum.TierOrder {
		lt, ok := view.Tier(tier)
		if !ok {
			continue
		}
		for _, course := range lt.Courses {
			cells := []any{
				tier,
				course.Position,
				course.Title,
				course.Videos(),
				course.Hours(),
				completed(saved.Progress, course.Title),
			}
			for i, v := range cells {
				cell, err := excelize.CoordinatesToCellName(i+1, row)
				if err != nil {
					return fmt.Errorf("course cell: %w", err)
				}
				if err := f.SetCellValue(coursesSheet, cell, v); err != nil {
					return fmt.Errorf("writing course row: %w", err)
				}
			}
			row++
		}
	}
	return nil
}

// completed reads a course's completion flag from the open progress map.
// The UI writes booleans keyed by course title; anything else counts as
// not completed.
func completed(progress map[string]any, courseTitle string) bool {
	if progress == nil {
		return false
	}
	done, _ := progress[courseTitle].(bool)
	return done
}
