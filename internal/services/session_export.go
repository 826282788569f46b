package services

import (
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eklavya-edu/assessment-service/internal/models"
)

const (
	SessionsSheet  = "Sessions"
	ResponsesSheet = "Responses"
)

var (
	sessionHeaders  = []interface{}{"Session ID", "Candidate", "Status", "Score (%)", "Responses", "Submitted At"}
	responseHeaders = []interface{}{"Session ID", "Candidate", "Question ID", "Question", "Type", "Answer", "Correct", "Score", "Marks"}
)

// buildSessionWorkbook renders one row per session and one row per response
func buildSessionWorkbook(assessment *models.Assessment, sessions []*models.Session) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SessionsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(ResponsesSheet); err != nil {
		return nil, err
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: assessment.Title, Creator: assessment.CreatedByID}); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(SessionsSheet, "A1", &sessionHeaders); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(ResponsesSheet, "A1", &responseHeaders); err != nil {
		return nil, err
	}

	sessionRow, responseRow := 2, 2
	for _, session := range sessions {
		row := []interface{}{
			session.ID,
			session.UserID,
			string(session.Status),
			optionalInt(session.Score),
			len(session.Responses),
			session.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := setRow(f, SessionsSheet, sessionRow, row); err != nil {
			return nil, err
		}
		sessionRow++

		for _, r := range session.Responses {
			row := []interface{}{session.ID, session.UserID, r.QuestionID, "", "", r.Answer, optionalBool(r.IsCorrect), optionalInt(r.Score), ""}
			if r.Question != nil {
				row[3] = r.Question.Question
				row[4] = string(r.Question.QuestionType)
				row[8] = r.Question.Marks
			}
			if err := setRow(f, ResponsesSheet, responseRow, row); err != nil {
				return nil, err
			}
			responseRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func optionalInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func optionalBool(v *bool) interface{} {
	if v == nil {
		return ""
	}
	if *v {
		return "yes"
	}
	return "no"
}
