package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexibleList decodes either a JSON array of strings or a string. A string is
// parsed as a serialized JSON array when it looks like one, otherwise it is a
// single element. Older clients send questionFormat and options pre-stringified.
type FlexibleList []string

func (l *FlexibleList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expected an array of strings or a string")
	}

	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		*l = []string{}
	case strings.HasPrefix(raw, "["):
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return fmt.Errorf("invalid serialized list: %w", err)
		}
		*l = items
	default:
		*l = []string{raw}
	}
	return nil
}

// QuestionFormats converts to canonical formats, dropping duplicates and keeping order
func (l FlexibleList) QuestionFormats() []QuestionFormat {
	seen := make(map[QuestionFormat]bool, len(l))
	out := make([]QuestionFormat, 0, len(l))
	for _, v := range l {
		f := QuestionFormat(strings.ToUpper(strings.TrimSpace(v)))
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Trimmed returns the elements with surrounding whitespace removed
func (l FlexibleList) Trimmed() []string {
	out := make([]string, 0, len(l))
	for _, v := range l {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

type SubmissionResult struct {
	Success       bool   `json:"success"`
	SessionID     string `json:"sessionId"`
	ResponseCount int    `json:"responseCount"`
}

type DashboardCourses struct {
	CompletedCourses  []CourseWithProgress `json:"completedCourses"`
	CoursesInProgress []CourseWithProgress `json:"coursesInProgress"`
}
