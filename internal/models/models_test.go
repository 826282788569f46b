package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestFlexibleList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FlexibleList
		wantErr bool
	}{
		{name: "array", input: `["MCQ","VIVA"]`, want: FlexibleList{"MCQ", "VIVA"}},
		{name: "serialized array", input: `"[\"MCQ\",\"VIVA\"]"`, want: FlexibleList{"MCQ", "VIVA"}},
		{name: "single value", input: `"DESCRIPTIVE"`, want: FlexibleList{"DESCRIPTIVE"}},
		{name: "empty string", input: `""`, want: FlexibleList{}},
		{name: "null", input: `null`, want: nil},
		{name: "broken serialized array", input: `"[\"MCQ\""`, wantErr: true},
		{name: "number", input: `42`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexibleList
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlexibleList_QuestionFormats(t *testing.T) {
	got := FlexibleList{"mcq", " VIVA ", "MCQ"}.QuestionFormats()
	assert.Equal(t, []QuestionFormat{FormatMCQ, FormatViva}, got)
}

func TestQuestionPublic_OmitsCorrectAnswer(t *testing.T) {
	answer := "y"
	opts := datatypes.NewJSONType(AccessibilityOptions{HighContrast: true})
	q := &Question{
		ID:                   "q1",
		QuestionType:         FormatMCQ,
		Question:             "pick",
		Options:              datatypes.JSONSlice[string]{"x", "y"},
		CorrectAnswer:        &answer,
		Marks:                10,
		AccessibilityOptions: &opts,
	}

	data, err := json.Marshal(q.Public())
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "correctAnswer")
	assert.Equal(t, []interface{}{"x", "y"}, fields["options"])
	assert.Equal(t, true, fields["accessibilityOptions"].(map[string]interface{})["highContrast"])
}

func TestPrincipal_IsInstructor(t *testing.T) {
	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.IsInstructor())
	assert.False(t, (&Principal{Role: RoleStudent}).IsInstructor())
	assert.True(t, (&Principal{Role: RoleInstructor}).IsInstructor())
}

func TestAssessmentType_IsValid(t *testing.T) {
	assert.True(t, AssessmentBlended.IsValid())
	assert.False(t, AssessmentType("HYBRID").IsValid())
	assert.True(t, FormatPenPaper.IsValid())
	assert.False(t, QuestionFormat("ESSAY").IsValid())
}
