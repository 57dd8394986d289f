package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
)

type subjectRequest struct {
	Name string `json:"name" validate:"required,notblank,max=120"`
}

func TestValidator_Candidate(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(models.Candidate{Title: "Midterm", Date: "2024-10-15", Type: models.EventTypeExam}))

	err := v.Struct(models.Candidate{Title: "", Date: "2024-02-30", Type: "Quiz"})
	require.Error(t, err)

	msgs := v.Errors(err)
	assert.Contains(t, msgs, "title")
	assert.Contains(t, msgs, "date")
	assert.Contains(t, msgs, "type")
	assert.Equal(t, "date must be a valid date in YYYY-MM-DD format", msgs["date"])
	assert.Equal(t, "type must be one of Exam, Assignment, Reading, Project, Other", msgs["type"])
}

func TestValidator_NotBlank(t *testing.T) {
	v := New()

	err := v.Struct(subjectRequest{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, "name cannot be blank", v.Errors(err)["name"])

	assert.NoError(t, v.Struct(subjectRequest{Name: "Calculus II"}))
}

func TestValidator_ErrorsNonValidation(t *testing.T) {
	v := New()
	assert.Nil(t, v.Errors(nil))
	assert.Equal(t, map[string]string{"_": "boom"}, v.Errors(errors.New("boom")))
}

func TestMustRegister(t *testing.T) {
	validate := validator.New()
	assert.NotPanics(t, func() { mustRegister(validate, "even", func(validator.FieldLevel) bool { return true }) })
	assert.Panics(t, func() { mustRegister(validate, "", notBlankValidation) }, "an empty tag is a programming error")
	assert.Panics(t, func() { mustRegister(validate, "nofunc", nil) })
}
