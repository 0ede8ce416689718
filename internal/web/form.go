package web

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/conorfennell/habittracker/internal/domain"
	"github.com/go-playground/validator/v10"
)

const (
	msgMissingKey  = "Please enter both week and date."
	msgInvalidWeek = "Week must be a whole number of 1 or more."
)

// keyInput is the (week, date) pair typed into the form.
type keyInput struct {
	Week string `form:"week" validate:"required"`
	Date string `form:"date" validate:"required"`
}

// recordInput is everything the Add/Update button submits. Unlike View and Delete,
// a save rejects a week that is not a whole number of 1 or more instead of storing
// the text as typed.
type recordInput struct {
	Week          string `form:"week" validate:"required,number"`
	Date          string `form:"date" validate:"required"`
	HealthyEating string `form:"healthy_eating" validate:"oneof='checked-off' 'not checked-off'"`
	DailyExercise string `form:"daily_exercise" validate:"oneof='checked-off' 'not checked-off'"`
	NoSmoke       string `form:"no_smoke" validate:"oneof='checked-off' 'not checked-off'"`
	TimeOutdoors  string `form:"time_outdoors" validate:"oneof='checked-off' 'not checked-off'"`
	Blogging      string `form:"blogging" validate:"oneof='checked-off' 'not checked-off'"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return v
}

// formValues reads every form field, trimmed, keyed by field name.
func formValues(r *http.Request) map[string]string {
	values := map[string]string{
		"week": strings.TrimSpace(r.PostFormValue("week")),
		"date": strings.TrimSpace(r.PostFormValue("date")),
	}
	for _, h := range domain.Habits {
		values[h.Column()] = strings.TrimSpace(r.PostFormValue(h.Column()))
	}
	return values
}

func (s *Server) validateKey(values map[string]string) string {
	in := keyInput{Week: values["week"], Date: values["date"]}
	if err := s.validate.Struct(in); err != nil {
		return msgMissingKey
	}
	return ""
}

// validateRecord checks a save request and converts it into domain values. On
// failure the returned message names the first offending field, checked in form order.
func (s *Server) validateRecord(values map[string]string) (int, domain.Checks, string) {
	var checks domain.Checks
	in := recordInput{
		Week:          values["week"],
		Date:          values["date"],
		HealthyEating: values[domain.HealthyEating.Column()],
		DailyExercise: values[domain.DailyExercise.Column()],
		NoSmoke:       values[domain.NoSmoke.Column()],
		TimeOutdoors:  values[domain.TimeOutdoors.Column()],
		Blogging:      values[domain.Blogging.Column()],
	}

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return 0, checks, err.Error()
		}
		return 0, checks, fieldMessage(verrs[0])
	}

	week, err := domain.ParseWeek(in.Week)
	if err != nil {
		return 0, checks, msgInvalidWeek
	}
	for _, h := range domain.Habits {
		st, err := domain.ParseStatus(values[h.Column()])
		if err != nil {
			return 0, checks, habitMessage(h)
		}
		checks[h] = st
	}
	return week, checks, ""
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "week":
		if fe.Tag() == "required" {
			return msgMissingKey
		}
		return msgInvalidWeek
	case "date":
		return msgMissingKey
	}
	for _, h := range domain.Habits {
		if fe.Field() == h.Column() {
			return habitMessage(h)
		}
	}
	return fmt.Sprintf("Invalid value for %s.", fe.Field())
}

func habitMessage(h domain.Habit) string {
	return fmt.Sprintf("'%s' must be 'checked-off' or 'not checked-off'.", h.Label())
}
