package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/timetable-api/internal/models"
)

// RegisterTimetableValidations adds the dayofweek, timeslot and coursetype tags.
// Values are accepted in any form the models parsers understand.
func RegisterTimetableValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"dayofweek": func(fl validator.FieldLevel) bool {
			_, ok := models.ParseDayOfWeek(fl.Field().String())
			return ok
		},
		"timeslot": func(fl validator.FieldLevel) bool {
			_, ok := models.ParseTimeSlot(fl.Field().String())
			return ok
		},
		"coursetype": func(fl validator.FieldLevel) bool {
			_, ok := models.ParseCourseType(fl.Field().String())
			return ok
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func newValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		v = validator.New()
	}
	_ = RegisterTimetableValidations(v)
	return v
}
