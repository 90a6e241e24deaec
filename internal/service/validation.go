package service

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Hasan197668/nis/internal/models"
	"github.com/Hasan197668/nis/internal/substitution"
)

// NewValidator returns a validator that knows the school day names and the
// absence reasons.
func NewValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "weekday", func(fl validator.FieldLevel) bool {
		_, ok := substitution.ParseWeekDay(fl.Field().String())
		return ok
	})
	mustRegister(v, "absencereason", func(fl validator.FieldLevel) bool {
		return models.AbsenceReason(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}
