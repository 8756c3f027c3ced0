package middleware

import (
	"fmt"

	"toltimed/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the booking tags on gin's binding validator:
// "weekday" for lower-case weekday names and "frequency" for schedule
// frequencies.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("weekday", validWeekday); err != nil {
		return err
	}
	return v.RegisterValidation("frequency", validFrequency)
}

func validWeekday(fl validator.FieldLevel) bool {
	return models.Weekday(fl.Field().String()).Valid()
}

func validFrequency(fl validator.FieldLevel) bool {
	return models.Frequency(fl.Field().String()).Valid()
}
