package handlers

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Date invitations must propose a time that has not already passed.
		v.RegisterValidation("futuredate", func(fl validator.FieldLevel) bool {
			date, ok := fl.Field().Interface().(time.Time)
			return ok && date.After(time.Now())
		})
	}
}
