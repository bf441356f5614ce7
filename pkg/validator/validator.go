package validator

import (
	"fmt"

	"go-restaurant-sync/internal/model"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", e.FailedField, e.Tag)
}

var validate = validator.New()

func init() {
	// 4–6 digit staff PIN
	validate.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return model.ValidPin(fl.Field().String())
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Check returns the first validation failure as an error, or nil.
func Check(data interface{}) error {
	if errs := ValidateStruct(data); len(errs) > 0 {
		return errs[0]
	}
	return nil
}
