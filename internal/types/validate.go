package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs the struct validation rules for a task result.
func Validate(result any) error {
	if err := validate.Struct(result); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("field %s failed %q rule", f.Field(), f.Tag())
		}
		return err
	}
	return nil
}
