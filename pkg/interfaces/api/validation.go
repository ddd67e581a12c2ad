package api

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// newValidator returns a validator with the custom rules request structs use
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("iso_date", validateISODate)
	return v
}

// validateISODate accepts YYYY-MM-DD
func validateISODate(fl validator.FieldLevel) bool {
	_, err := entities.ParseDate(fl.Field().String())
	return err == nil
}

// describe turns validator errors into one readable message
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
