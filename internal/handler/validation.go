package handler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// oneOf accepts a field whose string value is one of the space separated parameter values.
func oneOf(fl validator.FieldLevel) bool {
	return slices.Contains(strings.Fields(fl.Param()), fl.Field().String())
}

// RegisterValidation adds the custom binding tags to gin's validator
func RegisterValidation() error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return v.RegisterValidation("oneOf", oneOf)
	}
	return fmt.Errorf("error getting validation engine")
}
