package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"dispatch_crm_go/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo's Validator interface
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the domain tags: leadstatus, salesstage, loadstatus, assetstatus
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	tags := map[string]func(string) bool{
		"leadstatus":  models.IsValidLeadStatus,
		"salesstage":  models.IsValidSalesStage,
		"loadstatus":  models.IsValidLoadStatus,
		"assetstatus": models.IsValidAssetStatus,
	}
	for tag, valid := range tags {
		valid := valid
		// Registration only fails for an empty tag or nil func
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		})
	}

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Validate implements echo.Validator
func (cv *Validator) Validate(i interface{}) error {
	if err := cv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	}
	return nil
}

var domainTagLabels = map[string]string{
	"leadstatus":  "lead status",
	"salesstage":  "sales stage",
	"loadstatus":  "load status",
	"assetstatus": "asset status",
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_without":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must not be negative", fe.Field()))
		case "email", "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid %s", fe.Field(), fe.Tag()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "leadstatus", "salesstage", "loadstatus", "assetstatus":
			msgs = append(msgs, fmt.Sprintf("%s is not a valid %s", fe.Field(), domainTagLabels[fe.Tag()]))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

// bindAndValidate decodes the request body into v and validates it
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return c.Validate(v)
}
