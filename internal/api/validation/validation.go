package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"wikijobs/pkg/models"
)

// CountryCodePattern matches an ISO 3166 alpha-2 code in either case
var CountryCodePattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

// ValidateWorkType accepts remote, hybrid or onsite in any case
func ValidateWorkType(fl validator.FieldLevel) bool {
	switch models.WorkType(strings.ToLower(fl.Field().String())) {
	case models.WorkTypeRemote, models.WorkTypeHybrid, models.WorkTypeOnsite:
		return true
	}
	return false
}

// ValidateCountryCode ensures a two-letter country code
func ValidateCountryCode(fl validator.FieldLevel) bool {
	return CountryCodePattern.MatchString(fl.Field().String())
}

// ValidateSortField accepts the supported sort fields
func ValidateSortField(fl validator.FieldLevel) bool {
	switch models.SortField(fl.Field().String()) {
	case models.SortByMatchScore, models.SortByPostedDate, models.SortByLocationProximity, models.SortBySalary:
		return true
	}
	return false
}

// RegisterValidators registers the custom validators used by request models
func RegisterValidators(v *validator.Validate) {
	v.RegisterValidation("work_type", ValidateWorkType)
	v.RegisterValidation("country_code", ValidateCountryCode)
	v.RegisterValidation("sort_field", ValidateSortField)
}

// New returns a validator with the custom validators registered
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// Describe turns validation errors into one readable line
func Describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "work_type":
			msgs = append(msgs, fmt.Sprintf("%s must be one of remote, hybrid, onsite", fe.Namespace()))
		case "country_code":
			msgs = append(msgs, fmt.Sprintf("%s must be a two-letter country code", fe.Namespace()))
		case "sort_field":
			msgs = append(msgs, fmt.Sprintf("%s must be one of matchScore, postedDate, locationProximity, salary", fe.Namespace()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
