// Package validator adapts go-playground/validator to echo.Validator.
package validator

import (
	"strings"

	"refugis/internal/domain/entity"

	playground "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *playground.Validate
}

// New builds the validator with the project's custom tags registered.
func New() *CustomValidator {
	v := playground.New(playground.WithRequiredStructEnabled())

	_ = v.RegisterValidation("proposal_action", func(fl playground.FieldLevel) bool {
		return entity.ProposalAction(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("proposal_status", func(fl playground.FieldLevel) bool {
		return entity.ProposalStatus(fl.Field().String()).IsValid()
	})

	return &CustomValidator{validate: v}
}

// Validate runs struct validation and flattens failures into one readable error.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs playground.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return errors.WithStack(err)
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, describe(fe))
	}

	return errors.New(strings.Join(messages, "; "))
}

func describe(fe playground.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "proposal_action":
		return field + " must be one of create, update, delete"
	case "proposal_status":
		return field + " must be one of pending, approved, rejected"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	default:
		return field + " failed " + fe.Tag() + " validation"
	}
}
