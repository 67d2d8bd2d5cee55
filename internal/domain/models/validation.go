package models

import (
	"strings"

	"tasktracker/internal/domain/errors"

	"github.com/go-playground/validator"
)

var validate = validator.New()

func (r RegisterRequest) Validate() error {
	return validationError(validate.Struct(r))
}

func (r LoginRequest) Validate() error {
	return validationError(validate.Struct(r))
}

func (r CreateTaskRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.NewValidationError("Title", errors.ErrInvalidTitle)
	}
	return validationError(validate.Struct(r))
}

func (p UserPatch) Validate() error {
	if p.Username != nil && strings.TrimSpace(*p.Username) == "" {
		return errors.NewValidationError("Username", errors.ErrInvalidUsername)
	}
	if p.Email != nil && *p.Email == "" {
		return errors.NewValidationError("Email", errors.ErrInvalidEmail)
	}
	if p.Password != nil && *p.Password == "" {
		return errors.NewValidationError("Password", errors.ErrInvalidPassword)
	}
	return validationError(validate.Struct(p))
}

func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return errors.NewValidationError("Title", errors.ErrInvalidTitle)
	}
	return validationError(validate.Struct(p))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			switch verr.Field() {
			case "Username":
				return errors.NewValidationError("Username", errors.ErrInvalidUsername)
			case "Email":
				return errors.NewValidationError("Email", errors.ErrInvalidEmail)
			case "Password":
				return errors.NewValidationError("Password", errors.ErrInvalidPassword)
			case "Title":
				return errors.NewValidationError("Title", errors.ErrInvalidTitle)
			case "Description":
				return errors.NewValidationError("Description", errors.ErrInvalidDescription)
			case "Category":
				return errors.NewValidationError("Category", errors.ErrInvalidCategory)
			default:
				return errors.NewValidationError(verr.Field(), nil)
			}
		}
	}
	return errors.NewValidationError("", err)
}
