package session

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/campuseats/campuseats/internal/api"
)

type loginInput struct {
	Username string
	Password string
}

func (r loginInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type registerInput api.RegisterRequest

func (r registerInput) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&r.PasswordConfirm, validation.Required),
	); err != nil {
		return err
	}
	if r.Password != r.PasswordConfirm {
		return errors.New("passwords don't match")
	}
	if !r.Role.Valid() {
		return errors.New("user_type must be user or seller")
	}
	return nil
}
