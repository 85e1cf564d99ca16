package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Student struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name" validate:"required,max=120"`
	UniversityRoll string    `db:"university_roll" json:"university_roll" validate:"required,max=32"`
	PhoneNumber    string    `db:"phone_number" json:"phone_number" validate:"omitempty,max=20"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func (s *Student) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}
