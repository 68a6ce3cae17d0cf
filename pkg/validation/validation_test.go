package validation_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/veranstalter/pkg/validation"
)

type address struct {
	City string `json:"ort" validate:"required,max=10"`
	Zip  string `json:"plz" validate:"omitempty,zip"`
}

type person struct {
	Name    string   `json:"name" validate:"required"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Score   *int     `json:"score" validate:"omitempty,gte=0,lte=5"`
	Kind    string   `json:"kind" validate:"omitempty,oneof=A B"`
	Tags    []string `json:"tags" validate:"omitempty,unique"`
	Address *address `json:"address" validate:"required"`
	Born    string   `json:"born" validate:"omitempty,datetime=2006-01-02"`
}

func newValidator(t *testing.T) *validation.Validator {
	v := validation.New()
	require.NoError(t, v.RegisterPattern("zip", regexp.MustCompile(`^\d{4,5}$`)))
	return v
}

func TestStructValid(t *testing.T) {
	v := newValidator(t)
	score := 3

	err := v.Struct(person{
		Name:    "Alpha",
		Email:   "a@example.com",
		Score:   &score,
		Kind:    "A",
		Tags:    []string{"x", "y"},
		Address: &address{City: "Berlin", Zip: "10115"},
		Born:    "2001-02-03",
	})

	assert.NoError(t, err)
}

func TestStructViolations(t *testing.T) {
	v := newValidator(t)
	score := 9

	err := v.Struct(person{
		Email:   "nope",
		Score:   &score,
		Kind:    "C",
		Tags:    []string{"x", "x"},
		Address: &address{City: "Frankfurt am Main", Zip: "12"},
		Born:    "03.02.2001",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrInvalid))

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))

	assert.ElementsMatch(t, []string{
		"name: is required",
		"email: must be a valid email address",
		"score: must be less than or equal to 5",
		"kind: must be one of [A B]",
		"tags: must not contain duplicates",
		"address.ort: must be at most 10 characters",
		`address.plz: must match ^\d{4,5}$`,
		"born: must be a date in the form 2006-01-02",
	}, verr.Messages())
}

func TestStructMissingNested(t *testing.T) {
	v := newValidator(t)

	err := v.Struct(person{Name: "Alpha"})

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"address: is required"}, verr.Messages())
}
