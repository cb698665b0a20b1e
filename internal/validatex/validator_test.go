package validatex

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name    string `json:"name" validate:"notblank"`
	Pass    string `json:"pass" validate:"required,min=6"`
	Confirm string `json:"confirm" validate:"required,eqfield=Pass"`
	Color   string `json:"color" validate:"required,oneof=red green"`
}

type withMessages struct {
	Pass    string `json:"pass" validate:"required,min=6"`
	Confirm string `json:"confirm" validate:"required,eqfield=Pass"`
}

func (withMessages) ValidationMessages() map[string]string {
	return map[string]string{
		"required":        "fill everything",
		"confirm.eqfield": "no match",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        signup
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "whitespace name counts as missing",
			in:        signup{Name: "  ", Pass: "abc", Confirm: "abd", Color: "blue"},
			wantField: "name",
			wantTag:   "notblank",
			wantMsg:   "name is required",
		},
		{
			name:      "presence beats format even on a later field",
			in:        signup{Name: "a", Pass: "abc", Confirm: "abd"},
			wantField: "color",
			wantTag:   "required",
		},
		{
			name:      "equality beats length",
			in:        signup{Name: "a", Pass: "abc", Confirm: "abd", Color: "red"},
			wantField: "confirm",
			wantTag:   "eqfield",
			wantMsg:   "confirm does not match",
		},
		{
			name:      "length",
			in:        signup{Name: "a", Pass: "abc", Confirm: "abc", Color: "red"},
			wantField: "pass",
			wantTag:   "min",
			wantMsg:   "pass must be at least 6 characters",
		},
		{
			name:      "oneof",
			in:        signup{Name: "a", Pass: "abcdef", Confirm: "abcdef", Color: "blue"},
			wantField: "color",
			wantTag:   "oneof",
			wantMsg:   "color must be one of: red, green",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, tt.wantTag, ve.Tag)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, ve.Error())
			}
		})
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, Validate(signup{Name: "a", Pass: "abcdef", Confirm: "abcdef", Color: "green"}))
}

func TestValidate_MessengerOverrides(t *testing.T) {
	err := Validate(withMessages{})
	require.EqualError(t, err, "fill everything")

	err = Validate(withMessages{Pass: "abcdef", Confirm: "x"})
	require.EqualError(t, err, "no match")

	err = Validate(withMessages{Pass: "abc", Confirm: "abc"})
	require.EqualError(t, err, "pass must be at least 6 characters")
}

func TestMustRegister_PanicsOnRejectedTag(t *testing.T) {
	v := validator.New()
	assert.PanicsWithValue(t, `validatex: register "": function Key cannot be empty`, func() {
		mustRegister(v, "", func(validator.FieldLevel) bool { return true })
	})
	assert.NotPanics(t, func() {
		mustRegister(v, "always", func(validator.FieldLevel) bool { return true })
	})
}

func TestNew_RegistersNotBlank(t *testing.T) {
	type form struct {
		Name string `json:"name" validate:"notblank"`
	}
	assert.NotPanics(t, func() {
		err := New().Validate(form{Name: "  "})
		require.ErrorIs(t, err, ErrValidation)
	})
}
