package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

type sample struct {
	Name   string   `json:"firstName" validate:"required,max=5"`
	Email  string   `json:"email" validate:"omitempty,email"`
	Rating *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

func TestStruct(t *testing.T) {
	high := 7.0
	tests := []struct {
		name      string
		in        sample
		wantField string
		wantMsg   string
	}{
		{"valid", sample{Name: "Ann"}, "", ""},
		{"missing name", sample{}, "firstName", "firstName is required"},
		{"name too long", sample{Name: "Annabelle"}, "firstName", "firstName must be at most 5 characters"},
		{"bad email", sample{Name: "Ann", Email: "nope"}, "email", "email must be a valid email address"},
		{"rating out of range", sample{Name: "Ann", Rating: &high}, "rating", "rating must be less than or equal to 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var ve *utils.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, tt.wantMsg, ve.Message)
		})
	}
}

func TestGetValidatorIsSingleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}
