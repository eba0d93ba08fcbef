package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose" validate:"required"`
	Tone    string `json:"tone" validate:"omitempty,oneof=professional friendly formal casual"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(sampleRequest{Email: "a@example.com", Purpose: "sync", Tone: "friendly"})
	assert.NoError(t, err)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(sampleRequest{Email: "not-an-email"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "purpose is required")
}

func TestValidateStructOneOf(t *testing.T) {
	err := ValidateStruct(sampleRequest{Email: "a@example.com", Purpose: "sync", Tone: "sarcastic"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tone must be one of")
}
