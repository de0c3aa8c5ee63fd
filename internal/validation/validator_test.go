package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pictorapp/pictor-server/internal/errors"
	"github.com/pictorapp/pictor-server/internal/validation"
)

type sourcesRequest struct {
	Name    string   `json:"name" validate:"required,max=250"`
	Sources []string `json:"sources" validate:"dive,url"`
}

func TestValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(sourcesRequest{
		Name:    "Autumn walk",
		Sources: []string{"https://example.com/a"},
	})
	assert.NoError(t, err)
}

func TestValidateMissingRequired(t *testing.T) {
	v := validation.New()

	err := v.Validate(sourcesRequest{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", fields["name"])
}

func TestValidateBadURL(t *testing.T) {
	v := validation.New()

	err := v.Validate(sourcesRequest{
		Name:    "Walk",
		Sources: []string{"not a url"},
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestValidateUsesJSONNames(t *testing.T) {
	v := validation.New()

	type renamed struct {
		Value string `json:"display_name,omitempty" validate:"required"`
	}

	err := v.Validate(renamed{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	_, present := fields["display_name"]
	assert.True(t, present)
}
