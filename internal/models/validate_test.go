package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vdellis/inkpost/internal/apperr"
)

func strPtr(s string) *string { return &s }

func validUserInput() UserInput {
	return UserInput{Username: "jo_doe", Email: "jo@x.com", Password: "secret123"}
}

func TestUserInputPasswordBoundary(t *testing.T) {
	in := validUserInput()

	in.Password = "12345"
	require.ErrorIs(t, in.Validate(), apperr.ErrInvalidInput)

	in.Password = "123456"
	require.NoError(t, in.Validate())
}

func TestUserInputUsernameBounds(t *testing.T) {
	in := validUserInput()

	in.Username = "ab"
	require.ErrorIs(t, in.Validate(), apperr.ErrInvalidInput)

	in.Username = strings.Repeat("a", 51)
	require.ErrorIs(t, in.Validate(), apperr.ErrInvalidInput)

	in.Username = strings.Repeat("a", 50)
	require.NoError(t, in.Validate())
}

func TestUserInputEmail(t *testing.T) {
	in := validUserInput()

	for _, email := range []string{"", "not-an-email", "@x.com"} {
		in.Email = email
		require.ErrorIs(t, in.Validate(), apperr.ErrInvalidInput, "email %q", email)
	}

	in.Email = "jo@x.com"
	require.NoError(t, in.Validate())
}

func TestUserInputRoleEnum(t *testing.T) {
	in := validUserInput()

	for _, role := range []string{"admin", "user", "moderator", ""} {
		in.Role = role
		require.NoError(t, in.Validate(), "role %q", role)
	}

	in.Role = "root"
	require.ErrorIs(t, in.Validate(), apperr.ErrInvalidInput)
}

func TestUserUpdateRequiredFields(t *testing.T) {
	up := UserUpdate{Email: strPtr("jo@x.com")}
	require.ErrorIs(t, up.Validate(), apperr.ErrInvalidInput)

	up = UserUpdate{Username: strPtr("jo_doe")}
	require.ErrorIs(t, up.Validate(), apperr.ErrInvalidInput)

	up = UserUpdate{Username: strPtr("jo_doe"), Email: strPtr("jo@x.com")}
	require.NoError(t, up.Validate())
}

func TestUserUpdateRecordKeepsOnlyProvidedFields(t *testing.T) {
	active := false
	up := UserUpdate{
		Username: strPtr("jo_doe"),
		Email:    strPtr("jo@x.com"),
		IsActive: &active,
	}

	rec := up.Record()
	require.Equal(t, []string{"username", "email", "is_active"}, rec.Columns())
	require.Equal(t, []any{"jo_doe", "jo@x.com", false}, rec.Values())
}

func TestPostInputBounds(t *testing.T) {
	valid := PostInput{Title: "Hello", Content: strings.Repeat("c", 10), Author: "jo"}
	require.NoError(t, valid.Validate())

	in := valid
	in.Title = "no"
	require.ErrorIs(t, in.Validate(), apperr.ErrInvalidInput)

	in = valid
	in.Content = "short"
	require.ErrorIs(t, in.Validate(), apperr.ErrInvalidInput)

	in = valid
	in.Author = "j"
	require.ErrorIs(t, in.Validate(), apperr.ErrInvalidInput)

	in = valid
	in.Status = "deleted"
	require.ErrorIs(t, in.Validate(), apperr.ErrInvalidInput)

	in = valid
	in.Status = "published"
	require.NoError(t, in.Validate())
}
