package models

import (
	"fmt"
	"net/mail"

	"github.com/vdellis/inkpost/internal/apperr"
	"github.com/vdellis/inkpost/internal/query"
)

// UserInput is the payload for creating a user.
type UserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (in UserInput) Validate() error {
	if l := len(in.Username); l < 3 || l > 50 {
		return invalid("username must be between 3 and 50 characters")
	}
	if err := validEmail(in.Email); err != nil {
		return err
	}
	if l := len(in.Password); l < 6 || l > 255 {
		return invalid("password must be between 6 and 255 characters")
	}
	if l := len(in.FirstName); l > 100 {
		return invalid("first_name must be at most 100 characters")
	}
	if l := len(in.LastName); l > 100 {
		return invalid("last_name must be at most 100 characters")
	}
	if in.Role != "" && !Role(in.Role).Valid() {
		return invalid("role must be one of admin, user, moderator")
	}
	return nil
}

// UserUpdate is the payload for updating a user. Optional fields are
// pointers so that absent keys stay out of the generated SET clause.
type UserUpdate struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

func (in UserUpdate) Validate() error {
	if in.Username == nil {
		return invalid("username is required")
	}
	if l := len(*in.Username); l < 3 || l > 50 {
		return invalid("username must be between 3 and 50 characters")
	}
	if in.Email == nil {
		return invalid("email is required")
	}
	if err := validEmail(*in.Email); err != nil {
		return err
	}
	if in.FirstName != nil && len(*in.FirstName) > 100 {
		return invalid("first_name must be at most 100 characters")
	}
	if in.LastName != nil && len(*in.LastName) > 100 {
		return invalid("last_name must be at most 100 characters")
	}
	if in.Role != nil && !Role(*in.Role).Valid() {
		return invalid("role must be one of admin, user, moderator")
	}
	return nil
}

// Record converts the update into ordered column/value pairs, keeping
// absent fields out so they are not overwritten.
func (in UserUpdate) Record() query.Record {
	var rec query.Record
	if in.Username != nil {
		rec.Set("username", *in.Username)
	}
	if in.Email != nil {
		rec.Set("email", *in.Email)
	}
	if in.FirstName != nil {
		rec.Set("first_name", *in.FirstName)
	}
	if in.LastName != nil {
		rec.Set("last_name", *in.LastName)
	}
	if in.Role != nil {
		rec.Set("role", *in.Role)
	}
	if in.IsActive != nil {
		rec.Set("is_active", *in.IsActive)
	}
	return rec
}

// PostInput is the payload for creating or replacing a post.
type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
	Status  string `json:"status"`
}

func (in PostInput) Validate() error {
	if l := len(in.Title); l < 3 || l > 255 {
		return invalid("title must be between 3 and 255 characters")
	}
	if l := len(in.Content); l < 10 || l > 65535 {
		return invalid("content must be between 10 and 65535 characters")
	}
	if l := len(in.Author); l < 2 || l > 255 {
		return invalid("author must be between 2 and 255 characters")
	}
	if in.Status != "" && !PostStatus(in.Status).Valid() {
		return invalid("status must be one of draft, published, archived")
	}
	return nil
}

func validEmail(email string) error {
	if email == "" || len(email) > 255 {
		return invalid("email must be a valid address of at most 255 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email must be a valid address")
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalidInput, msg)
}
