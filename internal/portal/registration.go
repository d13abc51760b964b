package portal

import (
	"context"
	"strings"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
)

type RegistrationForm struct {
	Name                 string
	Email                string
	Phone                string
	Password             string
	PasswordConfirmation string

	guard submitGuard
}

func (f *RegistrationForm) Validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return invalid("name", "is required")
	case !strings.Contains(f.Email, "@"):
		return invalid("email", "must be a valid email")
	case len(strings.TrimSpace(f.Phone)) < 8:
		return invalid("phone", "must be at least 8 characters")
	case len(f.Password) < 8:
		return invalid("password", "must be at least 8 characters")
	case f.Password != f.PasswordConfirmation:
		return invalid("password_confirmation", "does not match password")
	}
	return nil
}

// Submit checks that the email is free and creates the member.
func (f *RegistrationForm) Submit(ctx context.Context, c *Client) (dto.MemberResponse, error) {
	done, err := f.guard.begin()
	if err != nil {
		return dto.MemberResponse{}, err
	}
	defer done()

	if err := f.Validate(); err != nil {
		return dto.MemberResponse{}, err
	}
	email := utils.NormalizeEmail(f.Email)

	existing, err := c.FindByEmail(ctx, email)
	if err != nil {
		return dto.MemberResponse{}, err
	}
	if len(existing) > 0 {
		return dto.MemberResponse{}, &ConflictError{Op: "register", Msg: "email is already registered"}
	}

	return c.Create(ctx, dto.RegisterRequest{
		Name:                 strings.TrimSpace(f.Name),
		Email:                email,
		Phone:                strings.TrimSpace(f.Phone),
		Password:             f.Password,
		PasswordConfirmation: f.PasswordConfirmation,
	})
}
