package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"comparteride/api/internal/repository"
	jwtpkg "comparteride/api/pkg/jwt"
)

const JobSendConfirmationEmail = "send_confirmation_email"

type ConfirmationEmailPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

// Mailer delivers a plain-text email. Satisfied by service.MailSender.
type Mailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// ConfirmationEmailHandler builds the account-verification token for the user
// and mails it out.
func ConfirmationEmailHandler(users repository.UserRepository, tokens *jwtpkg.Manager, mailer Mailer) HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) error {
		var p ConfirmationEmailPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}

		user, err := users.GetByID(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		token, err := tokens.GenerateVerificationToken(user.ID, user.Username)
		if err != nil {
			return fmt.Errorf("generate verification token: %w", err)
		}

		subject := fmt.Sprintf(
			"Welcome @%s! Verify your account to start using Comparte Ride",
			user.Username,
		)
		body := fmt.Sprintf(
			"Hi @%s,\n\n"+
				"Welcome to Comparte Ride! Use the token below to verify your "+
				"account. The token expires in 3 days.\n\n%s\n",
			user.Username, token,
		)
		return mailer.Send(ctx, user.Email, subject, body)
	}
}
