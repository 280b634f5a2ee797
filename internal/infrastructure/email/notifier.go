package email

import (
	"context"
	"fmt"
	"time"

	"github.com/pawhaven/pawhaven/internal/shared/biztime"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

// RecipientResolver maps a user id to their email address. User accounts
// live outside this service, so the lookup is pluggable.
type RecipientResolver interface {
	EmailByUserID(ctx context.Context, userID uint) (string, error)
}

// GuardianshipNotifier sends the guardianship lifecycle emails. Without a
// resolver it only logs, which keeps worker deployments working before the
// account service is wired in.
type GuardianshipNotifier struct {
	sender   *SMTPSender
	resolver RecipientResolver
	logger   logger.Interface
}

func NewGuardianshipNotifier(sender *SMTPSender, resolver RecipientResolver, logger logger.Interface) *GuardianshipNotifier {
	return &GuardianshipNotifier{
		sender:   sender,
		resolver: resolver,
		logger:   logger,
	}
}

func (n *GuardianshipNotifier) GuardianshipGraceEntered(ctx context.Context, userID uint, guardianshipSID string, graceUntil time.Time) error {
	if n.resolver == nil {
		n.logger.Infow("grace notification skipped, no recipient resolver",
			"user_id", userID,
			"guardianship_sid", guardianshipSID)
		return nil
	}

	to, err := n.resolver.EmailByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}

	deadline := biztime.ToBizTimezone(graceUntil).Format("2 January 2006")
	subject := "Your guardianship needs attention"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>We could not process your monthly payment</h2>
			<p>Your guardianship is on hold until <strong>%s</strong>.</p>
			<p>Please update your payment details before then, otherwise the
			guardianship will end automatically.</p>
		</body>
		</html>
	`, deadline)
	plainBody := fmt.Sprintf(`We could not process your monthly payment.

Your guardianship is on hold until %s. Please update your payment details
before then, otherwise the guardianship will end automatically.
`, deadline)

	return n.sender.Send(to, subject, htmlBody, plainBody)
}

func (n *GuardianshipNotifier) GuardianshipCompleted(ctx context.Context, userID uint, guardianshipSID string) error {
	if n.resolver == nil {
		n.logger.Infow("completion notification skipped, no recipient resolver",
			"user_id", userID,
			"guardianship_sid", guardianshipSID)
		return nil
	}

	to, err := n.resolver.EmailByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}

	subject := "Your guardianship has ended"
	htmlBody := `
		<html>
		<body>
			<h2>Thank you for your support</h2>
			<p>Your guardianship has ended. You can start a new one any time
			from your account.</p>
		</body>
		</html>
	`
	plainBody := `Thank you for your support.

Your guardianship has ended. You can start a new one any time from your
account.
`

	return n.sender.Send(to, subject, htmlBody, plainBody)
}
