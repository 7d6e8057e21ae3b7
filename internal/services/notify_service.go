package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Notifier sends best-effort account emails. Implementations must never
// surface failures to the calling operation.
type Notifier interface {
	Welcome(ctx context.Context, email, name string)
	SubscriptionActivated(ctx context.Context, email, name, plan string)
}

// SESNotifier sends notifications through AWS SES.
type SESNotifier struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewSESNotifier creates a new SES-backed notifier
func NewSESNotifier(region, fromAddress string, logger *slog.Logger) (*SESNotifier, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESNotifier{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// Welcome sends the post-signup email.
func (n *SESNotifier) Welcome(ctx context.Context, email, name string) {
	subject := "Welcome to Copyfolio"
	body := fmt.Sprintf(`Hi %s,

Your Copyfolio account is ready. Log in to pick a plan and start copying top traders.

— The Copyfolio team
`, name)

	n.send(ctx, email, subject, body)
}

// SubscriptionActivated confirms a plan activation.
func (n *SESNotifier) SubscriptionActivated(ctx context.Context, email, name, plan string) {
	subject := fmt.Sprintf("Your %s plan is active", plan)
	body := fmt.Sprintf(`Hi %s,

Your %s subscription is now active. It renews monthly; you can cancel at any time from your account page.

— The Copyfolio team
`, name, plan)

	n.send(ctx, email, subject, body)
}

func (n *SESNotifier) send(ctx context.Context, email, subject, body string) {
	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	if _, err := n.sesClient.SendEmail(ctx, input); err != nil {
		n.logger.Warn("failed to send notification email", slog.Any("error", err))
	}
}

// NopNotifier drops all notifications. Used when email is disabled and in tests.
type NopNotifier struct{}

func (NopNotifier) Welcome(ctx context.Context, email, name string) {}

func (NopNotifier) SubscriptionActivated(ctx context.Context, email, name, plan string) {}
