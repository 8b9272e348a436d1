package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/BradenHooton/vigil/internal/models"
)

// AlertService notifies the trust & safety inbox about findings that want a
// human look. Alerts are best-effort: send failures are logged, never
// propagated, since every caller is already off the request hot path.
type AlertService interface {
	MultiAccountDetected(ctx context.Context, link *models.MultiAccountLink)
	PermanentBan(ctx context.Context, ban *models.BanRecord)
}

// AWSSESAlertService delivers alerts by email through AWS SES.
type AWSSESAlertService struct {
	sesClient   *ses.Client
	fromAddress string
	toAddresses []string
	logger      *slog.Logger
}

func NewAWSSESAlertService(region, fromAddress string, toAddresses []string, logger *slog.Logger) (*AWSSESAlertService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESAlertService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		toAddresses: toAddresses,
		logger:      logger,
	}, nil
}

// MultiAccountDetected alerts on a newly created high-confidence link.
func (s *AWSSESAlertService) MultiAccountDetected(ctx context.Context, link *models.MultiAccountLink) {
	subject := fmt.Sprintf("[vigil] Multi-account detection (%d%% confidence)", link.Confidence)

	body := fmt.Sprintf(`A high-confidence multi-account link was detected.

Primary user: %s
Linked user:  %s
Link type:    %s
Confidence:   %d
Link ID:      %s

Review it in the admin console before taking action.
`, link.PrimaryUserID, link.LinkedUserID, link.LinkType, link.Confidence, link.ID)

	s.send(ctx, subject, body)
}

// PermanentBan alerts when an account is permanently banned.
func (s *AWSSESAlertService) PermanentBan(ctx context.Context, ban *models.BanRecord) {
	subject := "[vigil] Permanent ban issued"

	body := fmt.Sprintf(`An account was permanently banned.

User:      %s
Banned by: %s
Reason:    %s
Ban ID:    %s
`, ban.UserID, ban.BannedBy, ban.Reason, ban.ID)

	s.send(ctx, subject, body)
}

func (s *AWSSESAlertService) send(ctx context.Context, subject, body string) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: s.toAddresses,
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

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send alert via SES",
			slog.String("subject", subject),
			slog.Any("error", err))
		return
	}

	s.logger.Info("alert sent",
		slog.String("subject", subject),
		slog.String("recipients", strings.Join(s.toAddresses, ",")),
		slog.String("message_id", *result.MessageId))
}

// NoopAlertService is used when alerting is disabled.
type NoopAlertService struct{}

func (NoopAlertService) MultiAccountDetected(context.Context, *models.MultiAccountLink) {}
func (NoopAlertService) PermanentBan(context.Context, *models.BanRecord)                {}
