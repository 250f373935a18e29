package mail

import (
	"context"
	"log/slog"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/pkg/errors"
)

const (
	sesAuthStatic  = "static_credentials"
	sesAuthIAMRole = "iam_role"
	charsetUTF8    = "UTF-8"
)

// sesAPI is the part of the SES v2 client the sender uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesSender struct {
	client sesAPI
	from   string
	logger *slog.Logger
}

// NewSESSender creates a MailSender backed by AWS SES v2. The credential source
// follows mail.ses.authType.
func NewSESSender(ctx context.Context, cfg *config.MailConfig, logger *slog.Logger) (service.MailSender, error) {
	if cfg.From == "" {
		return nil, errors.New("mail.from is required for the ses provider")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.SES.Region)}

	switch cfg.SES.AuthType {
	case sesAuthStatic:
		if cfg.SES.AccessKeyID == "" || cfg.SES.SecretAccessKey == "" {
			return nil, errors.New("ses static credentials require accessKeyId and secretAccessKey")
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SES.AccessKeyID, cfg.SES.SecretAccessKey, ""),
		))
	case sesAuthIAMRole, "":
	default:
		logger.Warn("Unknown SES auth type, using the default credential chain", slog.String("auth_type", cfg.SES.AuthType))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	logger.Info("SES mail sender initialized", slog.String("region", cfg.SES.Region))

	return newSESSender(sesv2.NewFromConfig(awsCfg), cfg.From, logger), nil
}

func newSESSender(client sesAPI, from string, logger *slog.Logger) *sesSender {
	return &sesSender{client: client, from: from, logger: logger}
}

func (s *sesSender) Send(ctx context.Context, message *service.MailMessage) error {
	body := &types.Body{
		Text: &types.Content{Data: aws.String(message.TextBody), Charset: aws.String(charsetUTF8)},
	}
	if message.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(message.HTMLBody), Charset: aws.String(charsetUTF8)}
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{message.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(message.Subject), Charset: aws.String(charsetUTF8)},
				Body:    body,
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "ses send email")
	}

	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Info("Email sent via SES",
		slog.String("subject", message.Subject),
		slog.String("message_id", aws.ToString(out.MessageId)),
	)

	return nil
}
