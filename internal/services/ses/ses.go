// Package ses provides email notification services via AWS SES
package ses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "car-loan-calculator/internal/config"
	"car-loan-calculator/internal/format"
	"car-loan-calculator/internal/models"
	"car-loan-calculator/internal/utils"
)

var (
	// ErrInvalidRecipient is returned for a missing or malformed address.
	ErrInvalidRecipient = errors.New("invalid recipient email")
	// ErrSenderNotConfigured is returned when SES_SENDER_EMAIL is empty.
	ErrSenderNotConfigured = errors.New("sender email is not configured")
)

// EmailAPI is the subset of the SES client used by the service.
type EmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Service handles SES email operations
type Service struct {
	client    EmailAPI
	fromEmail string
	formatter *format.Formatter
	logger    *zap.Logger
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// LoanSummaryParams contains data for the loan summary email
type LoanSummaryParams struct {
	To             string
	CarName        string
	Year           int
	Price          float64
	DownPayment    float64
	LoanAmount     float64
	InterestRate   float64
	LoanTermYears  int
	MonthlyPayment float64
	TotalPayment   float64
	TotalInterest  float64
	ScheduleURL    string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

// NewService creates a new SES service
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewServiceWithClient(ses.NewFromConfig(cfg), appCfg.SESSenderEmail, format.NewFormatter(appCfg.Locale)), nil
}

// NewServiceWithClient creates a service on top of an existing client.
func NewServiceWithClient(client EmailAPI, fromEmail string, formatter *format.Formatter) *Service {
	if formatter == nil {
		formatter = format.NewFormatter("ru-RU")
	}
	return &Service{
		client:    client,
		fromEmail: fromEmail,
		formatter: formatter,
		logger:    utils.Named("ses"),
	}
}

// BuildLoanSummaryParams creates summary params from a stored car.
func BuildLoanSummaryParams(to string, car *models.Car, scheduleURL string) LoanSummaryParams {
	return LoanSummaryParams{
		To:             to,
		CarName:        car.Name,
		Year:           car.Year,
		Price:          car.Price,
		DownPayment:    car.DownPayment,
		LoanAmount:     car.LoanAmount,
		InterestRate:   car.InterestRate,
		LoanTermYears:  car.LoanTermYears,
		MonthlyPayment: car.MonthlyPayment,
		TotalPayment:   car.TotalPayment,
		TotalInterest:  car.TotalInterest,
		ScheduleURL:    scheduleURL,
	}
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	if s.fromEmail == "" {
		return nil, ErrSenderNotConfigured
	}
	if _, err := mail.ParseAddress(params.To); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecipient, params.To)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	messageID := aws.ToString(result.MessageId)
	s.logger.Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", messageID),
	)

	return &SendEmailResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}

// SendLoanSummary sends the loan summary of one car.
func (s *Service) SendLoanSummary(ctx context.Context, params LoanSummaryParams) (*SendEmailResult, error) {
	htmlBody, err := s.renderLoanSummaryHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	return s.SendEmail(ctx, EmailParams{
		To:       params.To,
		Subject:  fmt.Sprintf("Расчёт кредита: %s", params.CarName),
		HTMLBody: htmlBody,
		TextBody: s.renderLoanSummaryText(params),
	})
}

var loanSummaryTemplate = template.Must(template.New("loan_summary").Funcs(template.FuncMap{
	"currency": func(f *format.Formatter, v float64) string { return f.Currency(v) },
	"number":   func(f *format.Formatter, v float64) string { return f.Number(v) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1f2937; color: white; padding: 24px; border-radius: 10px 10px 0 0; }
        .content { background: #f9f9f9; padding: 24px; border-radius: 0 0 10px 10px; }
        td { padding: 6px 12px 6px 0; }
        .label { color: #666; }
        .value { font-weight: bold; }
        .footer { text-align: center; margin-top: 24px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.P.CarName}}{{if .P.Year}} ({{.P.Year}}){{end}}</h1>
    </div>
    <div class="content">
        <table>
            <tr><td class="label">Стоимость</td><td class="value">{{currency .F .P.Price}}</td></tr>
            <tr><td class="label">Первоначальный взнос</td><td class="value">{{currency .F .P.DownPayment}}</td></tr>
            <tr><td class="label">Сумма кредита</td><td class="value">{{currency .F .P.LoanAmount}}</td></tr>
            <tr><td class="label">Ставка</td><td class="value">{{number .F .P.InterestRate}}%</td></tr>
            <tr><td class="label">Срок</td><td class="value">{{.P.LoanTermYears}} лет</td></tr>
            <tr><td class="label">Ежемесячный платёж</td><td class="value">{{currency .F .P.MonthlyPayment}}</td></tr>
            <tr><td class="label">Общая сумма выплат</td><td class="value">{{currency .F .P.TotalPayment}}</td></tr>
            <tr><td class="label">Переплата</td><td class="value">{{currency .F .P.TotalInterest}}</td></tr>
        </table>
        {{if .P.ScheduleURL}}
        <p><a href="{{.P.ScheduleURL}}">График платежей (CSV)</a></p>
        {{end}}
    </div>
    <div class="footer">
        <p>Car Loan Calculator</p>
    </div>
</body>
</html>`))

func (s *Service) renderLoanSummaryHTML(params LoanSummaryParams) (string, error) {
	var buf bytes.Buffer
	data := struct {
		P LoanSummaryParams
		F *format.Formatter
	}{P: params, F: s.formatter}

	if err := loanSummaryTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) renderLoanSummaryText(params LoanSummaryParams) string {
	var buf bytes.Buffer
	f := s.formatter

	buf.WriteString(params.CarName)
	if params.Year > 0 {
		buf.WriteString(fmt.Sprintf(" (%d)", params.Year))
	}
	buf.WriteString("\n\n")
	buf.WriteString(fmt.Sprintf("Стоимость: %s\n", f.Currency(params.Price)))
	buf.WriteString(fmt.Sprintf("Первоначальный взнос: %s\n", f.Currency(params.DownPayment)))
	buf.WriteString(fmt.Sprintf("Сумма кредита: %s\n", f.Currency(params.LoanAmount)))
	buf.WriteString(fmt.Sprintf("Ставка: %s%%\n", f.Number(params.InterestRate)))
	buf.WriteString(fmt.Sprintf("Срок: %d лет\n", params.LoanTermYears))
	buf.WriteString(fmt.Sprintf("Ежемесячный платёж: %s\n", f.Currency(params.MonthlyPayment)))
	buf.WriteString(fmt.Sprintf("Общая сумма выплат: %s\n", f.Currency(params.TotalPayment)))
	buf.WriteString(fmt.Sprintf("Переплата: %s\n", f.Currency(params.TotalInterest)))

	if params.ScheduleURL != "" {
		buf.WriteString(fmt.Sprintf("\nГрафик платежей: %s\n", params.ScheduleURL))
	}

	return buf.String()
}
