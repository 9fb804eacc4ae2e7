package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailKind string

const (
	EmailWelcome        EmailKind = "welcome"
	EmailForgotPassword EmailKind = "forgot_password"
	EmailAccountRestore EmailKind = "account_restore"
	EmailLogout         EmailKind = "logout"
	EmailOldVisit       EmailKind = "old_visit"
)

// EmailContext carries the per-message template values.
type EmailContext struct {
	Name        string
	ActionToken string
}

// EmailSender is the capability the auth service and the sweeper depend on.
type EmailSender interface {
	Send(ctx context.Context, kind EmailKind, to string, emailCtx EmailContext) error
}

type EmailService struct {
	client    *resend.Client
	fromEmail string
	appURL    string
	appName   string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		appURL:    appURL,
		appName:   appName,
		isDev:     isDev,
	}
}

func (s *EmailService) Send(ctx context.Context, kind EmailKind, to string, emailCtx EmailContext) error {
	subject, body, err := s.render(kind, emailCtx)
	if err != nil {
		return err
	}

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err = s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", to)
	}
	return err
}

func (s *EmailService) render(kind EmailKind, emailCtx EmailContext) (subject, body string, err error) {
	switch kind {
	case EmailWelcome:
		subject, body = welcomeEmailTemplate(emailCtx.Name, s.verifyURL(emailCtx.ActionToken), s.appName)
	case EmailForgotPassword:
		subject, body = forgotPasswordEmailTemplate(s.resetURL(emailCtx.ActionToken), s.appName)
	case EmailAccountRestore:
		subject, body = accountRestoreEmailTemplate(s.restoreURL(emailCtx.ActionToken), s.appName)
	case EmailLogout:
		subject, body = logoutEmailTemplate(emailCtx.Name, s.appName)
	case EmailOldVisit:
		subject, body = oldVisitEmailTemplate(emailCtx.Name, s.appURL, s.appName)
	default:
		return "", "", fmt.Errorf("unknown email kind: %s", kind)
	}
	return subject, body, nil
}

func (s *EmailService) verifyURL(actionToken string) string {
	return fmt.Sprintf("%s/verify-email/%s", s.appURL, actionToken)
}

func (s *EmailService) resetURL(actionToken string) string {
	return fmt.Sprintf("%s/forgot-password/%s", s.appURL, actionToken)
}

func (s *EmailService) restoreURL(actionToken string) string {
	return fmt.Sprintf("%s/account-restore/%s", s.appURL, actionToken)
}
