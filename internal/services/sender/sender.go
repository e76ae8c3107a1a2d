// Package services реализует доставку писем: выгрузки журнала отказов
// администратору, подтверждения почты, напоминания об истечении премиума
// и счета клиентам. Тексты писем локализуются по языку получателя.
package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/magabrotheeeer/mrtasks/internal/lib/i18n"
	"github.com/magabrotheeeer/mrtasks/internal/lib/sl"
	"github.com/magabrotheeeer/mrtasks/internal/lib/smtp"
	"github.com/magabrotheeeer/mrtasks/internal/models"
	"github.com/magabrotheeeer/mrtasks/internal/ratelimit"
)

// SenderService отправляет письма через SMTP-транспорт.
type SenderService struct {
	transport  smtp.TransportInterface
	catalog    *i18n.Catalog
	adminEmail string
	log        *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, catalog *i18n.Catalog,
	adminEmail string, log *slog.Logger) *SenderService {
	return &SenderService{
		transport:  transport,
		catalog:    catalog,
		adminEmail: adminEmail,
		log:        log,
	}
}

// SendViolationLogExport отправляет администратору CSV-выгрузку журнала
// отказов лимитера вложением.
func (s *SenderService) SendViolationLogExport(body []byte) error {
	var message models.ViolationLogExport
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Rate limit violations report " + message.Date.Format("2006-01-02")
	bodyText := fmt.Sprintf("Attached is the rate limit violation log exported at %s.",
		message.Date.Format("2006-01-02 15:04:05"))
	filename := ratelimit.AttachmentName(message.Date)

	return s.sendEmailWithAttachment([]string{s.adminEmail}, "", subject, bodyText,
		filename, "text/csv", message.CSV)
}

// SendVerificationEmail отправляет письмо с токеном подтверждения почты.
func (s *SenderService) SendVerificationEmail(body []byte) error {
	var message models.VerificationEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	lang := message.Language
	subject := s.catalog.Message(lang, "email.verification.subject")
	bodyText := fmt.Sprintf("%s, %s!\n\n%s\n\n/api/v1/email-verify?token=%s\n\n%s",
		"Hello", message.Username,
		s.catalog.Message(lang, "email.verification.body"),
		message.Token,
		s.catalog.Message(lang, "email.verification.footer"))

	return s.sendEmail([]string{message.Email}, "", subject, bodyText)
}

// SendPasswordResetEmail отправляет письмо с токеном сброса пароля.
func (s *SenderService) SendPasswordResetEmail(body []byte) error {
	var message models.PasswordResetEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	lang := message.Language
	subject := s.catalog.Message(lang, "email.password.reset.subject")
	bodyText := fmt.Sprintf("%s, %s!\n\n%s\n\n%s\n\n%s",
		"Hello", message.Username,
		s.catalog.Message(lang, "email.password.reset.body"),
		message.Token,
		s.catalog.Message(lang, "email.password.reset.footer"))

	return s.sendEmail([]string{message.Email}, "", subject, bodyText)
}

// SendPremiumExpiryNotice отправляет напоминание об окончании премиум-подписки.
func (s *SenderService) SendPremiumExpiryNotice(body []byte) error {
	var message models.PremiumExpiryNotice
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	lang := message.Language
	subject := s.catalog.Message(lang, "email.premium.subject")
	bodyText := fmt.Sprintf("%s, %s!\n\n%s %s.",
		"Hello", message.Username,
		s.catalog.Message(lang, "email.premium.body"),
		message.ExpiresAt.Format("2006-01-02"))

	return s.sendEmail([]string{message.Email}, "", subject, bodyText)
}

// SendInvoiceEmail отправляет клиенту письмо со счётом во вложении.
// Ответ на письмо уходит на почту профиля отправителя.
func (s *SenderService) SendInvoiceEmail(body []byte) error {
	var message models.InvoiceEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	lang := message.Language
	subject := fmt.Sprintf("%s %s",
		s.catalog.Message(lang, "email.invoice.subject"), message.CompanyName)
	bodyText := s.catalog.Message(lang, "email.invoice.body")

	return s.sendEmailWithAttachment([]string{message.Email}, message.ReplyTo,
		subject, bodyText, message.Filename, "application/pdf", message.PDF)
}

func (s *SenderService) sendEmail(to []string, replyTo, subject, bodyText string) error {
	headers := []string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
	}
	if replyTo != "" {
		headers = append(headers, "Reply-To: "+replyTo)
	}
	msg := strings.Join(append(headers, "", bodyText), "\r\n")
	return s.deliver(to, []byte(msg))
}

func (s *SenderService) sendEmailWithAttachment(to []string, replyTo, subject, bodyText,
	filename, contentType string, attachment []byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	headers := []string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary=\"" + writer.Boundary() + "\"",
	}
	if replyTo != "" {
		headers = append(headers, "Reply-To: "+replyTo)
	}
	buf.WriteString(strings.Join(headers, "\r\n") + "\r\n\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=\"UTF-8\"")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return fmt.Errorf("failed to create text part: %w", err)
	}
	if _, err := textPart.Write([]byte(bodyText)); err != nil {
		return fmt.Errorf("failed to write text part: %w", err)
	}

	attachmentHeader := textproto.MIMEHeader{}
	attachmentHeader.Set("Content-Type", contentType)
	attachmentHeader.Set("Content-Transfer-Encoding", "base64")
	attachmentHeader.Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filename))
	attachmentPart, err := writer.CreatePart(attachmentHeader)
	if err != nil {
		return fmt.Errorf("failed to create attachment part: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(attachment)
	if _, err := attachmentPart.Write([]byte(encoded)); err != nil {
		return fmt.Errorf("failed to write attachment: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart message: %w", err)
	}

	return s.deliver(to, buf.Bytes())
}

func (s *SenderService) deliver(to []string, msg []byte) error {
	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write(msg); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
