package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mrtasks/internal/lib/i18n"
	"github.com/magabrotheeeer/mrtasks/internal/lib/smtp"
	"github.com/magabrotheeeer/mrtasks/internal/models"
)

// fakeClient записывает всё, что ушло бы в SMTP DATA, и запоминает адреса.
type fakeClient struct {
	from    string
	rcpts   []string
	data    bytes.Buffer
	quitted bool
}

type fakeWriteCloser struct{ buf *bytes.Buffer }

func (w *fakeWriteCloser) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *fakeWriteCloser) Close() error                { return nil }

func (c *fakeClient) Mail(from string) error { c.from = from; return nil }
func (c *fakeClient) Rcpt(to string) error   { c.rcpts = append(c.rcpts, to); return nil }
func (c *fakeClient) Data() (io.WriteCloser, error) {
	return &fakeWriteCloser{buf: &c.data}, nil
}
func (c *fakeClient) Quit() error  { c.quitted = true; return nil }
func (c *fakeClient) Close() error { return nil }

type fakeTransport struct {
	client *fakeClient
	user   string
}

func (t *fakeTransport) Connect() (smtp.Client, error) { return t.client, nil }
func (t *fakeTransport) GetSMTPUser() string           { return t.user }

func newTestSender(t *testing.T) (*SenderService, *fakeClient) {
	t.Helper()
	catalog, err := i18n.NewCatalog()
	require.NoError(t, err)

	client := &fakeClient{}
	transport := &fakeTransport{client: client, user: "noreply@mrtasks.test"}
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewSenderService(transport, catalog, "admin@mrtasks.test", log), client
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return body
}

func TestSenderService_SendViolationLogExport(t *testing.T) {
	svc, client := newTestSender(t)

	csv := []byte("Timestamp,Username,IPAddress,Action\n2026-05-10T13:50:00Z,alice,10.0.0.1,task-create\n")
	body := mustMarshal(t, models.ViolationLogExport{
		Date: time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC),
		CSV:  csv,
	})

	require.NoError(t, svc.SendViolationLogExport(body))

	msg := client.data.String()
	assert.Equal(t, []string{"admin@mrtasks.test"}, client.rcpts)
	assert.Equal(t, "noreply@mrtasks.test", client.from)
	assert.Contains(t, msg, "Subject: Rate limit violations report 2026-05-10")
	assert.Contains(t, msg, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, msg, `attachment; filename="rate_limit_violations_2026-05-10.csv"`)
	assert.Contains(t, msg, base64.StdEncoding.EncodeToString(csv))
	assert.True(t, client.quitted)
}

func TestSenderService_SendVerificationEmail(t *testing.T) {
	svc, client := newTestSender(t)

	body := mustMarshal(t, models.VerificationEmail{
		Email:    "alice@example.com",
		Username: "alice",
		Token:    "tok-123",
		Language: "en",
	})

	require.NoError(t, svc.SendVerificationEmail(body))

	msg := client.data.String()
	assert.Equal(t, []string{"alice@example.com"}, client.rcpts)
	assert.Contains(t, msg, "/api/v1/email-verify?token=tok-123")
	assert.Contains(t, msg, "Subject: ")
	assert.NotContains(t, msg, "Reply-To:")
}

func TestSenderService_SendPasswordResetEmail(t *testing.T) {
	svc, client := newTestSender(t)

	body := mustMarshal(t, models.PasswordResetEmail{
		Email:    "alice@example.com",
		Username: "alice",
		Token:    "reset-tok-42",
		Language: "en",
	})

	require.NoError(t, svc.SendPasswordResetEmail(body))

	msg := client.data.String()
	assert.Equal(t, []string{"alice@example.com"}, client.rcpts)
	assert.Contains(t, msg, "Subject: Reset your password")
	assert.Contains(t, msg, "reset-tok-42")
	assert.NotContains(t, msg, "Reply-To:")
}

func TestSenderService_SendPremiumExpiryNotice(t *testing.T) {
	svc, client := newTestSender(t)

	body := mustMarshal(t, models.PremiumExpiryNotice{
		Email:     "boris@example.com",
		Username:  "boris",
		Language:  "ru",
		ExpiresAt: time.Date(2026, 5, 13, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, svc.SendPremiumExpiryNotice(body))

	msg := client.data.String()
	assert.Equal(t, []string{"boris@example.com"}, client.rcpts)
	assert.Contains(t, msg, "2026-05-13")
}

func TestSenderService_SendInvoiceEmail(t *testing.T) {
	svc, client := newTestSender(t)

	pdf := []byte("%PDF-1.4 test")
	body := mustMarshal(t, models.InvoiceEmail{
		Email:       "billing@acme.test",
		CompanyName: "Alice Design",
		ReplyTo:     "alice@example.com",
		Language:    "en",
		Filename:    "invoice_alice.pdf",
		PDF:         pdf,
	})

	require.NoError(t, svc.SendInvoiceEmail(body))

	msg := client.data.String()
	assert.Equal(t, []string{"billing@acme.test"}, client.rcpts)
	assert.Contains(t, msg, "Alice Design")
	assert.Contains(t, msg, "Reply-To: alice@example.com")
	assert.Contains(t, msg, `attachment; filename="invoice_alice.pdf"`)
	assert.Contains(t, msg, "Content-Type: application/pdf")
	assert.Contains(t, msg, base64.StdEncoding.EncodeToString(pdf))
}

func TestSenderService_BadPayload(t *testing.T) {
	svc, client := newTestSender(t)

	err := svc.SendVerificationEmail([]byte("{not json"))
	assert.Error(t, err)
	assert.Empty(t, client.rcpts)
}

func TestSenderService_HeadersAreCRLFSeparated(t *testing.T) {
	svc, client := newTestSender(t)

	body := mustMarshal(t, models.VerificationEmail{
		Email: "alice@example.com", Username: "alice", Token: "tok", Language: "en",
	})
	require.NoError(t, svc.SendVerificationEmail(body))

	head := strings.SplitN(client.data.String(), "\r\n\r\n", 2)[0]
	for _, line := range strings.Split(head, "\r\n") {
		assert.Contains(t, line, ": ")
	}
}
