// Package services содержит формирование PDF-счёта по выбранным задачам
// и его отправку клиенту почтой. В счёт попадают только оплачиваемые
// задачи владельца; итоги считаются по строкам счёта.
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/magabrotheeeer/mrtasks/internal/lib/currency"
	"github.com/magabrotheeeer/mrtasks/internal/lib/i18n"
	"github.com/magabrotheeeer/mrtasks/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mrtasks/internal/models"
	"github.com/magabrotheeeer/mrtasks/internal/storage/repository"
)

// Ошибки уровня сервиса счетов.
var (
	// ErrEmptySelection среди выбранных задач нет ни одной оплачиваемой.
	ErrEmptySelection = errors.New("no billable tasks selected")
	// ErrEmailNotVerified отправка счёта требует подтверждённой почты.
	ErrEmailNotVerified = errors.New("profile email is not verified")
	// ErrClientInvalid клиент не найден либо без контактной почты.
	ErrClientInvalid = errors.New("client not found or has no email")
)

// TaskLister возвращает задачи пользователя по перечню идентификаторов.
type TaskLister interface {
	ListTasksByIDs(ctx context.Context, userUID string, ids []int) ([]*models.Task, error)
}

// ClientReader возвращает клиента пользователя.
type ClientReader interface {
	GetClient(ctx context.Context, id int, userUID string) (*models.Client, error)
}

// ProfileReader возвращает профиль пользователя, создавая его при первом обращении.
type ProfileReader interface {
	GetOrCreateProfile(ctx context.Context, userUID string) (*models.Profile, error)
}

// Invoice сформированный счёт: номер, имя файла и содержимое.
type Invoice struct {
	Number   string
	Filename string
	PDF      []byte
}

// InvoiceService реализует формирование и отправку счетов.
type InvoiceService struct {
	tasks     TaskLister
	clients   ClientReader
	profiles  ProfileReader
	catalog   *i18n.Catalog
	publisher rabbitmq.Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewInvoiceService создает новый экземпляр InvoiceService.
func NewInvoiceService(tasks TaskLister, clients ClientReader, profiles ProfileReader,
	catalog *i18n.Catalog, publisher rabbitmq.Publisher, log *slog.Logger) *InvoiceService {
	return &InvoiceService{
		tasks:     tasks,
		clients:   clients,
		profiles:  profiles,
		catalog:   catalog,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Render формирует PDF-счёт по выбранным задачам пользователя.
// Чужие и неоплачиваемые задачи отбрасываются; если после фильтра
// не осталось ни одной строки, возвращается ErrEmptySelection.
func (s *InvoiceService) Render(ctx context.Context, userUID, username string, ids []int) (*Invoice, error) {
	profile, err := s.profiles.GetOrCreateProfile(ctx, userUID)
	if err != nil {
		return nil, err
	}

	selected, err := s.tasks.ListTasksByIDs(ctx, userUID, ids)
	if err != nil {
		return nil, err
	}
	var lines []*models.Task
	for _, task := range selected {
		if task.Billable {
			lines = append(lines, task)
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptySelection
	}

	number := "INV-" + s.now().Format("20060102-150405")
	pdf, err := s.renderPDF(profile, username, number, lines)
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice rendered",
		slog.String("number", number), slog.Int("lines", len(lines)))
	return &Invoice{
		Number:   number,
		Filename: fmt.Sprintf("invoice_%s.pdf", username),
		PDF:      pdf,
	}, nil
}

// Send формирует счёт и отправляет его на почту выбранного клиента.
// Требует подтверждённой почты профиля и клиента с контактной почтой.
func (s *InvoiceService) Send(ctx context.Context, userUID, username string, clientID int, ids []int) error {
	profile, err := s.profiles.GetOrCreateProfile(ctx, userUID)
	if err != nil {
		return err
	}
	if !profile.EmailVerified {
		return ErrEmailNotVerified
	}

	client, err := s.clients.GetClient(ctx, clientID, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientInvalid
		}
		return err
	}
	if client.Email == "" {
		return ErrClientInvalid
	}

	invoice, err := s.Render(ctx, userUID, username, ids)
	if err != nil {
		return err
	}

	companyName := profile.CompanyName
	if companyName == "" {
		companyName = username
	}
	message := models.InvoiceEmail{
		Email:       client.Email,
		CompanyName: companyName,
		ReplyTo:     profile.Email,
		Language:    profile.Language,
		Filename:    invoice.Filename,
		PDF:         invoice.PDF,
	}
	if err := s.publisher.Publish("notifications", rabbitmq.KeyInvoice, message); err != nil {
		return err
	}
	s.log.Info("invoice queued for delivery",
		slog.String("number", invoice.Number), slog.Int("client_id", clientID))
	return nil
}

// pdfLanguage выбирает язык подписей внутри PDF. Встроенные шрифты
// содержат только латиницу, поэтому кириллический каталог заменяется
// английским; письма при этом остаются на языке профиля.
func pdfLanguage(lang string) string {
	switch i18n.Normalize(lang) {
	case "ru":
		return "en"
	default:
		return i18n.Normalize(lang)
	}
}

// sumTotals складывает итоги по строкам счёта: начислено, получено
// авансом и остаток к оплате. Результат не зависит от порядка строк.
func sumTotals(lines []*models.Task) (grand, advance, due float64) {
	for _, line := range lines {
		grand += line.Total()
		advance += line.AdvancePayment
		due += line.RemainingDue()
	}
	return grand, advance, due
}

func (s *InvoiceService) renderPDF(profile *models.Profile, username, number string, lines []*models.Task) ([]byte, error) {
	const op = "invoice.renderPDF"

	lang := pdfLanguage(profile.Language)
	label := func(key string) string {
		return s.catalog.Message(lang, key)
	}
	symbol := currency.Symbol(profile.Currency)
	money := func(amount float64) string {
		return fmt.Sprintf("%s%.2f", symbol, amount)
	}

	companyName := profile.CompanyName
	if companyName == "" {
		companyName = username
	}
	clientName := label("invoice.default.client")
	for _, line := range lines {
		if line.ClientName != "" {
			clientName = line.ClientName
			break
		}
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(number, true)
	pdf.SetCreationDate(s.now())
	pdf.SetModificationDate(s.now())
	pdf.AddPage()

	// Шапка: компания, номер счёта, дата.
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(160, 10, companyName)
	if profile.LogoURL != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.Cell(40, 10, label("invoice.logo.unavailable"))
	}
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(100, 7, label("invoice.title")+" "+number)
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(100, 6, fmt.Sprintf("%s %s", label("invoice.date.label"), s.now().Format("2006-01-02")))
	pdf.Ln(10)

	// Блоки отправителя и получателя.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(138, 6, label("invoice.from.label"))
	pdf.Cell(138, 6, label("invoice.to.label"))
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(138, 5, companyName)
	pdf.Cell(138, 5, clientName)
	pdf.Ln(5)
	if profile.Email != "" {
		pdf.Cell(138, 5, profile.Email)
		pdf.Ln(5)
	}
	if profile.Phone != "" {
		pdf.Cell(138, 5, profile.Phone)
		pdf.Ln(5)
	}
	pdf.Ln(6)

	// Таблица строк счёта.
	headers := []string{
		label("invoice.task.header"),
		label("invoice.description.header"),
		label("invoice.hours.header"),
		label("invoice.rate.header"),
		label("invoice.total.header"),
		label("invoice.advance.paid.header"),
		label("invoice.amount.due.header"),
	}
	widths := []float64{58, 63, 18, 26, 32, 37, 37}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	grandTotal, advanceTotal, dueTotal := sumTotals(lines)
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range lines {
		description := line.Description
		if description == "" {
			description = "N/A"
		}

		cells := []struct {
			text  string
			align string
		}{
			{line.Title, "L"},
			{description, "L"},
			{fmt.Sprintf("%.2f", line.HoursWorked), "R"},
			{money(line.HourlyRate), "R"},
			{money(line.Total()), "R"},
			{money(line.AdvancePayment), "R"},
			{money(line.RemainingDue()), "R"},
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell.text, "1", 0, cell.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	// Итоги по счёту.
	totals := []struct {
		label  string
		amount float64
	}{
		{label("invoice.grand.total"), grandTotal},
		{label("invoice.advance.paid"), advanceTotal},
		{label("invoice.amount.due"), dueTotal},
	}
	pdf.Ln(4)
	for _, total := range totals {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(234, 6, total.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(37, 6, money(total.amount), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	// Подвал с контактом.
	if profile.Email != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(271, 5, fmt.Sprintf("%s %s", label("invoice.contact.us"), profile.Email))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}
