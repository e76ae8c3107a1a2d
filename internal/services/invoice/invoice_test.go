package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mrtasks/internal/lib/i18n"
	"github.com/magabrotheeeer/mrtasks/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mrtasks/internal/models"
	"github.com/magabrotheeeer/mrtasks/internal/storage/repository"
)

type TasksMock struct{ mock.Mock }

func (m *TasksMock) ListTasksByIDs(ctx context.Context, userUID string, ids []int) ([]*models.Task, error) {
	args := m.Called(ctx, userUID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

type ClientsMock struct{ mock.Mock }

func (m *ClientsMock) GetClient(ctx context.Context, id int, userUID string) (*models.Client, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

type ProfilesMock struct{ mock.Mock }

func (m *ProfilesMock) GetOrCreateProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(exchange, routingkey string, message any) error {
	return m.Called(exchange, routingkey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const testUserUID = "e1f2a3b4-c5d6-4e7f-8a9b-0c1d2e3f4a5b"

var fixedNow = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, tasks *TasksMock, clients *ClientsMock,
	profiles *ProfilesMock, publisher *PublisherMock) *InvoiceService {
	t.Helper()
	catalog, err := i18n.NewCatalog()
	require.NoError(t, err)

	svc := NewInvoiceService(tasks, clients, profiles, catalog, publisher, newNoopLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func billableTask(id int, title string) *models.Task {
	return &models.Task{
		ID:          id,
		UserUID:     testUserUID,
		Title:       title,
		ClientName:  "Acme",
		Billable:    true,
		BillingType: models.BillingHourly,
		HoursWorked: 10,
		HourlyRate:  50,
	}
}

func TestInvoiceService_Render(t *testing.T) {
	tasks := new(TasksMock)
	profiles := new(ProfilesMock)

	profiles.On("GetOrCreateProfile", mock.Anything, testUserUID).
		Return(&models.Profile{
			UserUID:     testUserUID,
			CompanyName: "Alice Design",
			Email:       "alice@example.com",
			Language:    "en",
			Currency:    "USD",
		}, nil).Once()
	tasks.On("ListTasksByIDs", mock.Anything, testUserUID, []int{1, 2}).
		Return([]*models.Task{
			billableTask(1, "Landing page"),
			{ID: 2, UserUID: testUserUID, Title: "Internal cleanup"}, // не оплачиваемая
		}, nil).Once()

	svc := newTestService(t, tasks, new(ClientsMock), profiles, new(PublisherMock))
	invoice, err := svc.Render(context.Background(), testUserUID, "alice", []int{1, 2})
	require.NoError(t, err)

	assert.Equal(t, "INV-20260401-093000", invoice.Number)
	assert.Equal(t, "invoice_alice.pdf", invoice.Filename)
	assert.True(t, bytes.HasPrefix(invoice.PDF, []byte("%PDF")))
}

func TestSumTotals_OrderIndependent(t *testing.T) {
	lines := []*models.Task{
		billableTask(1, "Landing page"),
		{ID: 2, UserUID: testUserUID, Title: "Logo", Billable: true,
			BillingType: models.BillingFixed, FixedAmount: 300, AdvancePayment: 100},
		{ID: 3, UserUID: testUserUID, Title: "Support", Billable: true,
			BillingType: models.BillingHourly, HoursWorked: 2.5, HourlyRate: 80, AdvancePayment: 50},
	}
	reversed := []*models.Task{lines[2], lines[1], lines[0]}

	grand, advance, due := sumTotals(lines)
	assert.InDelta(t, 1000.0, grand, 1e-9)
	assert.InDelta(t, 150.0, advance, 1e-9)
	assert.InDelta(t, 850.0, due, 1e-9)

	grandRev, advanceRev, dueRev := sumTotals(reversed)
	assert.InDelta(t, grand, grandRev, 1e-9)
	assert.InDelta(t, advance, advanceRev, 1e-9)
	assert.InDelta(t, due, dueRev, 1e-9)
}

func TestInvoiceService_Render_Deterministic(t *testing.T) {
	render := func(ids []int, selected []*models.Task) []byte {
		tasks := new(TasksMock)
		profiles := new(ProfilesMock)
		profiles.On("GetOrCreateProfile", mock.Anything, testUserUID).
			Return(&models.Profile{
				UserUID:     testUserUID,
				CompanyName: "Alice Design",
				Language:    "en",
				Currency:    "USD",
			}, nil).Once()
		tasks.On("ListTasksByIDs", mock.Anything, testUserUID, ids).
			Return(selected, nil).Once()

		svc := newTestService(t, tasks, new(ClientsMock), profiles, new(PublisherMock))
		invoice, err := svc.Render(context.Background(), testUserUID, "alice", ids)
		require.NoError(t, err)
		return invoice.PDF
	}

	// При фиксированных часах повторный рендер того же набора строк
	// даёт байт-в-байт тот же файл.
	first := render([]int{1, 2}, []*models.Task{
		billableTask(1, "Landing page"),
		billableTask(2, "Site redesign"),
	})
	second := render([]int{1, 2}, []*models.Task{
		billableTask(1, "Landing page"),
		billableTask(2, "Site redesign"),
	})
	assert.True(t, bytes.Equal(first, second))
}

func TestInvoiceService_Render_EmptySelection(t *testing.T) {
	tasks := new(TasksMock)
	profiles := new(ProfilesMock)

	profiles.On("GetOrCreateProfile", mock.Anything, testUserUID).
		Return(&models.Profile{UserUID: testUserUID, Language: "en", Currency: "USD"}, nil).Once()
	tasks.On("ListTasksByIDs", mock.Anything, testUserUID, []int{9}).
		Return([]*models.Task{{ID: 9, Title: "Internal cleanup"}}, nil).Once()

	svc := newTestService(t, tasks, new(ClientsMock), profiles, new(PublisherMock))
	_, err := svc.Render(context.Background(), testUserUID, "alice", []int{9})
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestInvoiceService_Render_CyrillicProfileStillProducesPDF(t *testing.T) {
	tasks := new(TasksMock)
	profiles := new(ProfilesMock)

	profiles.On("GetOrCreateProfile", mock.Anything, testUserUID).
		Return(&models.Profile{UserUID: testUserUID, Language: "ru", Currency: "EUR"}, nil).Once()
	tasks.On("ListTasksByIDs", mock.Anything, testUserUID, []int{1}).
		Return([]*models.Task{billableTask(1, "Site redesign")}, nil).Once()

	svc := newTestService(t, tasks, new(ClientsMock), profiles, new(PublisherMock))
	invoice, err := svc.Render(context.Background(), testUserUID, "alice", []int{1})
	require.NoError(t, err)
	assert.NotEmpty(t, invoice.PDF)
}

func TestInvoiceService_Send(t *testing.T) {
	verified := &models.Profile{
		UserUID:       testUserUID,
		CompanyName:   "Alice Design",
		Email:         "alice@example.com",
		Language:      "en",
		Currency:      "USD",
		EmailVerified: true,
	}

	t.Run("success publishes invoice email", func(t *testing.T) {
		tasks := new(TasksMock)
		clients := new(ClientsMock)
		profiles := new(ProfilesMock)
		publisher := new(PublisherMock)

		profiles.On("GetOrCreateProfile", mock.Anything, testUserUID).Return(verified, nil).Twice()
		clients.On("GetClient", mock.Anything, 3, testUserUID).
			Return(&models.Client{ID: 3, Name: "Acme", Email: "billing@acme.test"}, nil).Once()
		tasks.On("ListTasksByIDs", mock.Anything, testUserUID, []int{1}).
			Return([]*models.Task{billableTask(1, "Landing page")}, nil).Once()
		publisher.On("Publish", "notifications", rabbitmq.KeyInvoice,
			mock.MatchedBy(func(msg any) bool {
				email, ok := msg.(models.InvoiceEmail)
				return ok && email.Email == "billing@acme.test" &&
					email.CompanyName == "Alice Design" &&
					email.ReplyTo == "alice@example.com" &&
					email.Filename == "invoice_alice.pdf" &&
					len(email.PDF) > 0
			})).Return(nil).Once()

		svc := newTestService(t, tasks, clients, profiles, publisher)
		err := svc.Send(context.Background(), testUserUID, "alice", 3, []int{1})
		require.NoError(t, err)
		publisher.AssertExpectations(t)
	})

	t.Run("unverified email", func(t *testing.T) {
		profiles := new(ProfilesMock)
		profiles.On("GetOrCreateProfile", mock.Anything, testUserUID).
			Return(&models.Profile{UserUID: testUserUID}, nil).Once()

		svc := newTestService(t, new(TasksMock), new(ClientsMock), profiles, new(PublisherMock))
		err := svc.Send(context.Background(), testUserUID, "alice", 3, []int{1})
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})

	t.Run("unknown client", func(t *testing.T) {
		clients := new(ClientsMock)
		profiles := new(ProfilesMock)
		profiles.On("GetOrCreateProfile", mock.Anything, testUserUID).Return(verified, nil).Once()
		clients.On("GetClient", mock.Anything, 99, testUserUID).
			Return(nil, repository.ErrNotFound).Once()

		svc := newTestService(t, new(TasksMock), clients, profiles, new(PublisherMock))
		err := svc.Send(context.Background(), testUserUID, "alice", 99, []int{1})
		assert.ErrorIs(t, err, ErrClientInvalid)
	})

	t.Run("client without email", func(t *testing.T) {
		clients := new(ClientsMock)
		profiles := new(ProfilesMock)
		profiles.On("GetOrCreateProfile", mock.Anything, testUserUID).Return(verified, nil).Once()
		clients.On("GetClient", mock.Anything, 3, testUserUID).
			Return(&models.Client{ID: 3, Name: "Acme"}, nil).Once()

		svc := newTestService(t, new(TasksMock), clients, profiles, new(PublisherMock))
		err := svc.Send(context.Background(), testUserUID, "alice", 3, []int{1})
		assert.ErrorIs(t, err, ErrClientInvalid)
	})
}
