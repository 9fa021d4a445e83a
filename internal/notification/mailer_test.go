package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/pkg/circuitbreaker"
	"github.com/jordan-wright/email"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mu   sync.Mutex
	err  error
	sent []*email.Email
}

func (m *mockSender) Send(msg *email.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newTestMailer(sender Sender) *SMTPMailer {
	return NewMailer(sender, "Shop <no-reply@shop.test>", "contact@shop.test", zerolog.Nop())
}

func TestOrderPlaced(t *testing.T) {
	sender := &mockSender{}
	m := newTestMailer(sender)

	err := m.OrderPlaced(context.Background(), domain.OrderPlacedEvent{
		EventID:      "evt-1",
		OrderID:      42,
		CustomerName: "Ada Lovelace",
		Email:        "ada@example.com",
		Lines: []domain.EventLine{
			{ProductName: "Sérum <éclat>", Quantity: 2, UnitPrice: decimal.RequireFromString("50")},
			{ProductName: "Crème", Quantity: 1, UnitPrice: decimal.RequireFromString("30")},
		},
		Total:    decimal.RequireFromString("130"),
		PlacedAt: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, msg.To)
	assert.Equal(t, "Shop <no-reply@shop.test>", msg.From)
	assert.Contains(t, msg.Subject, "#42")

	body := string(msg.HTML)
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "130.00")
	assert.Contains(t, body, "50.00")
	assert.Contains(t, body, "Sérum &lt;éclat&gt;", "product names are escaped")
}

func TestOrderStatusChanged(t *testing.T) {
	sender := &mockSender{}
	m := newTestMailer(sender)

	err := m.OrderStatusChanged(context.Background(), domain.OrderStatusChangedEvent{
		OrderID:      7,
		CustomerName: "Ada",
		Email:        "ada@example.com",
		From:         domain.OrderStatusPending,
		To:           domain.OrderStatusShipped,
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "expédiée")
	assert.Contains(t, string(sender.sent[0].HTML), "#7")
}

func TestContactSubmitted_GoesToInbox(t *testing.T) {
	sender := &mockSender{}
	m := newTestMailer(sender)

	err := m.ContactSubmitted(context.Background(), domain.ContactSubmittedEvent{
		Email:   "client@example.com",
		Subject: "Livraison",
		Message: "Où est mon colis ?",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"contact@shop.test"}, msg.To)
	assert.Equal(t, []string{"client@example.com"}, msg.ReplyTo)
	assert.Equal(t, "Contact : Livraison", msg.Subject)
}

func TestDeliver_MissingRecipient(t *testing.T) {
	sender := &mockSender{}
	m := newTestMailer(sender)

	err := m.OrderPlaced(context.Background(), domain.OrderPlacedEvent{OrderID: 1})
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestDeliver_CancelledContext(t *testing.T) {
	sender := &mockSender{}
	m := newTestMailer(sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.ContactSubmitted(ctx, domain.ContactSubmittedEvent{Email: "a@b.c", Subject: "x"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestDeliver_BreakerOpensOnRelayFailures(t *testing.T) {
	sender := &mockSender{err: errors.New("connection refused")}
	m := newTestMailer(sender)
	event := domain.ContactSubmittedEvent{Email: "a@b.c", Subject: "x"}

	for i := 0; i < 5; i++ {
		err := m.ContactSubmitted(context.Background(), event)
		require.ErrorContains(t, err, "connection refused")
	}

	err := m.ContactSubmitted(context.Background(), event)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
}
