package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvety-kz/cvety-chat-service/internal/cart"
	"github.com/cvety-kz/cvety-chat-service/internal/events"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/models"
	"github.com/cvety-kz/cvety-chat-service/internal/repository"
)

type orderDeps struct {
	carts     *cart.Store
	repo      *repository.MockOrderRepository
	publisher *events.MockPublisher
}

func newTestService(t *testing.T) (*OrderService, *orderDeps) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger := logging.New("order-test")
	deps := &orderDeps{
		carts:     cart.NewStore(rdb, time.Hour, logger),
		repo:      repository.NewMockOrderRepository(),
		publisher: events.NewMockPublisher(),
	}

	svc := NewOrderService(deps.carts, deps.repo, deps.publisher, logger)
	svc.now = func() time.Time {
		return time.UnixMilli(1724000123456)
	}
	return svc, deps
}

func validForm() models.OrderForm {
	return models.OrderForm{
		Phone:         "+77771234567",
		Address:       "Алматы, Абая 10",
		DeliveryDate:  "2026-09-01",
		PaymentMethod: models.PaymentMethodKaspi,
	}
}

func fillCart(t *testing.T, deps *orderDeps, sessionID string) {
	t.Helper()
	_, err := deps.carts.AddItem(context.Background(), sessionID, models.Product{
		ID: "1", Name: "Красные розы", Price: 15000,
	}, 1)
	require.NoError(t, err)
}

func TestSubmitKaspiOrder(t *testing.T) {
	svc, deps := newTestService(t)
	fillCart(t, deps, "s1")

	conf, err := svc.Submit(context.Background(), "s1", validForm())
	require.NoError(t, err)

	assert.Equal(t, "CVT-123456", conf.Order.ID)
	assert.Equal(t, models.OrderStatusPending, conf.Order.Status)
	assert.Equal(t, 15000, conf.Order.Total)
	assert.Equal(t, "14:00", conf.Order.DeliveryTime, "delivery time must default")

	assert.Contains(t, conf.PaymentInfo, "https://kaspi.kz/pay?order=CVT-123456&amount=15000&phone=+77771234567")
	assert.Contains(t, conf.PaymentInfo, "15 000₸")
	assert.Contains(t, conf.Message, "✅ Заказ #CVT-123456 успешно оформлен!")
	assert.Contains(t, conf.Message, "cvety.kz/track/CVT-123456")
	assert.Equal(t, "cvety.kz/track/CVT-123456", conf.TrackingURL)

	// Order persisted, event published, cart cleared.
	stored, err := deps.repo.GetByID(context.Background(), "CVT-123456")
	require.NoError(t, err)
	assert.Equal(t, "s1", stored.SessionID)

	require.Len(t, deps.publisher.Events, 1)
	assert.Equal(t, events.EventTypeOrderCreated, deps.publisher.Events[0].Type)

	remaining, err := deps.carts.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, remaining.Items)
}

func TestSubmitCashOrder(t *testing.T) {
	svc, deps := newTestService(t)
	fillCart(t, deps, "s1")

	form := validForm()
	form.PaymentMethod = models.PaymentMethodCash

	conf, err := svc.Submit(context.Background(), "s1", form)
	require.NoError(t, err)

	assert.Equal(t, "💵 Оплата наличными при получении: 15 000₸", conf.PaymentInfo)
	assert.NotContains(t, conf.PaymentInfo, "kaspi.kz")
}

func TestSubmitValidation(t *testing.T) {
	svc, deps := newTestService(t)
	fillCart(t, deps, "s1")

	tests := []struct {
		name   string
		mutate func(*models.OrderForm)
		field  string
	}{
		{"missing phone", func(f *models.OrderForm) { f.Phone = " " }, "phone"},
		{"missing address", func(f *models.OrderForm) { f.Address = "" }, "address"},
		{"bad payment method", func(f *models.OrderForm) { f.PaymentMethod = "bitcoin" }, "paymentMethod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			_, err := svc.Submit(context.Background(), "s1", form)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), "s1", validForm())
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cart", verr.Field)
}

func TestSubmitDefaultsPaymentMethod(t *testing.T) {
	svc, deps := newTestService(t)
	fillCart(t, deps, "s1")

	form := validForm()
	form.PaymentMethod = ""

	conf, err := svc.Submit(context.Background(), "s1", form)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodKaspi, conf.Order.PaymentMethod)
}

func TestSubmitRepositoryFailureKeepsCart(t *testing.T) {
	svc, deps := newTestService(t)
	fillCart(t, deps, "s1")
	deps.repo.CreateErr = errors.New("db down")

	_, err := svc.Submit(context.Background(), "s1", validForm())
	require.Error(t, err)

	remaining, err := deps.carts.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, remaining.Items, "cart must survive a failed submission")
	assert.Empty(t, deps.publisher.Events)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), "o1", "teleported")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestFormatTenge(t *testing.T) {
	tests := []struct {
		amount int
		want   string
	}{
		{0, "0"},
		{999, "999"},
		{1500, "1 500"},
		{15000, "15 000"},
		{1234567, "1 234 567"},
	}

	for _, tt := range tests {
		if got := formatTenge(tt.amount); got != tt.want {
			t.Errorf("formatTenge(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
