// Package service implements the order submission flow: validate the form,
// snapshot the cart, persist the order and hand back a confirmation the chat
// layer can render.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cvety-kz/cvety-chat-service/internal/cart"
	"github.com/cvety-kz/cvety-chat-service/internal/events"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/models"
	"github.com/cvety-kz/cvety-chat-service/internal/repository"
)

const supportPhone = "+7 777 123 4567"

// OrderService handles order submission and lookup.
type OrderService struct {
	carts     *cart.Store
	repo      repository.OrderRepository
	publisher events.AnalyticsPublisher
	logger    *logging.Logger

	now func() time.Time
}

// NewOrderService creates an order service.
func NewOrderService(carts *cart.Store, repo repository.OrderRepository, publisher events.AnalyticsPublisher, logger *logging.Logger) *OrderService {
	return &OrderService{
		carts:     carts,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit turns the session's cart into an order. On success the cart is
// cleared so a repeated submit cannot double-order.
func (s *OrderService) Submit(ctx context.Context, sessionID string, form models.OrderForm) (*models.OrderConfirmation, error) {
	if err := ValidateOrderForm(&form); err != nil {
		return nil, err
	}

	currentCart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(currentCart.Items) == 0 {
		return nil, models.NewValidationError("cart", "cart is empty")
	}

	order := &models.Order{
		OrderForm: form,
		ID:        s.orderNumber(),
		SessionID: sessionID,
		Items:     currentCart.Items,
		Total:     currentCart.Total,
		Status:    models.OrderStatusPending,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		// The order is already placed; a stale cart is the lesser problem.
		s.logger.Warn("Failed to clear cart after order", logging.Fields{
			"session_id": sessionID,
			"order_id":   order.ID,
			"error":      err.Error(),
		})
	}

	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Warn("Failed to publish order event", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}

	s.logger.Info("Order submitted", logging.Fields{
		"order_id":       order.ID,
		"session_id":     sessionID,
		"total":          order.Total,
		"payment_method": order.PaymentMethod,
	})

	paymentInfo := s.paymentInfo(order)
	return &models.OrderConfirmation{
		Order:       order,
		Message:     confirmationMessage(order, paymentInfo),
		PaymentInfo: paymentInfo,
		TrackingURL: trackingURL(order.ID),
	}, nil
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns orders matching the filter, newest first.
func (s *OrderService) List(ctx context.Context, filter *repository.OrderListFilter) ([]*models.Order, int, error) {
	return s.repo.List(ctx, filter)
}

// UpdateStatus moves an order to a new status.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	switch status {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusPreparing,
		models.OrderStatusDelivering, models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return nil, models.NewValidationError("status", "unknown status: "+string(status))
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// orderNumber derives the customer-facing order number from the submission
// time, CVT- plus the trailing six digits of the unix millisecond clock.
func (s *OrderService) orderNumber() string {
	millis := strconv.FormatInt(s.now().UnixMilli(), 10)
	return "CVT-" + millis[len(millis)-6:]
}

func (s *OrderService) paymentInfo(order *models.Order) string {
	if order.PaymentMethod == models.PaymentMethodKaspi {
		kaspiLink := fmt.Sprintf("https://kaspi.kz/pay?order=%s&amount=%d&phone=%s", order.ID, order.Total, order.Phone)
		return fmt.Sprintf("💳 Ссылка для оплаты Kaspi отправлена на %s\n🔗 Или оплатите по ссылке: %s\n💰 Сумма к оплате: %s₸",
			order.Phone, kaspiLink, formatTenge(order.Total))
	}
	return fmt.Sprintf("💵 Оплата наличными при получении: %s₸", formatTenge(order.Total))
}

func confirmationMessage(order *models.Order, paymentInfo string) string {
	return fmt.Sprintf(
		"✅ Заказ #%s успешно оформлен!\n\n📱 SMS с деталями отправлено на %s\n🚚 Ожидайте доставку %s к %s\n\n%s\n\n📞 Вопросы по заказу: %s\n🔍 Отслеживать заказ: %s",
		order.ID, order.Phone, order.DeliveryDate, order.DeliveryTime, paymentInfo, supportPhone, trackingURL(order.ID))
}

func trackingURL(orderID string) string {
	return "cvety.kz/track/" + orderID
}

// formatTenge renders an amount with space-separated thousands, the way
// prices are shown to Russian-speaking customers.
func formatTenge(amount int) string {
	digits := strconv.Itoa(amount)
	if amount < 0 || len(digits) <= 3 {
		return digits
	}

	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, d)
	}
	return string(out)
}
