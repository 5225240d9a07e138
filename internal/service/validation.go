package service

import (
	"strings"

	"github.com/cvety-kz/cvety-chat-service/internal/models"
)

const defaultDeliveryTime = "14:00"

// ValidateOrderForm checks mandatory fields and fills defaults in place.
// Phone and address are required; delivery time defaults to 14:00 and the
// payment method to Kaspi.
func ValidateOrderForm(form *models.OrderForm) error {
	form.Phone = strings.TrimSpace(form.Phone)
	form.Address = strings.TrimSpace(form.Address)

	if form.Phone == "" {
		return models.NewValidationError("phone", "phone is required")
	}
	if form.Address == "" {
		return models.NewValidationError("address", "address is required")
	}

	if form.DeliveryTime == "" {
		form.DeliveryTime = defaultDeliveryTime
	}

	switch form.PaymentMethod {
	case "":
		form.PaymentMethod = models.PaymentMethodKaspi
	case models.PaymentMethodKaspi, models.PaymentMethodCash:
	default:
		return models.NewValidationError("paymentMethod", "payment method must be kaspi or cash")
	}

	return nil
}
