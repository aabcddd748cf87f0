package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/Hieupu/ATPS-BE-sub002/payments"
	"github.com/Hieupu/ATPS-BE-sub002/services"
	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	payments *services.PaymentService
	gateway  *payments.PayOSService
}

func NewPaymentHandler(paymentService *services.PaymentService, gateway *payments.PayOSService) *PaymentHandler {
	return &PaymentHandler{payments: paymentService, gateway: gateway}
}

type UpdatePaymentStatusRequest struct {
	OrderCode int64   `json:"orderCode" validate:"required,gt=0"`
	Status    string  `json:"status" validate:"required,oneof=success failed cancelled"`
	Amount    float64 `json:"amount,omitempty"`
}

// UpdatePaymentStatus is the reconciliation entry point. Idempotent
// short-circuits come back as 200 so callers cannot distinguish "did the
// work" from "was already done"; a zero-row guarded update is an integrity
// fault and surfaces as 500.
func (h *PaymentHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	var req UpdatePaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.payments.UpdatePaymentStatus(c.Context(), req.OrderCode, req.Status, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPaymentStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found for this order code"})
		case errors.Is(err, services.ErrEnrollmentConflict):
			log.Printf("🔥 CRITICAL: integrity fault reconciling order %d: %v", req.OrderCode, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Payment reconciliation failed",
				"error":   err.Error(),
			})
		default:
			log.Printf("🔥 Error reconciling order %d: %v", req.OrderCode, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Payment reconciliation failed",
				"error":   err.Error(),
			})
		}
	}

	return c.JSON(result)
}

type webhookPayload struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
	Data struct {
		OrderCode int64   `json:"orderCode"`
		Amount    float64 `json:"amount"`
		Code      string  `json:"code"`
		Desc      string  `json:"desc"`
	} `json:"data"`
	Signature string `json:"signature"`
}

// HandleWebhook is the gateway's push channel. It races the status poll on
// the same order code; the reconciliation core makes that race harmless.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload webhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	// Re-decode the data block with json.Number so every field keeps the
	// decimal rendering the gateway signed.
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err == nil && envelope.Data != nil {
		if !h.gateway.VerifyWebhookSignature(envelope.Data, payload.Signature) {
			log.Printf("🔥 Webhook signature mismatch for order %d", payload.Data.OrderCode)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook signature"})
		}
	}

	status := string(models.PaymentFailed)
	if payload.Data.Code == "00" {
		status = string(models.PaymentSucceeded)
	}

	result, err := h.payments.UpdatePaymentStatus(c.Context(), payload.Data.OrderCode, status, payload.Data.Amount)
	if err != nil {
		log.Printf("🔥 CRITICAL: webhook reconciliation failed for order %d: %v", payload.Data.OrderCode, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to process webhook",
			"error":   err.Error(),
		})
	}

	return c.JSON(result)
}

// GetPaymentStatus polls the gateway for the link behind an order code and
// reconciles if the link has reached a terminal state.
func (h *PaymentHandler) GetPaymentStatus(c *fiber.Ctx) error {
	orderCode, err := strconv.ParseInt(c.Params("orderCode"), 10, 64)
	if err != nil || orderCode <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order code"})
	}

	link, err := h.gateway.GetPaymentLinkInformation(orderCode)
	if err != nil {
		log.Printf("🔥 Failed to fetch payment link for order %d: %v", orderCode, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not reach payment gateway"})
	}

	switch link.Status {
	case payments.GatewayPaid:
		if _, err := h.payments.UpdatePaymentStatus(c.Context(), orderCode, string(models.PaymentSucceeded), float64(link.Amount)); err != nil {
			log.Printf("🔥 Poll reconciliation failed for order %d: %v", orderCode, err)
		}
	case payments.GatewayCancelled, payments.GatewayExpired:
		if _, err := h.payments.UpdatePaymentStatus(c.Context(), orderCode, string(models.PaymentCancelled), 0); err != nil {
			log.Printf("🔥 Poll cleanup failed for order %d: %v", orderCode, err)
		}
	}

	return c.JSON(fiber.Map{"orderCode": orderCode, "status": link.Status, "amount": link.Amount})
}
