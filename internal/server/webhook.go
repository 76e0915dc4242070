package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/settleio/settle/internal/domain"
)

// maxWebhookBody bounds the raw payload read for signature verification.
const maxWebhookBody = 64 * 1024

// paymentIntentPayload is the slice of the Stripe event data the
// reconciliation core needs.
type paymentIntentPayload struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// handleWebhook is the event intake boundary.
//
// The signature is verified against the shared webhook secret using the
// raw unparsed body - before anything reaches the reconciliation engine.
// Response semantics drive the source's redelivery:
//
//	400 - rejected (bad signature / malformed payload); not our event
//	200 - acknowledged; the event is fully applied or a defined no-op
//	500 - persistence failed mid-processing; NOT acknowledged, so the
//	      source redelivers and the idempotency guards absorb the retry
func (s *Server) handleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		s.logger.Error("failed to read webhook body", "error", err)
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), s.webhookSecret)
	if err != nil {
		s.logger.Warn("webhook signature failed", "error", err)
		webhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		c.String(http.StatusBadRequest, "bad signature")
		return
	}

	s.logger.Debug("stripe event received", "event_id", event.ID, "type", event.Type)

	// Non-payment events are acknowledged without reaching the engine.
	if string(event.Type) != domain.PaymentEventSucceeded {
		webhookEventsTotal.WithLabelValues(string(event.Type), "ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var pi paymentIntentPayload
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		s.logger.Error("malformed event payload", "event_id", event.ID, "error", err)
		webhookEventsTotal.WithLabelValues(string(event.Type), "rejected").Inc()
		c.String(http.StatusBadRequest, "bad payload")
		return
	}

	ev := domain.PaymentEvent{
		ID:              event.ID,
		Type:            string(event.Type),
		PaymentIntentID: pi.ID,
		Amount:          pi.Amount,
		Currency:        pi.Currency,
	}
	if err := ev.Validate(); err != nil {
		s.logger.Error("invalid event", "event_id", event.ID, "error", err)
		webhookEventsTotal.WithLabelValues(string(event.Type), "rejected").Inc()
		c.String(http.StatusBadRequest, "bad payload")
		return
	}

	outcome, err := s.reconciler.Reconcile(c.Request.Context(), ev)
	if err != nil {
		// No acknowledgment: the source must redeliver.
		s.logger.Error("reconcile failed", "event_id", ev.ID, "error", err)
		webhookEventsTotal.WithLabelValues(string(event.Type), "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	webhookEventsTotal.WithLabelValues(string(event.Type), string(outcome)).Inc()
	c.JSON(http.StatusOK, gin.H{"received": true})
}
