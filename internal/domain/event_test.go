package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validEvent() PaymentEvent {
	return PaymentEvent{
		ID:              "evt_1",
		Type:            PaymentEventSucceeded,
		PaymentIntentID: "pi_1",
		Amount:          5000,
		Currency:        "inr",
	}
}

func TestPaymentEvent_Validate(t *testing.T) {
	assert.NoError(t, validEvent().Validate())
}

func TestPaymentEvent_Validate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PaymentEvent)
	}{
		{"missing id", func(e *PaymentEvent) { e.ID = "" }},
		{"missing type", func(e *PaymentEvent) { e.Type = "" }},
		{"missing intent ref", func(e *PaymentEvent) { e.PaymentIntentID = "" }},
		{"negative amount", func(e *PaymentEvent) { e.Amount = -1 }},
		{"empty currency", func(e *PaymentEvent) { e.Currency = "" }},
		{"bogus currency", func(e *PaymentEvent) { e.Currency = "zzz" }},
		{"non-alpha currency", func(e *PaymentEvent) { e.Currency = "12" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent()
			tt.mutate(&ev)
			assert.Error(t, ev.Validate())
		})
	}
}

func TestPaymentEvent_Validate_CurrencyCaseInsensitive(t *testing.T) {
	ev := validEvent()
	ev.Currency = "INR"
	assert.NoError(t, ev.Validate())
}

func TestPaymentEvent_Metadata(t *testing.T) {
	meta := validEvent().Metadata()
	assert.Equal(t, "pi_1", meta["payment_intent_id"])
	assert.Equal(t, "5000", meta["amount"])
	assert.Equal(t, "inr", meta["currency"])
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.Len(t, id, 36)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
