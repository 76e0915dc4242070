// Package gateway abstracts the external payment processor used to
// create, retrieve, and confirm payment intents.
package gateway

import "context"

// Intent is the gateway's view of a payment intent. ClientSecret is
// handed to the paying client to complete the payment; it is never
// persisted locally.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// Gateway is the external payment-intent collaborator. Amounts are in
// minor currency units; currency is an ISO 4217 code.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currencyCode string) (Intent, error)
	RetrieveIntent(ctx context.Context, id string) (Intent, error)
	ConfirmIntent(ctx context.Context, id, paymentMethod string) (Intent, error)
}
