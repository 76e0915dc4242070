package gateway

import (
	"context"
	"fmt"
	"sync"
)

// CreateCall records the arguments of one CreateIntent call.
type CreateCall struct {
	Amount   int64
	Currency string
}

// FakeGateway is an in-memory Gateway for tests and local development.
// It mints deterministic intent ids ("pi_fake_1", "pi_fake_2", ...) and
// records every create so tests can assert on gateway traffic.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeGateway struct {
	mu      sync.Mutex
	seq     int
	intents map[string]Intent
	creates []CreateCall

	// Err, when set, is returned by every method. Simulates gateway
	// unavailability.
	Err error
}

// NewFake creates an empty FakeGateway.
func NewFake() *FakeGateway {
	return &FakeGateway{intents: make(map[string]Intent)}
}

func (g *FakeGateway) CreateIntent(_ context.Context, amount int64, currencyCode string) (Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return Intent{}, g.Err
	}

	g.seq++
	g.creates = append(g.creates, CreateCall{Amount: amount, Currency: currencyCode})
	intent := Intent{
		ID:           fmt.Sprintf("pi_fake_%d", g.seq),
		ClientSecret: fmt.Sprintf("pi_fake_%d_secret", g.seq),
		Status:       "requires_payment_method",
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *FakeGateway) RetrieveIntent(_ context.Context, id string) (Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return Intent{}, g.Err
	}

	intent, ok := g.intents[id]
	if !ok {
		return Intent{}, fmt.Errorf("fake gateway: no such intent %s", id)
	}
	return intent, nil
}

func (g *FakeGateway) ConfirmIntent(_ context.Context, id, _ string) (Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return Intent{}, g.Err
	}

	intent, ok := g.intents[id]
	if !ok {
		return Intent{}, fmt.Errorf("fake gateway: no such intent %s", id)
	}
	intent.Status = "succeeded"
	g.intents[id] = intent
	return intent, nil
}

// Creates returns a copy of the recorded CreateIntent calls.
func (g *FakeGateway) Creates() []CreateCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]CreateCall, len(g.creates))
	copy(out, g.creates)
	return out
}

// Seed registers an intent under a fixed id, for tests that need a known
// reference before any CreateIntent call.
func (g *FakeGateway) Seed(intent Intent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[intent.ID] = intent
}
