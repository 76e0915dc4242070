package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/settleio/settle/internal/domain"
	"github.com/settleio/settle/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
}

// AuditEntry is one audit-trail record in the trace output, annotated
// with the ledger status of the event that produced it.
type AuditEntry struct {
	Seq          int64             `json:"seq"`
	EventType    string            `json:"event_type"`
	Source       string            `json:"source"`
	ReferenceID  string            `json:"reference_id"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LedgerStatus string            `json:"ledger_status,omitempty"`
}

// TraceResult holds the complete trace output for an order.
type TraceResult struct {
	OrderID         string       `json:"order_id"`
	Status          string       `json:"status"`
	PaymentIntentID string       `json:"payment_intent_id,omitempty"`
	Events          []AuditEntry `json:"events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <order-id>",
		Short: "Show the audit trail for an order",
		Long: `Show the audit trail for an order: every state-changing action applied
to it, with provenance (source, external event reference) and the ledger
status of the event that produced it.

Examples:
  settle trace --db ./settle.db 0190e7a2-5c1e-7c3a-b000-000000000001
  settle trace --db ./settle.db 0190e7a2-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(opts *TraceOptions, orderID string, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	order, err := st.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("order %s not found", orderID), nil)
		}
		return WrapExitError(ExitCommandError, "failed to read order", err)
	}

	events, err := st.ListOrderEvents(ctx, orderID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read audit trail", err)
	}

	result := TraceResult{
		OrderID:         order.ID,
		Status:          string(order.Status),
		PaymentIntentID: order.PaymentIntentID,
		Events:          []AuditEntry{},
	}

	for _, ev := range events {
		entry := AuditEntry{
			Seq:         ev.ID,
			EventType:   ev.EventType,
			Source:      ev.Source,
			ReferenceID: ev.ReferenceID,
			Metadata:    ev.Metadata,
		}
		// Annotate with the ledger's view of the triggering event.
		pe, err := st.GetProcessedEvent(ctx, ev.ReferenceID)
		switch {
		case err == nil:
			entry.LedgerStatus = string(pe.Status)
		case errors.Is(err, domain.ErrNotFound):
			entry.LedgerStatus = "UNRECORDED"
		default:
			return WrapExitError(ExitCommandError, "failed to read ledger", err)
		}
		result.Events = append(result.Events, entry)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	writeTraceText(cmd.OutOrStdout(), result)
	return nil
}

// writeTraceText renders the trace in a stable, human-readable layout.
// Metadata keys are sorted so output is deterministic.
func writeTraceText(w io.Writer, result TraceResult) {
	fmt.Fprintf(w, "Order: %s\n", result.OrderID)
	fmt.Fprintf(w, "Status: %s\n", result.Status)
	if result.PaymentIntentID != "" {
		fmt.Fprintf(w, "Payment Intent: %s\n", result.PaymentIntentID)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Audit Trail ===")
	if len(result.Events) == 0 {
		fmt.Fprintln(w, "  (no events)")
		return
	}
	for _, ev := range result.Events {
		fmt.Fprintf(w, "  [%d] %s source=%s ref=%s ledger=%s\n",
			ev.Seq, ev.EventType, ev.Source, ev.ReferenceID, ev.LedgerStatus)
		if len(ev.Metadata) > 0 {
			fmt.Fprintf(w, "      %s\n", formatMetadata(ev.Metadata))
		}
	}
}

func formatMetadata(meta map[string]string) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, meta[k]))
	}
	return strings.Join(parts, " ")
}
