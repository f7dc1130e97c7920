package worker

// alert_worker.go
// Processes low-stock alert jobs from QueueAlerts: one e-mail per stock pool
// that dropped to or below the threshold after a sale.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// LowStockAlert is the payload of a JobLowStockAlert job.
type LowStockAlert struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductCode string `json:"product_code"`
	Material    string `json:"material"`
	Quantity    int    `json:"quantity"`
	Threshold   int    `json:"threshold"`
	SaleID      string `json:"sale_id,omitempty"`
}

// Sender delivers a plain-text e-mail; *infra.Mailer satisfies it.
type Sender interface {
	Send(to []string, subject, body string) error
}

// AlertWorker turns alert jobs into e-mails to the shop's alert address.
type AlertWorker struct {
	sender Sender
	to     []string
}

// NewAlertWorker returns a worker mailing recipients, a comma-separated list.
func NewAlertWorker(sender Sender, recipients string) *AlertWorker {
	var to []string
	for _, addr := range strings.Split(recipients, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return &AlertWorker{sender: sender, to: to}
}

// Handle is the pool Handler for JobLowStockAlert.
func (w *AlertWorker) Handle(_ context.Context, raw json.RawMessage) error {
	var alert LowStockAlert
	if err := json.Unmarshal(raw, &alert); err != nil {
		// a malformed payload will never succeed; drop it instead of retrying
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil
	}
	if len(w.to) == 0 {
		log.Warn().Str("product", alert.ProductName).Msg("alert_worker: no ALERT_EMAIL configured, skipping")
		return nil
	}

	subject, body := renderLowStockAlert(alert)
	if err := w.sender.Send(w.to, subject, body); err != nil {
		return fmt.Errorf("alert_worker: send: %w", err)
	}
	log.Info().
		Str("product", alert.ProductName).
		Str("material", alert.Material).
		Int("quantity", alert.Quantity).
		Msg("alert_worker: low stock alert sent")
	return nil
}

func renderLowStockAlert(a LowStockAlert) (subject, body string) {
	if a.Quantity == 0 {
		subject = fmt.Sprintf("Out of stock: %s (%s)", a.ProductName, a.Material)
	} else {
		subject = fmt.Sprintf("Low stock: %s (%s)", a.ProductName, a.Material)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n", a.ProductName)
	fmt.Fprintf(&b, "Code: %s\n", a.ProductCode)
	fmt.Fprintf(&b, "Material: %s\n", a.Material)
	fmt.Fprintf(&b, "Remaining: %d (alert threshold %d)\n", a.Quantity, a.Threshold)
	if a.SaleID != "" {
		fmt.Fprintf(&b, "Triggered by sale %s\n", a.SaleID)
	}
	return subject, b.String()
}
