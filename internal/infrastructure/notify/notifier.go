// Package notify delivers owner-facing notifications. The log notifier
// stands in until an email or messaging channel is wired up.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/billing"
)

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

var _ billing.Notifier = (*LogNotifier)(nil)

// NotifySettlementPosted logs the posted settlement statement
func (n *LogNotifier) NotifySettlementPosted(ctx context.Context, ownerID uuid.UUID, settlementNumber string, netPayable decimal.Decimal) error {
	n.logger.Info("settlement statement posted to owner",
		zap.String("owner_id", ownerID.String()),
		zap.String("settlement_number", settlementNumber),
		zap.String("net_payable", netPayable.StringFixed(2)),
	)
	return nil
}
