package leave

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OperationLogger receives one entry per state-changing ledger operation.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing ledger operation.
type OperationLog struct {
	Operation string
	BalanceID string
	RequestID string
	UserID    string
	Days      decimal.Decimal
	Status    string
	Error     error
}

const (
	operationStatusOK      = "ok"
	operationStatusError   = "error"
	operationStatusSkipped = "skipped"
)

type zapOperationLogger struct {
	logger *zap.Logger
}

// NewZapOperationLogger writes ledger operations as structured zap entries.
func NewZapOperationLogger(logger *zap.Logger) OperationLogger {
	return &zapOperationLogger{logger: logger.Named("leave_ledger")}
}

func (z *zapOperationLogger) LogOperation(_ context.Context, entry OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("status", entry.Status),
		zap.String("balance_id", entry.BalanceID),
		zap.String("days", entry.Days.StringFixed(2)),
	}
	if entry.RequestID != "" {
		fields = append(fields, zap.String("request_id", entry.RequestID))
	}
	if entry.UserID != "" {
		fields = append(fields, zap.String("user_id", entry.UserID))
	}
	if entry.Error != nil {
		z.logger.Warn("leave ledger operation failed", append(fields, zap.Error(entry.Error))...)
		return
	}
	z.logger.Info("leave ledger operation", fields...)
}

// RecordingOperationLogger keeps entries in memory.
type RecordingOperationLogger struct {
	mu      sync.Mutex
	entries []OperationLog
}

func (r *RecordingOperationLogger) LogOperation(_ context.Context, entry OperationLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *RecordingOperationLogger) Entries() []OperationLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OperationLog(nil), r.entries...)
}
