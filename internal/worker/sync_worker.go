package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"advisor360/internal/amqp"
	"advisor360/internal/core"
	"advisor360/internal/storage"
)

// RemoteStore is the slice of the Supabase client the worker pushes to.
type RemoteStore interface {
	Upsert(ctx context.Context, c core.Commission) error
	Delete(ctx context.Context, id string) error
}

// SyncWorker pushes local commission changes to the remote store. It is
// driven by AMQP messages, with a periodic batch sweep as a backup for
// lost messages.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	remote    RemoteStore
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, remote RemoteStore, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		remote:    remote,
		batchSize: batchSize,
	}
}

// HandleMessage processes a single commission sync message from AMQP.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.CommissionSyncMessage) error {
	switch msg.Op {
	case amqp.OpUpsert:
		return w.syncCommission(ctx, msg.CommissionID)
	case amqp.OpDelete:
		return w.deleteCommission(ctx, msg.CommissionID)
	default:
		return fmt.Errorf("unknown op %q for commission %s", msg.Op, msg.CommissionID)
	}
}

func (w *SyncWorker) syncCommission(ctx context.Context, id string) error {
	commission, err := w.storage.GetByID(ctx, id)
	if errors.Is(err, core.ErrCommissionNotFound) {
		// Deleted locally before the message was consumed. Nothing to push.
		slog.WarnContext(ctx, "Commission vanished before sync, skipping", "commission_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get commission from storage: %w", err)
	}

	if err := w.remote.Upsert(ctx, commission); err != nil {
		return fmt.Errorf("upsert commission remotely: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "commission_id", id, "error", err)
		// Don't return error here - the sync actually worked
	}

	slog.InfoContext(ctx, "Synced commission to remote store", "commission_id", id)
	return nil
}

func (w *SyncWorker) deleteCommission(ctx context.Context, id string) error {
	if err := w.remote.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete commission remotely: %w", err)
	}
	slog.InfoContext(ctx, "Deleted commission from remote store", "commission_id", id)
	return nil
}

// ProcessPending sweeps commissions that never got synced, a backup for
// lost AMQP messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending commissions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending commissions", "count", len(pending))

	for _, commission := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.syncCommission(ctx, commission.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending commission",
				"commission_id", commission.ID, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck drains a larger pending backlog when the worker boots,
// recovering from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending commissions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending commissions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending commissions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, commission := range pending {
		if err := w.syncCommission(ctx, commission.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync commission during startup",
				"commission_id", commission.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}
