package store

import (
	"context"
	"fmt"

	"github.com/telecare-labs/offsync/internal/config"
	"github.com/telecare-labs/offsync/internal/logger"
)

// NewClientStorages wires the client repositories over the backend selected
// by cfg.StorageDriver.
func NewClientStorages(ctx context.Context, cfg config.Client, log *logger.Logger) (*ClientStorages, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := NewConnectSQLite(ctx, cfg.QueuePath, log)
		if err != nil {
			return nil, fmt.Errorf("connect sqlite queue db: %w", err)
		}

		return &ClientStorages{
			Queue:     NewSQLiteQueueRepository(db, log),
			Conflicts: NewSQLiteConflictRepository(db, log),
			Summary:   NewSQLiteSummaryRepository(db, log),
			closer:    db.Close,
		}, nil

	case config.DriverBolt:
		db, err := NewBoltStorage(cfg.QueuePath)
		if err != nil {
			return nil, fmt.Errorf("open bolt queue db: %w", err)
		}

		return &ClientStorages{
			Queue:     db,
			Conflicts: db,
			Summary:   db,
			closer:    db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.StorageDriver)
	}
}
