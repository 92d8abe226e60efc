package service

import (
	"github.com/telecare-labs/offsync/internal/adapter"
	"github.com/telecare-labs/offsync/internal/config"
	"github.com/telecare-labs/offsync/internal/connectivity"
	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/internal/store"
)

// Services bundles the server-side services.
type Services struct {
	State StateService
}

func NewServices(repo store.StateRepository, log *logger.Logger) *Services {
	return &Services{State: NewStateService(repo, log)}
}

// ClientServices bundles the client-side services behind one constructor so
// the composition root stays flat.
type ClientServices struct {
	Queue     QueueService
	Engine    SyncEngine
	Conflicts ConflictService
}

func NewClientServices(storages *store.ClientStorages, client adapter.StateClient, monitor *connectivity.Monitor, cfg config.Client, log *logger.Logger) *ClientServices {
	queue := NewQueueService(storages.Queue, log)

	return &ClientServices{
		Queue:     queue,
		Engine:    NewSyncEngine(queue, storages.Conflicts, storages.Summary, client, monitor, cfg.DeviceID, cfg.ActorID, log),
		Conflicts: NewConflictService(storages.Conflicts),
	}
}
