package http

import (
	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/internal/service"
)

// Handler owns the HTTP surface of the state server and the services it
// delegates to.
type Handler struct {
	services *service.Services
	logger   *logger.Logger
}

func NewHandler(services *service.Services, log *logger.Logger) *Handler {
	log.Info().Msg("http handler created")
	return &Handler{services: services, logger: log}
}
