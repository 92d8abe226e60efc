package http

import (
	"errors"
	"net/http"

	"github.com/telecare-labs/offsync/internal/service"
	"github.com/telecare-labs/offsync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrNoDeviceID:           http.StatusBadRequest,
	service.ErrUnknownState:         http.StatusBadRequest,
	service.ErrUnknownKind:          http.StatusBadRequest,
	service.ErrTransitionNotAllowed: http.StatusUnprocessableEntity,
	service.ErrPolicyBlocked:        http.StatusLocked,

	store.ErrStateNotFound:     http.StatusNotFound,
	store.ErrVersionConflict:   http.StatusConflict,
	store.ErrOperationReplayed: http.StatusConflict,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
