package service

import (
	"context"
	"fmt"

	"github.com/telecare-labs/offsync/internal/store"
	"github.com/telecare-labs/offsync/models"
)

type conflictService struct {
	repo store.ConflictRepository
}

// NewConflictService returns a ConflictService over the durable conflict log.
func NewConflictService(repo store.ConflictRepository) ConflictService {
	return &conflictService{repo: repo}
}

func (s *conflictService) List(ctx context.Context, includeResolved bool) ([]models.ConflictRecord, error) {
	records, err := s.repo.ListConflicts(ctx, includeResolved)
	if err != nil {
		return nil, fmt.Errorf("list conflicts: %w", err)
	}

	return records, nil
}

func (s *conflictService) Resolve(ctx context.Context, id string) error {
	if err := s.repo.ResolveConflict(ctx, id); err != nil {
		return fmt.Errorf("resolve conflict %s: %w", id, err)
	}

	return nil
}
