package organization

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/storage"
)

const module = "Organization"

// Store holds the organization the tab is currently operating within.
type Store struct {
	mu      sync.RWMutex
	current *entity.Organization
	storage storage.Store
	logger  logger.ILogger
}

func NewStore(ctx context.Context, st storage.Store, log logger.ILogger) *Store {
	s := &Store{storage: st, logger: log}
	s.current = s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) *entity.Organization {
	raw, ok, err := s.storage.Get(ctx, storage.KeyCurrentOrg)
	if err != nil {
		s.logger.Warn(module, "Failed to read active organization", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var org entity.Organization
	if err := json.Unmarshal([]byte(raw), &org); err != nil || org.Id == "" {
		s.logger.Warn(module, "Discarding malformed organization snapshot", nil)
		return nil
	}
	return &org
}

// SetCurrent persists a snapshot of org, or removes it when org is nil.
func (s *Store) SetCurrent(ctx context.Context, org *entity.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if org == nil {
		if err := storage.Delete(ctx, s.storage, storage.KeyCurrentOrg); err != nil {
			return fmt.Errorf("clear organization: %w", err)
		}
		s.current = nil
		return nil
	}

	snapshot := clone(org)
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode organization: %w", err)
	}
	if err := storage.Set(ctx, s.storage, map[string]string{storage.KeyCurrentOrg: string(data)}); err != nil {
		return fmt.Errorf("persist organization: %w", err)
	}
	s.current = snapshot

	s.logger.Info(module, "Active organization selected", map[string]interface{}{"organization_id": org.Id, "name": org.Name})
	return nil
}

// Current returns a copy of the active organization, or nil.
func (s *Store) Current() *entity.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	return clone(s.current)
}

func clone(org *entity.Organization) *entity.Organization {
	c := *org
	if org.Members != nil {
		c.Members = append([]entity.OrganizationMember(nil), org.Members...)
	}
	return &c
}
