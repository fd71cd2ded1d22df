package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tallyfin/tally/internal/common"
	"github.com/tallyfin/tally/internal/model"
)

// migrate is the one-time startup reconciliation. It runs inside New, before
// any other component reads the catalog:
//
//  1. If the legacy-format key exists, the current-format store is discarded,
//     the built-in catalog is re-seeded, and the legacy key is deleted. This
//     is irreversible and one-directional.
//  2. Independently, both sentinel ids must resolve; if either is missing
//     the whole catalog is reset to the built-in set.
func (s *Service) migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hasLegacy, err := s.kv.Has(ctx, legacyKey)
	if err != nil {
		return fmt.Errorf("%w: probe legacy key: %v", common.ErrPersistence, err)
	}

	if hasLegacy {
		slog.Info("legacy category storage found, discarding and re-seeding built-ins")
		s.records = builtinCatalog(s.now())
		if err := s.persistLocked(ctx); err != nil {
			return err
		}
		if err := s.kv.Delete(ctx, legacyKey); err != nil {
			return fmt.Errorf("%w: delete legacy key: %v", common.ErrPersistence, err)
		}
	} else {
		loaded, err := s.loadLocked(ctx)
		if err != nil {
			return err
		}
		if !loaded {
			slog.Info("no category catalog found, bootstrapping built-ins")
			s.records = builtinCatalog(s.now())
			if err := s.persistLocked(ctx); err != nil {
				return err
			}
		}
	}

	if !s.sentinelsPresentLocked() {
		slog.Warn("sentinel categories missing, resetting catalog to built-ins")
		s.records = builtinCatalog(s.now())
		if err := s.persistLocked(ctx); err != nil {
			return err
		}
	}

	s.gen++
	return nil
}

// loadLocked reads the current-format document. It reports false when the
// key does not exist yet.
func (s *Service) loadLocked(ctx context.Context) (bool, error) {
	raw, err := s.kv.Get(ctx, categoriesKey)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: read categories: %v", common.ErrPersistence, err)
	}

	var doc catalogDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, fmt.Errorf("%w: decode categories: %v", common.ErrPersistence, err)
	}

	s.records = doc.Categories
	slog.Debug("loaded category catalog", "records", len(s.records), "version", doc.Version)
	return true, nil
}

// sentinelsPresentLocked reports whether both sentinel records exist and are
// not deleted.
func (s *Service) sentinelsPresentLocked() bool {
	found := 0
	for _, rec := range s.records {
		if rec.IsDeleted {
			continue
		}
		if rec.ID == model.SentinelIncomeID || rec.ID == model.SentinelExpenseID {
			found++
		}
	}
	return found == 2
}
