// Package catalog implements the category management core: a softly-deleted
// hierarchical catalog of income and expense categories with derived lookup
// indices, grouped-display caches, and consistency cascades into the
// transaction and budget stores.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tallyfin/tally/internal/common"
	"github.com/tallyfin/tally/internal/model"
	"github.com/tallyfin/tally/internal/service"
)

// Storage keys. The legacy key held a flat {parentName: [childNames]} map in
// an old release; it is read once by the migration guard and never written
// again.
const (
	categoriesKey = "categories.v2"
	legacyKey     = "categories.legacy"
)

const documentVersion = 2

// catalogDocument is the persisted envelope for the record arena.
type catalogDocument struct {
	Categories []model.Category `json:"categories"`
	Version    int              `json:"version"`
}

// Selector strings callers may pass as a parent name to mean "top-level".
var noParentSelectors = map[string]struct{}{
	"":          {},
	"none":      {},
	"no parent": {},
}

func isNoParent(name string) bool {
	_, ok := noParentSelectors[fold(name)]
	return ok
}

// Service is the authoritative category store. It is constructed once and
// handed to collaborators; a single mutex serializes every mutation so the
// catalog invariants hold under concurrent callers. Reads snapshot under the
// same lock.
type Service struct {
	now       func() time.Time
	newID     func() uuid.UUID
	kv        service.KVStore
	cascades  *coordinator
	index     *lookupIndex
	records   []model.Category
	observers []service.CategoryChangeObserver
	groups    groupCache
	gen       uint64
	mu        sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDSource overrides the id generator for new records. Used by tests.
func WithIDSource(newID func() uuid.UUID) Option {
	return func(s *Service) { s.newID = newID }
}

// New constructs the category service and runs the one-time migration guard:
// legacy storage is discarded, the built-in catalog is bootstrapped on first
// run, and both sentinels are verified before anything else reads the
// catalog.
func New(ctx context.Context, kv service.KVStore, transactions service.TransactionStore, budgets service.BudgetStore, opts ...Option) (*Service, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s := &Service{
		kv:       kv,
		cascades: newCoordinator(transactions, budgets),
		now:      time.Now,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Subscribe registers an observer notified after every successful mutating
// operation and its cascades.
func (s *Service) Subscribe(observer service.CategoryChangeObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Add creates a new category. parentName may be empty or one of the
// no-parent selector strings to create a top-level category; otherwise it
// must name an active top-level, non-sentinel category, whose type the new
// record inherits. Without a parent the type is targetType, defaulting to
// expense.
func (s *Service) Add(ctx context.Context, name, glyph, parentName string, targetType model.CategoryType) (model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return model.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, ErrEmptyName
	}

	idx := s.indexLocked()
	parent, err := s.resolveParentLocked(idx, parentName)
	if err != nil {
		return model.Category{}, err
	}

	catType := model.CategoryTypeExpense
	if targetType != "" {
		if !targetType.Valid() {
			return model.Category{}, fmt.Errorf("%w: %q", ErrBadType, targetType)
		}
		catType = targetType
	}
	if parent != nil {
		catType = parent.Type
	}

	now := s.now()
	cat := model.Category{
		ID:        s.newID(),
		Name:      name,
		Glyph:     glyph,
		Type:      catType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if parent != nil {
		pid := parent.ID
		cat.ParentID = &pid
	}

	backup := slices.Clone(s.records)
	s.records = append(s.records, cat)

	err = s.commitLocked(ctx, backup, service.CategoryChange{
		Op:      service.ChangeOpAdd,
		ID:      cat.ID,
		Name:    cat.Name,
		OldType: cat.Type,
		NewType: cat.Type,
	}, nil)
	if err != nil {
		return model.Category{}, err
	}

	slog.Info("added category", "name", cat.Name, "type", cat.Type, "parent", parentName)
	return cat, nil
}

// Update renames, reglyphs, reparents, or retypes the category resolved by
// originalName. When the name resolves to a subcategory the call is the
// convert path: the record keeps its id and is re-attached exactly as Add
// would attach it, with a retype cascade when the effective type changed.
func (s *Service) Update(ctx context.Context, originalName, newName, newGlyph, parentName string, targetType model.CategoryType) (model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return model.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return model.Category{}, ErrEmptyName
	}
	if targetType != "" && !targetType.Valid() {
		return model.Category{}, fmt.Errorf("%w: %q", ErrBadType, targetType)
	}

	idx := s.indexLocked()
	rec, pos, ok := idx.category(s.records, originalName)
	if !ok {
		// The name may resolve only through the subcategory owner index when
		// a duplicate top-level name shadows it.
		_, rec, pos, ok = idx.subcategory(s.records, originalName)
		if !ok {
			return model.Category{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, originalName)
		}
	}
	if rec.IsSentinel() {
		return model.Category{}, ErrSentinelImmutable
	}

	parent, err := s.resolveParentLocked(idx, parentName)
	if err != nil {
		return model.Category{}, err
	}
	if parent != nil {
		if parent.ID == rec.ID {
			return model.Category{}, ErrSelfParent
		}
		if s.hasChildrenLocked(rec.ID) {
			return model.Category{}, ErrNotLeaf
		}
	}

	oldName := rec.Name
	oldType := rec.Type
	wasChild := !rec.TopLevel()

	// A conversion resolves its type exactly as Add does, falling back to
	// expense; an in-place update keeps the current type unless overridden.
	newType := oldType
	if wasChild {
		newType = model.CategoryTypeExpense
	}
	if targetType != "" {
		newType = targetType
	}
	if parent != nil {
		newType = parent.Type
	}

	backup := slices.Clone(s.records)
	target := &s.records[pos]
	target.Name = newName
	target.Glyph = newGlyph
	target.Type = newType
	target.ParentID = nil
	if parent != nil {
		pid := parent.ID
		target.ParentID = &pid
	}
	target.UpdatedAt = s.now()
	updated := *target

	op := service.ChangeOpUpdate
	if wasChild {
		op = service.ChangeOpConvert
	}

	cascade := func(ctx context.Context) error {
		var errs []error
		if oldName != updated.Name {
			if err := s.cascades.renameCascade(ctx, updated.ID, updated.Name); err != nil {
				errs = append(errs, err)
			}
		}
		if oldType != newType {
			legacyName := ""
			if wasChild {
				legacyName = oldName
			}
			if err := s.cascades.retypeCascade(ctx, updated.ID, legacyName, newType); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	err = s.commitLocked(ctx, backup, service.CategoryChange{
		Op:      op,
		ID:      updated.ID,
		Name:    updated.Name,
		OldType: oldType,
		NewType: newType,
	}, cascade)
	if err != nil {
		return model.Category{}, err
	}

	slog.Info("updated category",
		"name", updated.Name,
		"previous_name", oldName,
		"type", newType,
		"converted", wasChild)
	return updated, nil
}

// Delete soft-deletes the category resolved by name and redirects every
// transaction and budget referencing it to the sentinel of its type. A
// category with children cannot be deleted.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked()
	rec, pos, ok := idx.category(s.records, name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	if rec.IsSentinel() {
		return ErrSentinelImmutable
	}
	if s.hasChildrenLocked(rec.ID) {
		return ErrHasChildren
	}

	backup := slices.Clone(s.records)
	target := &s.records[pos]
	target.IsDeleted = true
	target.UpdatedAt = s.now()
	deleted := *target
	sentinel := s.sentinelLocked(deleted.Type)

	err := s.commitLocked(ctx, backup, service.CategoryChange{
		Op:      service.ChangeOpDelete,
		ID:      deleted.ID,
		Name:    deleted.Name,
		OldType: deleted.Type,
		NewType: deleted.Type,
	}, func(ctx context.Context) error {
		return s.cascades.deleteCascade(ctx, deleted, sentinel)
	})
	if err != nil {
		return err
	}

	slog.Info("deleted category", "name", deleted.Name, "type", deleted.Type)
	return nil
}

// UpdateSubcategory renames or reglyphs a subcategory in place, preserving
// its id and type.
func (s *Service) UpdateSubcategory(ctx context.Context, originalName, newName, newGlyph string) (model.Subcategory, error) {
	if err := validateContext(ctx); err != nil {
		return model.Subcategory{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return model.Subcategory{}, ErrEmptyName
	}

	idx := s.indexLocked()
	owner, rec, pos, ok := idx.subcategory(s.records, originalName)
	if !ok {
		return model.Subcategory{}, fmt.Errorf("%w: %q", ErrSubcategoryNotFound, originalName)
	}
	if owner.IsSentinel() {
		return model.Subcategory{}, ErrSentinelImmutable
	}

	oldName := rec.Name
	backup := slices.Clone(s.records)
	target := &s.records[pos]
	target.Name = newName
	target.Glyph = newGlyph
	target.UpdatedAt = s.now()
	updated := *target

	cascade := func(ctx context.Context) error {
		if oldName == updated.Name {
			return nil
		}
		return s.cascades.renameCascade(ctx, updated.ID, updated.Name)
	}

	err := s.commitLocked(ctx, backup, service.CategoryChange{
		Op:      service.ChangeOpUpdate,
		ID:      updated.ID,
		Name:    updated.Name,
		OldType: updated.Type,
		NewType: updated.Type,
	}, cascade)
	if err != nil {
		return model.Subcategory{}, err
	}

	slog.Info("updated subcategory", "name", updated.Name, "previous_name", oldName, "parent", owner.Name)
	return updated.AsSubcategory(owner), nil
}

// DeleteSubcategory soft-deletes the named subcategory of the named parent
// and runs the delete cascade with the subcategory's id and type.
func (s *Service) DeleteSubcategory(ctx context.Context, name, parentName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked()
	parent, _, ok := idx.category(s.records, parentName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrParentNotFound, parentName)
	}

	pos := -1
	for i, rec := range s.records {
		if rec.IsDeleted || rec.TopLevel() {
			continue
		}
		if *rec.ParentID == parent.ID && fold(rec.Name) == fold(name) {
			pos = i
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("%w: %q under %q", ErrSubcategoryNotFound, name, parentName)
	}

	backup := slices.Clone(s.records)
	target := &s.records[pos]
	target.IsDeleted = true
	target.UpdatedAt = s.now()
	deleted := *target
	sentinel := s.sentinelLocked(deleted.Type)

	err := s.commitLocked(ctx, backup, service.CategoryChange{
		Op:      service.ChangeOpDelete,
		ID:      deleted.ID,
		Name:    deleted.Name,
		OldType: deleted.Type,
		NewType: deleted.Type,
	}, func(ctx context.Context) error {
		return s.cascades.deleteCascade(ctx, deleted, sentinel)
	})
	if err != nil {
		return err
	}

	slog.Info("deleted subcategory", "name", deleted.Name, "parent", parent.Name)
	return nil
}

// RepairOrphans redirects transactions whose category id resolves to no
// active category or subcategory to the sentinel inferred from the amount
// sign. Call it once collaborators are ready; it is idempotent and mutates
// no catalog records.
func (s *Service) RepairOrphans(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked()
	resolves := func(id uuid.UUID) bool {
		_, ok := idx.byID[id]
		return ok
	}

	repaired, err := s.cascades.repairOrphans(ctx, resolves, func(t model.CategoryType) model.Category {
		return s.sentinelLocked(t)
	})
	if repaired > 0 {
		s.notifyLocked(service.CategoryChange{Op: service.ChangeOpRepair})
	}
	return repaired, err
}

// Reset discards every record and re-seeds the built-in catalog.
func (s *Service) Reset(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := slices.Clone(s.records)
	s.records = builtinCatalog(s.now())

	err := s.commitLocked(ctx, backup, service.CategoryChange{Op: service.ChangeOpReset}, nil)
	if err != nil {
		return err
	}

	slog.Warn("catalog reset to built-in categories")
	return nil
}

// Categories returns every active category in arena order.
func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Category
	for _, rec := range s.records {
		if !rec.IsDeleted {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FindByName resolves an active category by name, case-insensitively.
func (s *Service) FindByName(ctx context.Context, name string) (model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return model.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, _, ok := s.indexLocked().category(s.records, name)
	if !ok {
		return model.Category{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	return rec, nil
}

// FindByID resolves an active category by id.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return model.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, _, ok := s.indexLocked().categoryByID(s.records, id)
	if !ok {
		return model.Category{}, fmt.Errorf("%w: id %s", ErrCategoryNotFound, id)
	}
	return rec, nil
}

// FindSubcategory resolves an active subcategory by name via the owner
// index. Duplicate names resolve to the first income owner, else the first
// expense owner.
func (s *Service) FindSubcategory(ctx context.Context, name string) (model.Subcategory, error) {
	if err := validateContext(ctx); err != nil {
		return model.Subcategory{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owner, rec, _, ok := s.indexLocked().subcategory(s.records, name)
	if !ok {
		return model.Subcategory{}, fmt.Errorf("%w: %q", ErrSubcategoryNotFound, name)
	}
	return rec.AsSubcategory(owner), nil
}

// Subcategories returns the derived subcategory views of the named category
// in arena order.
func (s *Service) Subcategories(ctx context.Context, parentName string) ([]model.Subcategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parent, _, ok := s.indexLocked().category(s.records, parentName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, parentName)
	}

	var out []model.Subcategory
	for _, rec := range s.records {
		if rec.IsDeleted || rec.TopLevel() || *rec.ParentID != parent.ID {
			continue
		}
		out = append(out, rec.AsSubcategory(parent))
	}
	return out, nil
}

// commitLocked finishes a mutation in the fixed order: persist, rebuild the
// index so cascades observe final state, cascade, invalidate the group
// cache, notify observers. A persistence failure rolls the arena back to the
// pre-mutation snapshot, leaving no partial state.
func (s *Service) commitLocked(ctx context.Context, backup []model.Category, change service.CategoryChange, cascade func(context.Context) error) error {
	if err := s.persistLocked(ctx); err != nil {
		s.records = backup
		return err
	}

	s.gen++
	s.indexLocked()

	var cascadeErr error
	if cascade != nil {
		cascadeErr = cascade(ctx)
		if cascadeErr != nil {
			common.LogError(cascadeErr, "cascade completed with failures", common.Fields{
				"op":       string(change.Op),
				"category": change.Name,
			})
		}
	}

	s.groups.invalidate()
	s.notifyLocked(change)
	return cascadeErr
}

// indexLocked returns the lookup index, rebuilding it when stale.
func (s *Service) indexLocked() *lookupIndex {
	if s.index == nil || s.index.gen != s.gen {
		s.index = buildIndex(s.gen, s.records)
	}
	return s.index
}

// resolveParentLocked maps a parent selector to a category. Empty and
// no-parent selector strings resolve to nil (top-level).
func (s *Service) resolveParentLocked(idx *lookupIndex, parentName string) (*model.Category, error) {
	if isNoParent(parentName) {
		return nil, nil
	}

	parent, _, ok := idx.category(s.records, parentName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrParentNotFound, parentName)
	}
	if parent.IsSentinel() {
		return nil, ErrSentinelParent
	}
	if !parent.TopLevel() {
		return nil, ErrNestedParent
	}
	return &parent, nil
}

// hasChildrenLocked reports whether any active record points at id as its
// parent.
func (s *Service) hasChildrenLocked(id uuid.UUID) bool {
	for _, rec := range s.records {
		if rec.IsDeleted || rec.TopLevel() {
			continue
		}
		if *rec.ParentID == id {
			return true
		}
	}
	return false
}

// sentinelLocked returns the sentinel record for the given type. The
// migration guard guarantees both sentinels exist.
func (s *Service) sentinelLocked(t model.CategoryType) model.Category {
	id := model.SentinelID(t)
	for _, rec := range s.records {
		if rec.ID == id {
			return rec
		}
	}
	// Unreachable after the migration guard has run.
	panic(fmt.Sprintf("sentinel category %s missing", id))
}

// persistLocked serializes the arena under the current-format key.
func (s *Service) persistLocked(ctx context.Context) error {
	doc := catalogDocument{
		Version:    documentVersion,
		Categories: s.records,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal categories: %v", common.ErrPersistence, err)
	}
	if err := s.kv.Set(ctx, categoriesKey, raw); err != nil {
		return fmt.Errorf("%w: write categories: %v", common.ErrPersistence, err)
	}
	return nil
}

func (s *Service) notifyLocked(change service.CategoryChange) {
	for _, observer := range s.observers {
		observer.CategoriesChanged(change)
	}
}
