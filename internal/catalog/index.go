package catalog

import (
	"bytes"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/tallyfin/tally/internal/model"
)

// lookupIndex holds the derived O(1) indices over the active records of the
// arena. It is rebuilt wholesale when its generation falls behind the
// service's; mutations never patch it incrementally.
type lookupIndex struct {
	byName    map[string]uuid.UUID  // folded name → winning record id
	byID      map[uuid.UUID]int     // id → arena position, active records only
	subOwners map[string][]uuid.UUID // folded child name → owner ids, income owners first
	gen       uint64
}

// fold normalizes a name for case-insensitive comparison.
func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// buildIndex rebuilds all indices over the non-deleted records.
//
// Name resolution among duplicates follows a fixed total order: folded name
// ascending, then creation time, then id bytes. The name map is filled in
// that order with later equal-fold entries overwriting earlier ones, so a
// lookup always lands on the last record of the alphabetical pass.
func buildIndex(gen uint64, records []model.Category) *lookupIndex {
	idx := &lookupIndex{
		gen:       gen,
		byName:    make(map[string]uuid.UUID),
		byID:      make(map[uuid.UUID]int),
		subOwners: make(map[string][]uuid.UUID),
	}

	var active []int
	for i, rec := range records {
		if rec.IsDeleted {
			continue
		}
		active = append(active, i)
		idx.byID[rec.ID] = i
	}

	sorted := slices.Clone(active)
	slices.SortFunc(sorted, func(a, b int) int {
		ra, rb := records[a], records[b]
		if c := strings.Compare(fold(ra.Name), fold(rb.Name)); c != 0 {
			return c
		}
		if !ra.CreatedAt.Equal(rb.CreatedAt) {
			if ra.CreatedAt.Before(rb.CreatedAt) {
				return -1
			}
			return 1
		}
		return bytes.Compare(ra.ID[:], rb.ID[:])
	})
	for _, i := range sorted {
		idx.byName[fold(records[i].Name)] = records[i].ID
	}

	// Owner lists are appended in catalog build order: income before expense,
	// arena order within a type. Duplicate subcategory names therefore
	// resolve to the first income owner, else the first expense owner.
	for _, t := range []model.CategoryType{model.CategoryTypeIncome, model.CategoryTypeExpense} {
		for _, i := range active {
			rec := records[i]
			if rec.Type != t || rec.TopLevel() {
				continue
			}
			key := fold(rec.Name)
			idx.subOwners[key] = append(idx.subOwners[key], *rec.ParentID)
		}
	}

	return idx
}

// category resolves an active category by name.
func (idx *lookupIndex) category(records []model.Category, name string) (model.Category, int, bool) {
	id, ok := idx.byName[fold(name)]
	if !ok {
		return model.Category{}, -1, false
	}
	pos := idx.byID[id]
	return records[pos], pos, true
}

// categoryByID resolves an active category by id.
func (idx *lookupIndex) categoryByID(records []model.Category, id uuid.UUID) (model.Category, int, bool) {
	pos, ok := idx.byID[id]
	if !ok {
		return model.Category{}, -1, false
	}
	return records[pos], pos, true
}

// subcategory resolves an active child record by name via the owner index,
// returning the owner, the child, and the child's arena position.
func (idx *lookupIndex) subcategory(records []model.Category, name string) (model.Category, model.Category, int, bool) {
	owners := idx.subOwners[fold(name)]
	if len(owners) == 0 {
		return model.Category{}, model.Category{}, -1, false
	}

	ownerPos, ok := idx.byID[owners[0]]
	if !ok {
		return model.Category{}, model.Category{}, -1, false
	}
	owner := records[ownerPos]

	for i, rec := range records {
		if rec.IsDeleted || rec.TopLevel() {
			continue
		}
		if *rec.ParentID == owner.ID && fold(rec.Name) == fold(name) {
			return owner, rec, i, true
		}
	}

	return model.Category{}, model.Category{}, -1, false
}
