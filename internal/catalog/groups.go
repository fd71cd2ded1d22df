package catalog

import (
	"context"
	"strings"

	"github.com/tallyfin/tally/internal/model"
)

// Group is a display grouping: a top-level category and its subcategory
// views.
type Group struct {
	Parent   model.Category
	Children []model.Subcategory
}

// groupCache memoizes the display groupings and per-search-term filter
// results. Both are keyed by the catalog generation: any mutation bumps the
// generation and the next read rebuilds, which also clears the search memo.
type groupCache struct {
	memo   map[string][]Group
	groups []Group
	gen    uint64
	built  bool
}

func (c *groupCache) invalidate() {
	c.built = false
	c.groups = nil
	c.memo = nil
}

// Groups returns the display groupings, optionally filtered by a search
// term. A group is kept when the parent name or any child name contains the
// term case-insensitively; a parent match keeps all of its children, a
// child-only match keeps just the matching children.
func (s *Service) Groups(ctx context.Context, term string) ([]Group, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	groups := s.groupsLocked()
	term = fold(term)
	if term == "" {
		return cloneGroups(groups), nil
	}

	if cached, ok := s.groups.memo[term]; ok {
		return cloneGroups(cached), nil
	}

	filtered := filterGroups(groups, term)
	s.groups.memo[term] = filtered
	return cloneGroups(filtered), nil
}

// groupsLocked returns the primary grouping, rebuilding it when the cached
// generation is stale. Income groups come before expense groups, arena order
// within a type; children keep arena order.
func (s *Service) groupsLocked() []Group {
	if s.groups.built && s.groups.gen == s.gen {
		return s.groups.groups
	}

	var groups []Group
	for _, t := range []model.CategoryType{model.CategoryTypeIncome, model.CategoryTypeExpense} {
		for _, rec := range s.records {
			if rec.IsDeleted || rec.Type != t || !rec.TopLevel() {
				continue
			}
			group := Group{Parent: rec}
			for _, child := range s.records {
				if child.IsDeleted || child.TopLevel() || *child.ParentID != rec.ID {
					continue
				}
				group.Children = append(group.Children, child.AsSubcategory(rec))
			}
			groups = append(groups, group)
		}
	}

	s.groups = groupCache{
		gen:    s.gen,
		built:  true,
		groups: groups,
		memo:   make(map[string][]Group),
	}
	return s.groups.groups
}

func filterGroups(groups []Group, term string) []Group {
	var out []Group
	for _, group := range groups {
		if strings.Contains(fold(group.Parent.Name), term) {
			out = append(out, group)
			continue
		}

		var kept []model.Subcategory
		for _, child := range group.Children {
			if strings.Contains(fold(child.Name), term) {
				kept = append(kept, child)
			}
		}
		if len(kept) > 0 {
			out = append(out, Group{Parent: group.Parent, Children: kept})
		}
	}
	return out
}

func cloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, group := range groups {
		out[i] = Group{Parent: group.Parent}
		if len(group.Children) > 0 {
			out[i].Children = append([]model.Subcategory(nil), group.Children...)
		}
	}
	return out
}
