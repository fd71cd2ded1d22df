package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/tallyfin/tally/internal/model"
)

// Display names of the two sentinel categories.
const (
	SentinelIncomeName  = "No Category (Income)"
	SentinelExpenseName = "No Category (Expense)"
)

// Fixed identities for the well-known built-in categories, so a reinstall or
// full reset reproduces the same ids and external references keep resolving.
var (
	builtinSalaryID        = uuid.MustParse("2c41bfa0-1001-4e3b-8a77-5b9d10aa2001")
	builtinOtherIncomeID   = uuid.MustParse("2c41bfa0-1002-4e3b-8a77-5b9d10aa2002")
	builtinInvestmentsID   = uuid.MustParse("2c41bfa0-1003-4e3b-8a77-5b9d10aa2003")
	builtinFoodID          = uuid.MustParse("2c41bfa0-2001-4e3b-8a77-5b9d10aa2101")
	builtinGroceriesID     = uuid.MustParse("2c41bfa0-2002-4e3b-8a77-5b9d10aa2102")
	builtinRestaurantsID   = uuid.MustParse("2c41bfa0-2003-4e3b-8a77-5b9d10aa2103")
	builtinTransportID     = uuid.MustParse("2c41bfa0-2004-4e3b-8a77-5b9d10aa2104")
	builtinFuelID          = uuid.MustParse("2c41bfa0-2005-4e3b-8a77-5b9d10aa2105")
	builtinTransitID       = uuid.MustParse("2c41bfa0-2006-4e3b-8a77-5b9d10aa2106")
	builtinHousingID       = uuid.MustParse("2c41bfa0-2007-4e3b-8a77-5b9d10aa2107")
	builtinEntertainmentID = uuid.MustParse("2c41bfa0-2008-4e3b-8a77-5b9d10aa2108")
	builtinHealthID        = uuid.MustParse("2c41bfa0-2009-4e3b-8a77-5b9d10aa2109")
	builtinShoppingID      = uuid.MustParse("2c41bfa0-200a-4e3b-8a77-5b9d10aa210a")
)

type builtinSpec struct {
	parentID *uuid.UUID
	name     string
	glyph    string
	catType  model.CategoryType
	id       uuid.UUID
}

// builtinCatalog returns the seed records: the two sentinels followed by the
// built-in categories, income before expense. The slice order is the arena
// order every derived index and grouping is built from.
func builtinCatalog(now time.Time) []model.Category {
	specs := []builtinSpec{
		{id: model.SentinelIncomeID, name: SentinelIncomeName, glyph: "❔", catType: model.CategoryTypeIncome},
		{id: model.SentinelExpenseID, name: SentinelExpenseName, glyph: "❔", catType: model.CategoryTypeExpense},

		{id: builtinSalaryID, name: "Salary", glyph: "💼", catType: model.CategoryTypeIncome},
		{id: builtinInvestmentsID, name: "Investments", glyph: "📈", catType: model.CategoryTypeIncome},
		{id: builtinOtherIncomeID, name: "Other Income", glyph: "💰", catType: model.CategoryTypeIncome},

		{id: builtinFoodID, name: "Food & Drink", glyph: "🍽️", catType: model.CategoryTypeExpense},
		{id: builtinGroceriesID, name: "Groceries", glyph: "🛒", catType: model.CategoryTypeExpense, parentID: &builtinFoodID},
		{id: builtinRestaurantsID, name: "Restaurants", glyph: "🍜", catType: model.CategoryTypeExpense, parentID: &builtinFoodID},
		{id: builtinTransportID, name: "Transport", glyph: "🚆", catType: model.CategoryTypeExpense},
		{id: builtinFuelID, name: "Fuel", glyph: "⛽", catType: model.CategoryTypeExpense, parentID: &builtinTransportID},
		{id: builtinTransitID, name: "Public Transit", glyph: "🚌", catType: model.CategoryTypeExpense, parentID: &builtinTransportID},
		{id: builtinHousingID, name: "Housing", glyph: "🏠", catType: model.CategoryTypeExpense},
		{id: builtinEntertainmentID, name: "Entertainment", glyph: "🎬", catType: model.CategoryTypeExpense},
		{id: builtinHealthID, name: "Health", glyph: "🩺", catType: model.CategoryTypeExpense},
		{id: builtinShoppingID, name: "Shopping", glyph: "🛍️", catType: model.CategoryTypeExpense},
	}

	records := make([]model.Category, 0, len(specs))
	for _, spec := range specs {
		cat := model.Category{
			ID:        spec.id,
			Name:      spec.name,
			Glyph:     spec.glyph,
			Type:      spec.catType,
			IsBuiltIn: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if spec.parentID != nil {
			pid := *spec.parentID
			cat.ParentID = &pid
		}
		records = append(records, cat)
	}
	return records
}
