package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// NormalizeCategoryKey converts free-form category input into the canonical
// key form: uppercase tokens separated by single underscores.
//
// "Art supplies " and "ART_SUPPLIES" normalize to the same key.
func NormalizeCategoryKey(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})

	return strings.ToUpper(strings.Join(fields, "_"))
}

// labelForKey derives a human readable label from a category key.
func labelForKey(key string) string {
	return strings.ReplaceAll(strings.TrimSpace(key), "_", " ")
}

// ResolveByKey returns the allocation for the normalized form of the given
// category key.
func ResolveByKey(db *gorm.DB, projectID uuid.UUID, key string) (CategoryAllocation, error) {
	var allocation CategoryAllocation
	err := db.Where("project_id = ? AND category_key = ?", projectID, NormalizeCategoryKey(key)).
		First(&allocation).Error

	return allocation, err
}

// ResolveByLabel returns the allocation whose display label matches the
// given label, ignoring case and surrounding whitespace.
//
// Labels are not unique by schema; when several allocations share a label,
// the oldest one wins. Callers must state explicitly that they want label
// resolution, the engine never falls back to it silently.
func ResolveByLabel(db *gorm.DB, projectID uuid.UUID, label string) (CategoryAllocation, error) {
	var allocation CategoryAllocation
	err := db.Where("project_id = ? AND LOWER(label) = ?", projectID, strings.ToLower(strings.TrimSpace(label))).
		Order("created_at ASC").
		First(&allocation).Error

	return allocation, err
}

// ResolveCategory resolves category input to an allocation, by key first
// and by display label as fallback. The fallback is logged.
func ResolveCategory(db *gorm.DB, projectID uuid.UUID, input string) (CategoryAllocation, error) {
	allocation, err := ResolveByKey(db, projectID, input)
	if err == nil {
		return allocation, nil
	}

	allocation, err = ResolveByLabel(db, projectID, input)
	if err != nil {
		return CategoryAllocation{}, ErrCategoryNotResolved
	}

	log.Debug().
		Str("project", projectID.String()).
		Str("input", input).
		Str("key", allocation.CategoryKey).
		Msg("category resolved by label, not by key")

	return allocation, nil
}
