package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/eklavya-edu/assessment-service/internal/repositories"
)

// wrapNotFound maps gorm's record-not-found to repositories.ErrNotFound
func wrapNotFound(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// requireAffected turns an update or delete that matched nothing into ErrNotFound
func requireAffected(result *gorm.DB, what string) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	}
	return nil
}

// applySort orders newest first by a whitelisted timestamp column
func applySort(query *gorm.DB, sortBy string) *gorm.DB {
	allowed := map[string]bool{
		"created_at": true,
		"updated_at": true,
	}
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	return query.Order(sortBy + " DESC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term literally; pair it with ESCAPE '\'
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
