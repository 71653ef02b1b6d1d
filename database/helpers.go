package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const likeEscape = `\`

// likePattern builds a case-insensitive substring pattern with LIKE wildcards escaped.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// containsClause matches any of the columns against a likePattern argument.
func containsClause(columns ...string) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '%s'", col, likeEscape))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func repeatArg(arg interface{}, n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = arg
	}
	return args
}

// uniqueSlug returns base, or base-2, base-3, ... whichever is unused in model's slug column.
// Rows with excludeID are ignored so updates keep their own slug.
func uniqueSlug(ctx context.Context, db *gorm.DB, model interface{}, base string, excludeID uint) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		var count int64
		q := db.WithContext(ctx).Model(model).Where("slug = ?", candidate)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

type countRow struct {
	ID uint
	N  int64
}

func countsByID(rows []countRow) map[uint]int64 {
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.N
	}
	return counts
}
