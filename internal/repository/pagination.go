package repository

import (
	"strings"

	"jewelshop/internal/dto"

	"gorm.io/gorm"
)

const defaultTake = 10

// paginate applies skip/take from a PageQuery; take defaults to 10.
func paginate(q *gorm.DB, page dto.PageQuery) *gorm.DB {
	take := page.Take
	if take <= 0 {
		take = defaultTake
	}
	skip := page.Skip
	if skip < 0 {
		skip = 0
	}
	return q.Offset(skip).Limit(take)
}

// likePattern builds a lower-cased %term% pattern for case-insensitive search
// that works on both Postgres and SQLite.
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
