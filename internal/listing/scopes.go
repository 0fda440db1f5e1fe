package listing

import (
	"strings"

	"gorm.io/gorm"

	"github.com/odyssey-erp/stockroom/internal/shared"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

// Matching filters rows whose columns contain the search term, ignoring
// case. An empty term matches everything.
func Matching(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + escapeLike(term) + "%"
		clauses := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			clauses[i] = col + " ILIKE ?"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// Equals filters on column when value is set.
func Equals(column, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}

// Between restricts column to the startDate and endDate filters. The end
// date includes the whole day.
func Between(column string, filters urlstate.FilterSet) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start, ok := filters.Date(StartDateKey); ok {
			db = db.Where(column+" >= ?", start)
		}
		if end, ok := filters.Date(EndDateKey); ok {
			db = db.Where(column+" < ?", end.AddDate(0, 0, 1))
		}
		return db
	}
}

// Paginate selects the page named by the page filter.
func Paginate(filters urlstate.FilterSet) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		p := shared.NewPagination(filters.Int(PageKey), shared.DefaultPageSize, 0)
		return db.Offset(p.Offset()).Limit(p.PerPage)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// FindPage counts the rows selected by base and loads the page named by
// filters. extra scopes such as Select or Preload apply to the page query
// only.
func FindPage[T any](base *gorm.DB, filters urlstate.FilterSet, order string, extra ...func(*gorm.DB) *gorm.DB) (Page[T], error) {
	base = base.Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return Page[T]{}, err
	}
	items := make([]T, 0)
	if total > 0 {
		err := base.Scopes(extra...).Scopes(Paginate(filters)).Order(order).Find(&items).Error
		if err != nil {
			return Page[T]{}, err
		}
	}
	return Page[T]{Items: items, Total: int(total)}, nil
}
