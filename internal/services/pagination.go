package services

import (
	"gorm.io/gorm"
)

const defaultPageLimit = 15

// Page selects a window of a list. The zero value means "everything".
type Page struct {
	Page  int
	Limit int
}

func (p Page) enabled() bool {
	return p.Page > 0 || p.Limit > 0
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	return p
}

type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// paginate counts query and fetches one page of it, sorted by order. When
// page is disabled the whole list is returned as a single page. Ordering and
// preloads are applied after counting since postgres rejects ORDER BY on a
// bare count.
func paginate[T any](query *gorm.DB, order string, page Page, preloads ...string) (*PaginatedResult[T], error) {
	var items []T
	query = query.Session(&gorm.Session{})

	find := func(q *gorm.DB) *gorm.DB {
		for _, p := range preloads {
			q = q.Preload(p)
		}
		return q.Order(order)
	}

	if !page.enabled() {
		if err := find(query).Find(&items).Error; err != nil {
			return nil, err
		}
		return &PaginatedResult[T]{
			Data:       items,
			Total:      int64(len(items)),
			Page:       1,
			Limit:      len(items),
			TotalPages: 1,
		}, nil
	}

	page = page.normalize()

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (page.Page - 1) * page.Limit
	if err := find(query).Offset(offset).Limit(page.Limit).Find(&items).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(page.Limit) - 1) / int64(page.Limit))

	return &PaginatedResult[T]{
		Data:       items,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: totalPages,
	}, nil
}
