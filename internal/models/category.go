package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type Category struct {
	CategoryID   int64       `json:"CategoryID"`
	CategoryName string      `json:"CategoryName"`
	Description  pgtype.Text `json:"Description"`
	ProductCount int64       `json:"ProductCount"`
	CreatedAt    time.Time   `json:"CreatedAt"`
	UpdatedAt    time.Time   `json:"UpdatedAt"`
}

// CategoryFilter narrows a category listing. Zero values mean no filter.
type CategoryFilter struct {
	Search string
	Limit  uint64
	Offset uint64
}
