// SPDX-License-Identifier: MIT

// Package paging holds the list wrapper shared by paginated façade methods.
package paging

import "github.com/ronittamrakar/xordon-go/internal/normalize"

// Pagination describes one page of a list response.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// List is the typed paginated wrapper façade methods return.
type List[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// FromRaw reads a pagination block, defaulting all counters to zero.
func FromRaw(m normalize.Raw) Pagination {
	p := normalize.Map(m, "pagination")
	return Pagination{
		Total:      normalize.Int(p, 0, "total"),
		Page:       normalize.Int(p, 0, "page"),
		Limit:      normalize.Int(p, 0, "limit"),
		TotalPages: normalize.Int(p, 0, "totalPages", "total_pages"),
	}
}
