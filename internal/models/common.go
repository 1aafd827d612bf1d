package models

import "strings"

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// PageRequest carries paging and sorting shared by list filters.
type PageRequest struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Normalize clamps paging values to the supported range.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 || p.PageSize > 100 {
		p.PageSize = 20
	}
	p.SortOrder = strings.ToUpper(p.SortOrder)
	if p.SortOrder != "ASC" && p.SortOrder != "DESC" {
		p.SortOrder = "DESC"
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Badge is the display class used by admin views to colour a status.
type Badge string

const (
	BadgePrimary   Badge = "primary"
	BadgeSecondary Badge = "secondary"
	BadgeInfo      Badge = "info"
	BadgeSuccess   Badge = "success"
	BadgeWarning   Badge = "warning"
	BadgeDanger    Badge = "danger"
	BadgeDark      Badge = "dark"
)

// StatusDisplay is the display projection of a status value.
type StatusDisplay struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Badge Badge  `json:"badge"`
}

func badgeFor[S ~string](table map[S]Badge, s S) Badge {
	if b, ok := table[s]; ok {
		return b
	}
	return BadgeSecondary
}

// humanize turns snake_case values into title case labels.
func humanize(value string) string {
	parts := strings.Split(value, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func display[S ~string](table map[S]Badge, s S) StatusDisplay {
	return StatusDisplay{Value: string(s), Label: humanize(string(s)), Badge: badgeFor(table, s)}
}
