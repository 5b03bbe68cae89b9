package account

import (
	"slices"
	"strings"

	"scenario-admin/internal/models"
)

// PageSizes offered by the user list.
var PageSizes = []int{8, 12, 20}

// Filter matches query against "first last" and email, case-insensitively.
func Filter(users []models.User, query string) []models.User {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return users
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		fullName := strings.ToLower(u.FirstName + " " + u.LastName)
		if strings.Contains(fullName, q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}

// ExcludeSelf drops the signed-in user from the list.
func ExcludeSelf(users []models.User, selfID string) []models.User {
	if selfID == "" {
		return users
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.ID != selfID {
			out = append(out, u)
		}
	}
	return out
}

// Page is one page of the user list.
type Page struct {
	Users      []models.User
	Page       int
	PerPage    int
	TotalPages int
	Total      int
	From       int
	To         int
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// Paginate slices users into the requested page. Unknown page sizes fall back to
// the first offered size and the page number is clamped into range.
func Paginate(users []models.User, page, perPage int) Page {
	if !slices.Contains(PageSizes, perPage) {
		perPage = PageSizes[0]
	}
	total := len(users)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)

	p := Page{
		Users:      users[start:end],
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		Total:      total,
	}
	if total > 0 {
		p.From = start + 1
		p.To = end
	}
	return p
}
