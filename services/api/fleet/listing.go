package fleet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trivia-trens/trivia-monitora/services/api/levels"
)

const (
	DefaultPerPage = 10
	pageWindow     = 2
)

var sortFields = map[string]bool{
	"modelo":      true,
	"tag":         true,
	"base":        true,
	"combustivel": true,
	"nivel":       true,
}

// ListQuery controls the admin locomotive listing.
type ListQuery struct {
	Search  string
	SortBy  string
	SortDir string
	Page    int
	PerPage int
}

// Item is one locomotive in the admin listing.
type Item struct {
	ID           string   `json:"id"`
	Tag          string   `json:"tag"`
	Model        string   `json:"modelo"`
	Base         string   `json:"base"`
	Fuel         string   `json:"combustivel"`
	TankVolume   *float64 `json:"volume_tanque"`
	Level        *float64 `json:"nivel_atual"`
	LevelDisplay string   `json:"nivel_display"`
	PhotoURL     *string  `json:"foto_url"`
}

// Page is a filtered, sorted, paginated slice of the fleet.
type Page struct {
	Items       []Item `json:"items"`
	Total       int    `json:"total"`
	TotalPages  int    `json:"total_pages"`
	Page        int    `json:"page"`
	PageNumbers []int  `json:"page_numbers"`
	SortBy      string `json:"sort_by"`
	SortDir     string `json:"sort_dir"`
}

// List filters rows by a case-insensitive search over tag, model and base,
// sorts them and returns the requested page. Out of range pages are clamped.
func List(rows []levels.LocomotiveRow, q ListQuery) Page {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		tag := strings.TrimSpace(row.Tag)
		model := strings.TrimSpace(row.Model)
		base := strings.TrimSpace(row.Base)
		if search != "" {
			haystack := strings.ToLower(fmt.Sprintf("%s %s %s", tag, model, base))
			if !strings.Contains(haystack, search) {
				continue
			}
		}

		level := levels.NormalizeLevel(row.Level)
		item := Item{
			ID:           row.ID,
			Tag:          tag,
			Model:        model,
			Base:         base,
			Fuel:         strings.TrimSpace(row.Fuel),
			TankVolume:   levels.CoerceFloat(row.TankVolume),
			Level:        level,
			LevelDisplay: levels.LevelDisplay(level),
		}
		if row.PhotoURL != "" {
			photo := row.PhotoURL
			item.PhotoURL = &photo
		}
		items = append(items, item)
	}

	sortBy := strings.ToLower(strings.TrimSpace(q.SortBy))
	if !sortFields[sortBy] {
		sortBy = "modelo"
	}
	sortDir := "asc"
	if strings.ToLower(strings.TrimSpace(q.SortDir)) == "desc" {
		sortDir = "desc"
	}
	sortItems(items, sortBy, sortDir == "desc")

	perPage := q.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	page := min(max(q.Page, 1), totalPages)

	start := (page - 1) * perPage
	end := min(start+perPage, total)

	return Page{
		Items:       items[start:end],
		Total:       total,
		TotalPages:  totalPages,
		Page:        page,
		PageNumbers: pageNumbers(page, totalPages),
		SortBy:      sortBy,
		SortDir:     sortDir,
	}
}

func sortItems(items []Item, field string, desc bool) {
	if field == "nivel" {
		key := func(i int) float64 {
			if items[i].Level == nil {
				return -1
			}
			return *items[i].Level
		}
		sort.SliceStable(items, func(i, j int) bool {
			if desc {
				return key(i) > key(j)
			}
			return key(i) < key(j)
		})
		return
	}

	key := func(i int) string {
		switch field {
		case "tag":
			return strings.ToLower(items[i].Tag)
		case "base":
			return strings.ToLower(items[i].Base)
		case "combustivel":
			return strings.ToLower(items[i].Fuel)
		default:
			return strings.ToLower(items[i].Model)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return key(i) > key(j)
		}
		return key(i) < key(j)
	})
}

func pageNumbers(page, totalPages int) []int {
	start := max(1, page-pageWindow)
	end := min(totalPages, page+pageWindow)
	out := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, n)
	}
	return out
}
