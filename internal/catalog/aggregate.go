package catalog

import (
	"sort"
	"strings"

	"github.com/mediafolio/catalog-backend/pkg/db/models"
)

// DefaultFeatureWindow caps how many member items a category preview carries.
const DefaultFeatureWindow = 10

// CategoryView is the derived category record. There is no category table:
// views are rebuilt from the item rows on every read.
type CategoryView struct {
	CategoryID  string        `json:"category_id"`
	Name        string        `json:"category_name"`
	Thumb       string        `json:"thumb"`
	Preview     []models.Item `json:"images"`
	TotalImages int           `json:"total_images"`
}

// BuildCategories groups items into category views. Members are ordered
// newest first; the thumb is the URL of the first feature-flagged member, or
// of the newest member when no flag is set; the preview holds the first
// featureWindow members. Views come back sorted by lowercased name ascending,
// ties keeping the order in which the categories first appeared in items.
func BuildCategories(items []models.Item, featureWindow int) []CategoryView {
	if featureWindow < 1 {
		featureWindow = DefaultFeatureWindow
	}

	order := make([]string, 0)
	groups := make(map[string][]models.Item)
	for _, item := range items {
		if _, seen := groups[item.CategoryID]; !seen {
			order = append(order, item.CategoryID)
		}
		groups[item.CategoryID] = append(groups[item.CategoryID], item)
	}

	views := make([]CategoryView, 0, len(order))
	for _, id := range order {
		members := groups[id]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].CreatedAt.After(members[j].CreatedAt)
		})

		thumb := members[0]
		for _, m := range members {
			if m.IsFeatureImage {
				thumb = m
				break
			}
		}

		window := featureWindow
		if window > len(members) {
			window = len(members)
		}

		views = append(views, CategoryView{
			CategoryID:  id,
			Name:        members[0].CategoryName,
			Thumb:       thumb.URL,
			Preview:     members[:window],
			TotalImages: len(members),
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		return strings.ToLower(views[i].Name) < strings.ToLower(views[j].Name)
	})

	return views
}
