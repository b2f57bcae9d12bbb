// Package category maps free-text item names to product categories via
// ordered keyword rules.
package category

import (
	"strings"

	"github.com/agridash/dealer-insights/internal/models"
)

// rule associates a keyword set with a category. Rules are evaluated in
// order and the first match wins, so more specific keywords must come
// before broader ones ("micro man plus" is a bio-stimulant even though
// "micro man" alone names a chelated product).
type rule struct {
	keywords []string
	category models.Category
}

var rules = []rule{
	{[]string{"micro man plus"}, models.CategoryBioStimulants},
	{[]string{"iron man", "micro man", "eddha", "chelated"}, models.CategoryChelatedMicronutrient},
	{[]string{"peek sanjivani", "bio surakshak", "sanjivani", "rhizo-vishwa", "trichoderma", "azotobacter"}, models.CategoryBioFertilizers},
	{[]string{
		"nutrisac", "micromax", "ferrous sulphate", "feso4",
		"magnesium sulphate", "mgso4", "dimond kit", "diamond kit",
		"jackpot", "orient kit",
	}, models.CategoryMicronutrients},
	{[]string{
		"titanic", "jeeto", "flora - 95", "humic acid", "pickup - 99",
		"boomer", "bingo", "rainbow", "zumbaa", "turma max", "simba",
		"captain", "ferrari", "bio stimulant", "ozone power", "fountain",
	}, models.CategoryBioStimulants},
	{[]string{"biomass", "briquette", "nandi choona", "calcimag"}, models.CategoryOtherBulkOrders},
}

// Classify returns the category for an item name. It is pure, total and
// deterministic: every input maps to some category, with Uncategorized as
// the fallback. Matching is case-insensitive substring lookup.
func Classify(itemName string) models.Category {
	name := strings.ToLower(itemName)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(name, kw) {
				return r.category
			}
		}
	}
	return models.CategoryUncategorized
}
