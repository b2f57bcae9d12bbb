package category

import (
	"testing"

	"github.com/agridash/dealer-insights/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("maps known items to their category", func(t *testing.T) {
		cases := map[string]models.Category{
			"Peek Sanjivani - Consortia":          models.CategoryBioFertilizers,
			"bio surakshak - tryka (trichoderma)": models.CategoryBioFertilizers,
			"Nutrisac Kit - (50 kg)":              models.CategoryMicronutrients,
			"ferrous sulphate (feso4) - 20 kg":    models.CategoryMicronutrients,
			"Iron Man - EDDHA Ferrous (500 gm)":   models.CategoryChelatedMicronutrient,
			"micro man - fe (250 gm)":             models.CategoryChelatedMicronutrient,
			"Jeeto - 95 (200 ml)":                 models.CategoryBioStimulants,
			"mantra humic acid (1 kg)":            models.CategoryBioStimulants,
			"Biomass Briquette":                   models.CategoryOtherBulkOrders,
			"nandi choona":                        models.CategoryOtherBulkOrders,
		}
		for item, want := range cases {
			assert.Equal(t, want, Classify(item), "item %q", item)
		}
	})

	t.Run("first matching rule wins for overlapping keywords", func(t *testing.T) {
		// "micro man plus" contains "micro man", but the more specific
		// bio-stimulant rule is ordered first.
		assert.Equal(t, models.CategoryBioStimulants, Classify("micro man plus (250 gm)"))
		assert.Equal(t, models.CategoryChelatedMicronutrient, Classify("micro man - zn (500 gm)"))
	})

	t.Run("unknown items fall back to Uncategorized", func(t *testing.T) {
		assert.Equal(t, models.CategoryUncategorized, Classify("mystery powder"))
		assert.Equal(t, models.CategoryUncategorized, Classify(""))
	})

	t.Run("deterministic across repeated calls", func(t *testing.T) {
		inputs := []string{"", "zumbaa", "NUTRISAC kit", "x", "micro man plus"}
		for _, s := range inputs {
			first := Classify(s)
			for i := 0; i < 3; i++ {
				assert.Equal(t, first, Classify(s))
			}
			assert.NotEmpty(t, string(first))
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, Classify("JACKPOT KIT"), Classify("jackpot kit"))
	})
}
