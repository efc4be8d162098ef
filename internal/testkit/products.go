// Package testkit generates synthetic product nutrition tables with known
// defects for exercising the cleaning transforms.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-playground/validator/v10"

	"goclean/domain/core"
	"goclean/domain/table"
)

// ProductGeneratorConfig configures the product table generator
type ProductGeneratorConfig struct {
	ProductCount     int     `json:"product_count" validate:"gt=0"`
	MissingRate      float64 `json:"missing_rate" validate:"gte=0,lte=1"`
	OutlierRate      float64 `json:"outlier_rate" validate:"gte=0,lte=1"`
	OutOfRangeRate   float64 `json:"out_of_range_rate" validate:"gte=0,lte=1"`
	InconsistentRate float64 `json:"inconsistent_rate" validate:"gte=0,lte=1"`
	Seed             int64   `json:"seed"`
}

// DefaultProductConfig returns sensible defaults for product generation
func DefaultProductConfig() ProductGeneratorConfig {
	return ProductGeneratorConfig{
		ProductCount:     500,
		MissingRate:      0.1,
		OutlierRate:      0.02,
		OutOfRangeRate:   0.02,
		InconsistentRate: 0.03,
		Seed:             42,
	}
}

// Products is a generated table plus the row labels of each injected defect.
type Products struct {
	Table *table.Table

	// Outliers have an energy value far above the physical ceiling.
	Outliers []int
	// OutOfRange have a negative fiber value.
	OutOfRange []int
	// Inconsistent have more saturated fat than fat.
	Inconsistent []int
}

// ProductGenerator generates product nutrition tables
type ProductGenerator struct {
	config ProductGeneratorConfig
	rng    *rand.Rand
}

// NewProductGenerator creates a new product generator
func NewProductGenerator(config ProductGeneratorConfig) *ProductGenerator {
	return &ProductGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	brands    = []string{"Alpina", "Bonterre", "Cremerie", "Dulcia", "Epicure"}
	countries = []string{"France", "Germany", "Italy", "Spain"}
	grades    = []string{"a", "b", "c", "d", "e"}
)

// NutrientColumns lists the generated per-100g columns in table order.
var NutrientColumns = []string{
	"energy_100g", "energy-kcal_100g",
	"fat_100g", "saturated-fat_100g",
	"carbohydrates_100g", "sugars_100g", "fiber_100g",
	"proteins_100g", "salt_100g", "sodium_100g",
}

var validate = validator.New()

// Generate builds the table. Each row carries at most one injected defect and
// defective rows never have missing values.
func (g *ProductGenerator) Generate() (*Products, error) {
	if err := validate.Struct(g.config); err != nil {
		return nil, core.NewInvalidArgumentError("product generator", err.Error())
	}

	n := g.config.ProductCount
	codes := make([]int64, n)
	names := make([]any, n)
	brandCol := make([]any, n)
	countryCol := make([]string, n)
	nutri := make([]string, n)
	eco := make([]string, n)
	nutrients := make(map[string][]float64, len(NutrientColumns))
	for _, name := range NutrientColumns {
		nutrients[name] = make([]float64, n)
	}

	out := &Products{}
	for i := 0; i < n; i++ {
		codes[i] = 3000000000000 + int64(i)
		names[i] = fmt.Sprintf("product_%04d", i+1)
		brandCol[i] = brands[g.rng.Intn(len(brands))]
		countryCol[i] = countries[g.rng.Intn(len(countries))]
		nutri[i] = grades[g.rng.Intn(len(grades))]
		if g.rng.Float64() < 0.8 { // ecoscore is often unknown
			eco[i] = grades[g.rng.Intn(len(grades))]
		}

		row := g.nutrientRow()

		roll := g.rng.Float64()
		switch {
		case roll < g.config.OutlierRate:
			row["energy_100g"] = row["energy_100g"]*20 + 4000
			out.Outliers = append(out.Outliers, i)
		case roll < g.config.OutlierRate+g.config.OutOfRangeRate:
			row["fiber_100g"] = -(1 + g.rng.Float64()*4)
			out.OutOfRange = append(out.OutOfRange, i)
		case roll < g.config.OutlierRate+g.config.OutOfRangeRate+g.config.InconsistentRate:
			row["saturated-fat_100g"] = row["fat_100g"] + 1 + g.rng.Float64()*4
			out.Inconsistent = append(out.Inconsistent, i)
		default:
			g.blankOut(row)
		}

		for name, v := range row {
			nutrients[name][i] = v
		}
	}

	cols := []*table.Column{
		table.NewIntColumn("code", codes),
		table.NewObjectColumn("product_name", names),
		table.NewObjectColumn("brands", brandCol),
		table.NewCategoricalColumn("countries", countryCol, nil, false),
		table.NewCategoricalColumn("nutriscore_grade", nutri, grades, true),
		table.NewCategoricalColumn("ecoscore_grade", eco, grades, true),
	}
	for _, name := range NutrientColumns {
		cols = append(cols, table.NewFloatColumn(name, nutrients[name]))
	}

	tbl, err := table.New(cols...)
	if err != nil {
		return nil, err
	}
	out.Table = tbl
	return out, nil
}

// nutrientRow draws one physically consistent set of nutrient values.
func (g *ProductGenerator) nutrientRow() map[string]float64 {
	fat := g.rng.Float64() * 40
	carbs := g.rng.Float64() * 80
	proteins := g.rng.Float64() * 30
	salt := g.rng.Float64() * 3
	kcal := 9*fat + 4*carbs + 4*proteins

	return map[string]float64{
		"energy_100g":        round(kcal*4.184, 1),
		"energy-kcal_100g":   round(kcal, 1),
		"fat_100g":           round(fat, 2),
		"saturated-fat_100g": round(fat*(0.1+0.5*g.rng.Float64()), 2),
		"carbohydrates_100g": round(carbs, 2),
		"sugars_100g":        round(carbs*0.8*g.rng.Float64(), 2),
		"fiber_100g":         round(g.rng.Float64()*10, 2),
		"proteins_100g":      round(proteins, 2),
		"salt_100g":          round(salt, 3),
		"sodium_100g":        round(salt/2.5, 3),
	}
}

// blankOut marks optional nutrients as missing. Energy, fat and saturated fat
// are always declared.
func (g *ProductGenerator) blankOut(row map[string]float64) {
	for _, name := range []string{"sugars_100g", "fiber_100g", "proteins_100g", "salt_100g"} {
		if g.rng.Float64() < g.config.MissingRate {
			row[name] = math.NaN()
			if name == "salt_100g" {
				row["sodium_100g"] = math.NaN()
			}
		}
	}
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
