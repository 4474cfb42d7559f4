package nutrition

// Energy per gram of each macro-nutrient, in kcal.
const (
	CaloriesPerGramProtein = 4
	CaloriesPerGramCarbs   = 4
	CaloriesPerGramFat     = 9
)

// Macros holds macro-nutrient amounts in grams.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// Calories returns the energy of the given macros in kcal. This is the only
// place calorie figures are derived; they are never stored.
func Calories(m Macros) float64 {
	return m.Protein*CaloriesPerGramProtein +
		m.Carbs*CaloriesPerGramCarbs +
		m.Fat*CaloriesPerGramFat
}

// Multiplier converts a logged quantity into a multiple of a food's base
// serving. When the log references an alternate serving unit its
// gram-equivalent is scaled against the base serving size; a missing or
// non-positive gram-equivalent falls back to the raw quantity.
func Multiplier(quantity float64, servingSize int, gramsEquivalent *int) float64 {
	if gramsEquivalent != nil && *gramsEquivalent > 0 && servingSize > 0 {
		return quantity * float64(*gramsEquivalent) / float64(servingSize)
	}
	return quantity
}
