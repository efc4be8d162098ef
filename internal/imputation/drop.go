package imputation

import (
	"fmt"

	"github.com/rs/zerolog"

	"goclean/domain/core"
	"goclean/domain/table"
)

// DefaultMissingThreshold is the missing rate above which DropColumns removes
// a column.
const DefaultMissingThreshold = 0.3

// DropColumns returns a new table without the columns whose missing rate is
// strictly above threshold.
func DropColumns(t *table.Table, threshold float64, logger zerolog.Logger) (*table.Table, error) {
	if !(threshold >= 0 && threshold <= 1) {
		return nil, core.NewInvalidArgumentError("threshold", fmt.Sprintf("%v is outside [0, 1]", threshold))
	}
	var drop []string
	for _, c := range t.Columns() {
		if rate := c.MissingRate(); rate > threshold {
			drop = append(drop, c.Name())
			logger.Debug().Str("column", c.Name()).Float64("missing_rate", rate).Msg("dropping column")
		}
	}
	logger.Info().Int("columns_dropped", len(drop)).Float64("threshold", threshold).Msg("dropped sparse columns")
	return t.Drop(drop...)
}
