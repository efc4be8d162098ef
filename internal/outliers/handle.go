package outliers

import (
	"fmt"

	"goclean/domain/core"
	"goclean/domain/table"
)

// Method selects the outlier treatment of Handle.
type Method string

const (
	// MethodStandard fills missing values with medians, then applies the
	// quantile filter.
	MethodStandard Method = "standard"
	// MethodWinsorize uses the percentile band.
	MethodWinsorize Method = "winsorize"
)

// Handle treats outliers of cols in one call. Missing target values are
// first filled with the column median. With removeOutliers the offending
// rows are dropped; otherwise standard masks outliers as missing and
// winsorize clips them. opts tune the underlying transform.
func Handle(t *table.Table, method Method, cols []string, removeOutliers bool, opts ...Option) (*table.Table, error) {
	switch method {
	case MethodStandard:
		policy := PolicyNaN
		if removeOutliers {
			policy = PolicyDrop
		}
		f, err := NewQuantileFilter(append(opts, WithFillMissing(true), WithPolicy(policy))...)
		if err != nil {
			return nil, err
		}
		return f.Apply(t, cols)
	case MethodWinsorize:
		w, err := NewWinsorizer(append(opts, WithDropRows(removeOutliers))...)
		if err != nil {
			return nil, err
		}
		targetCols, err := targets(t, cols)
		if err != nil {
			return nil, err
		}
		filled, _, err := fillWithMedian(t, targetCols)
		if err != nil {
			return nil, err
		}
		return w.Apply(filled, names(targetCols))
	}
	return nil, core.NewInvalidArgumentError("method", fmt.Sprintf("unsupported method %q", method))
}
