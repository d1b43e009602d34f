package exporter

import "fmt"

// ErrMissingDataset indicates one of the three input datasets was absent
// entirely. Unlike targets with missing optional fields, this aborts the
// run: producing a seemingly successful empty export would mislead
// operators.
type ErrMissingDataset struct {
	Dataset string
}

func (e ErrMissingDataset) Error() string {
	return fmt.Sprintf("input dataset %q is missing", e.Dataset)
}
