package report

import "errors"

var (
	ErrInvalidRange = errors.New("start_date must not be after end_date")
	ErrRangeTooWide = errors.New("date range exceeds the allowed number of days")
)
