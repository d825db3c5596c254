package appsheet

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/prodmon/internal/production"
)

// dateColumn is the table column the server-side window is applied to.
const dateColumn = "Ngày"

// backendDate is the date layout the backend expects inside selector expressions.
const backendDate = "01/02/2006"

// Selector renders the Find selector for the requested window. It returns an
// empty string when neither bound is usable so the full table is read.
func Selector(opts production.FetchOptions) string {
	var clauses []string
	if d, ok := backendDay(opts.DateFrom); ok {
		clauses = append(clauses, fmt.Sprintf("[%s] >= %q", dateColumn, d))
	}
	if d, ok := backendDay(opts.DateTo); ok {
		clauses = append(clauses, fmt.Sprintf("[%s] <= %q", dateColumn, d))
	}
	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	default:
		return fmt.Sprintf("AND(%s, %s)", clauses[0], clauses[1])
	}
}

func backendDay(iso string) (string, bool) {
	if iso == "" {
		return "", false
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "", false
	}
	return t.Format(backendDate), true
}
