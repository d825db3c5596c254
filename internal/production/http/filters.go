package productionhttp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/prodmon/internal/platform/httpx"
	"github.com/odyssey-erp/prodmon/internal/production"
	"github.com/odyssey-erp/prodmon/internal/production/ui"
)

// filterQuery carries the raw query values that need format validation.
type filterQuery struct {
	From string `validate:"omitempty,datetime=2006-01-02"`
	To   string `validate:"omitempty,datetime=2006-01-02"`
}

var queryFields = map[string]string{"From": "from", "To": "to"}

// parseFilters reads the dashboard query string. With no dates and no all=1
// flag the default look-back window applies.
func (h *Handler) parseFilters(query url.Values) (production.Filter, ui.DashboardFilters, error) {
	raw := filterQuery{
		From: strings.TrimSpace(query.Get("from")),
		To:   strings.TrimSpace(query.Get("to")),
	}
	if err := h.validate.Struct(raw); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return production.Filter{}, ui.DashboardFilters{}, validationError{field: queryFields[fieldErrs[0].Field()]}
		}
		return production.Filter{}, ui.DashboardFilters{}, err
	}

	all := isTruthy(query.Get("all"))
	f := production.Filter{
		DateFrom:         raw.From,
		DateTo:           raw.To,
		OrderCodeQuery:   query.Get("order_code"),
		OrderNameQuery:   query.Get("order_name"),
		ProductTypes:     multiValues(query, "product_type"),
		Customers:        multiValues(query, "customer"),
		DeliveryStatuses: multiValues(query, "delivery_status"),
		ShiftLeaders:     multiValues(query, "shift_leader"),
	}
	switch {
	case all:
		f.DateFrom, f.DateTo = "", ""
	case !f.HasDateRange():
		window := production.DefaultFilter(h.now())
		f.DateFrom, f.DateTo = window.DateFrom, window.DateTo
	}
	if f.DateFrom != "" && f.DateTo != "" && f.DateFrom > f.DateTo {
		return production.Filter{}, ui.DashboardFilters{}, validationError{field: "from", reason: "after to"}
	}
	f = f.Normalized()

	return f, ui.DashboardFilters{
		From:             f.DateFrom,
		To:               f.DateTo,
		AllDates:         all,
		OrderCode:        f.OrderCodeQuery,
		OrderName:        f.OrderNameQuery,
		ProductTypes:     f.ProductTypes,
		Customers:        f.Customers,
		DeliveryStatuses: f.DeliveryStatuses,
		ShiftLeaders:     f.ShiftLeaders,
	}, nil
}

// multiValues accepts both repeated keys and comma separated lists.
func multiValues(query url.Values, key string) []string {
	var out []string
	for _, v := range query[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// encodeFilters renders the active filter back into a query string.
func encodeFilters(f ui.DashboardFilters) string {
	q := url.Values{}
	if f.AllDates {
		q.Set("all", "1")
	}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("from", f.From)
	set("to", f.To)
	set("order_code", f.OrderCode)
	set("order_name", f.OrderName)
	for key, values := range map[string][]string{
		"product_type":    f.ProductTypes,
		"customer":        f.Customers,
		"delivery_status": f.DeliveryStatuses,
		"shift_leader":    f.ShiftLeaders,
	} {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	return q.Encode()
}

type validationError struct {
	field  string
	reason string
}

func (v validationError) Error() string {
	if v.reason != "" {
		return fmt.Sprintf("invalid %s: %s", v.field, v.reason)
	}
	return fmt.Sprintf("invalid %s", v.field)
}

func (v validationError) Unwrap() error {
	return httpx.ErrValidation
}
