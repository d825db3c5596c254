package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odyssey-erp/prodmon/internal/production"
)

// WriteTotalsCSV serialises the headline totals for the filtered view.
func WriteTotalsCSV(w io.Writer, totals production.Totals, f production.Filter) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Từ ngày", production.DisplayDate(f.DateFrom)},
		{"Đến ngày", production.DisplayDate(f.DateTo)},
		{"Tổng Input", formatQty(totals.TotalInput)},
		{"Tổng Pass", formatQty(totals.TotalPass)},
		{"Tổng NG", formatQty(totals.TotalNG)},
		{"Tồn đọng", formatQty(totals.TotalPending)},
		{"Tỷ lệ Pass (%)", formatRate(totals.PassRate)},
		{"Tỷ lệ NG (%)", formatRate(totals.NGRate)},
		{"Tỷ lệ tồn (%)", formatRate(totals.PendingRate)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRecordsCSV emits the detail table, one row per record with its rates.
func WriteRecordsCSV(w io.Writer, records []production.Record) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{
		"Ngày", "Đơn hàng", "Tên đơn", "Loại sp", "Khách hàng", "Trạng thái giao", "Trưởng ca",
		"Input", "Pass", "NG", "Tồn", "Tỷ lệ Pass (%)", "Tỷ lệ NG (%)",
	}); err != nil {
		return err
	}
	for _, r := range records {
		m := production.Metrics(r)
		if err := writer.Write([]string{
			production.DisplayDate(r.Date),
			r.OrderCode,
			r.OrderName,
			r.ProductType,
			r.Customer,
			r.DeliveryStatus,
			r.ShiftLeader,
			formatQty(r.InputQty),
			formatQty(r.PassQty),
			formatQty(r.NGQty),
			formatQty(m.Pending),
			formatRate(m.PassRate),
			formatRate(m.NGRate),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDateSeriesCSV emits the per-day sums in chart order.
func WriteDateSeriesCSV(w io.Writer, buckets []production.DateBucket) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Ngày", "Input", "Pass", "NG"}); err != nil {
		return err
	}
	for _, b := range buckets {
		if err := writer.Write([]string{
			production.DisplayDate(b.Date),
			formatQty(b.Input),
			formatQty(b.Pass),
			formatQty(b.NG),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCategoryCSV emits the per-product-type sums.
func WriteCategoryCSV(w io.Writer, buckets []production.CategoryBucket) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Loại sp", "Input", "Pass", "NG"}); err != nil {
		return err
	}
	for _, b := range buckets {
		if err := writer.Write([]string{b.Category, formatQty(b.Input), formatQty(b.Pass), formatQty(b.NG)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
