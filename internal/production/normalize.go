package production

// fieldKind selects how a resolved raw value is coerced.
type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindDate
)

// fieldDef binds one canonical field to its ordered alias list. The first
// alias present in a row with a non-nil value wins.
type fieldDef struct {
	name    string
	kind    fieldKind
	aliases []string
	assign  func(r *Record, text string, number float64)
}

// fields is the alias table. Order within each alias list is significant:
// backend deployments name columns differently and the earliest match must win.
var fields = []fieldDef{
	{
		name: "date", kind: kindDate,
		aliases: []string{"Ngày", "Ngay", "Date", "date"},
		assign:  func(r *Record, s string, _ float64) { r.Date = s },
	},
	{
		name: "orderCode", kind: kindText,
		aliases: []string{"Đơn hàng", "DonHang", "Order", "Mã Đơn Hàng", "MaDonHang"},
		assign:  func(r *Record, s string, _ float64) { r.OrderCode = s },
	},
	{
		name: "inputQty", kind: kindNumber,
		aliases: []string{"Số lượng inputs", "SoLuongInput", "Input", "So luong input"},
		assign:  func(r *Record, _ string, n float64) { r.InputQty = n },
	},
	{
		name: "passQty", kind: kindNumber,
		aliases: []string{"pass", "Pass", "OK", "Quantity OK"},
		assign:  func(r *Record, _ string, n float64) { r.PassQty = n },
	},
	{
		name: "ngQty", kind: kindNumber,
		aliases: []string{"Hàng NG", "HangNG", "Fail", "NG", "ng"},
		assign:  func(r *Record, _ string, n float64) { r.NGQty = n },
	},
	{
		name: "productType", kind: kindText,
		aliases: []string{"Loại sp", "LoaiSP", "Product Type", "Type", "Loại sản phẩm"},
		assign:  func(r *Record, s string, _ float64) { r.ProductType = s },
	},
	{
		name: "customer", kind: kindText,
		aliases: []string{"Khách hàng", "KhachHang", "Customer", "Client"},
		assign:  func(r *Record, s string, _ float64) { r.Customer = s },
	},
	{
		name: "orderName", kind: kindText,
		aliases: []string{"Tên đơn", "TenDon", "Order Name", "Name", "Tên sản phẩm"},
		assign:  func(r *Record, s string, _ float64) { r.OrderName = s },
	},
	{
		name: "deliveryStatus", kind: kindText,
		aliases: []string{"Trạng thái giao", "TrangThaiGiao", "Status", "Delivery Status", "Tình trạng"},
		assign:  func(r *Record, s string, _ float64) { r.DeliveryStatus = s },
	},
	{
		name: "shiftLeader", kind: kindText,
		aliases: []string{"Trưởng ca", "TruongCa", "Shift Leader", "Leader", "Quản lý ca"},
		assign:  func(r *Record, s string, _ float64) { r.ShiftLeader = s },
	},
}

const (
	keyRowNumber = "_RowNumber"
	keyID        = "id"
)

// knownKeys holds every key consumed by the pipeline; anything else is an extra.
var knownKeys = func() map[string]struct{} {
	keys := map[string]struct{}{keyRowNumber: {}, keyID: {}}
	for _, f := range fields {
		for _, alias := range f.aliases {
			keys[alias] = struct{}{}
		}
	}
	return keys
}()

// resolve returns the value of the first alias present with a non-nil value.
func resolve(row RawRow, aliases []string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := row[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Normalize maps raw rows onto canonical records, one output per input, in order.
func Normalize(rows []RawRow) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, NormalizeRow(row))
	}
	return records
}

// NormalizeRow maps a single raw row. Missing or malformed values fall back to
// the field default; it never fails.
func NormalizeRow(row RawRow) Record {
	var rec Record
	for _, f := range fields {
		raw, ok := resolve(row, f.aliases)
		switch f.kind {
		case kindDate:
			f.assign(&rec, ParseDate(raw), 0)
		case kindNumber:
			f.assign(&rec, "", ParseNumber(raw))
		default:
			text := ""
			if ok {
				text = stringify(raw)
			}
			f.assign(&rec, text, 0)
		}
	}
	rec.RowID = rowID(row)
	for key, value := range row {
		if _, known := knownKeys[key]; known {
			continue
		}
		if rec.Extras == nil {
			rec.Extras = make(map[string]any)
		}
		rec.Extras[key] = value
	}
	return rec
}

func rowID(row RawRow) string {
	if id := row[keyID]; !isBlank(id) {
		return stringify(id)
	}
	if n, ok := row[keyRowNumber]; ok && n != nil {
		return stringify(n)
	}
	return ""
}
