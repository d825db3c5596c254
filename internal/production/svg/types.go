package svg

// Series is one named value sequence drawn against shared labels.
type Series struct {
	Label  string
	Color  string
	Values []float64
}

// Slice is one segment of a donut chart.
type Slice struct {
	Label string
	Color string
	Value float64
}

// LineOpts customises the trend renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
}

// BarOpts customises the vertical grouped bar renderer.
type BarOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
}

// HBarOpts customises the horizontal category bar renderer.
type HBarOpts struct {
	Title       string
	Description string
	BarColor    string
	AxisColor   string
	LabelWidth  float64
	Padding     float64
}

// DonutOpts customises the ring renderer.
type DonutOpts struct {
	Title       string
	Description string
	CenterLabel string
	Thickness   float64
	TrackColor  string
	TextColor   string
}

// Defaults for the production charts.
const (
	DefaultWidth      = 720
	DefaultHeight     = 260
	DefaultPadding    = 28.0
	DefaultTicks      = 5
	DefaultLabelWidth = 120.0
)

// Palette used when a series or slice carries no colour.
var palette = []string{"#16a34a", "#dc2626", "#2563eb", "#f59e0b", "#7c3aed", "#0891b2"}

// Colours used by the dashboard for pass and NG figures.
const (
	PassColor  = "#16a34a"
	NGColor    = "#dc2626"
	InputColor = "#2563eb"
)
