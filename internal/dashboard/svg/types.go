package svg

// TickFormatter renders a y-axis value.
type TickFormatter func(float64) string

// LineOpts customises the line chart renderer.
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
	TickFormat  TickFormatter
	// Compact drops axes, grid and labels for sparkline use.
	Compact bool
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title        string
	Description  string
	SeriesALabel string
	SeriesBLabel string
	ColorA       string
	ColorB       string
	AxisColor    string
	GridColor    string
	Padding      float64
	TickCount    int
	TickFormat   TickFormatter
}

// PieOpts customises the pie chart renderer.
type PieOpts struct {
	Title       string
	Description string
	LabelColor  string
	Padding     float64
	HideLegend  bool
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 24.0
	DefaultTicks   = 6
)
