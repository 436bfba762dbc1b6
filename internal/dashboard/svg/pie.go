package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

const pieLegendWidth = 140.0

// Pie renders a pie chart with each slice labelled by its whole-percent share.
func Pie(width, height int, values []float64, labels, colors []string, opts PieOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	if len(colors) > 0 && len(colors) != len(values) {
		return "", fmt.Errorf("svg: colors length must match values")
	}
	total := 0.0
	for _, v := range values {
		if v < 0 {
			return "", fmt.Errorf("svg: negative slice value %v", v)
		}
		total += v
	}
	if almostEqual(total, 0) {
		return "", fmt.Errorf("svg: values sum to zero")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	labelColor := fallback(opts.LabelColor, "#ffffff")

	plotWidth := float64(width) - 2*padding
	if !opts.HideLegend {
		plotWidth -= pieLegendWidth
	}
	plotHeight := float64(height) - 2*padding
	if plotWidth <= 0 || plotHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	radius := math.Min(plotWidth, plotHeight) / 2
	cx := padding + plotWidth/2
	cy := padding + plotHeight/2

	titleID := makeID(opts.Title, "pie-title")
	descID := makeID(opts.Title, "pie-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Pie chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Share breakdown"))))

	angle := -math.Pi / 2
	for i, value := range values {
		share := value / total
		sweep := share * 2 * math.Pi
		color := sliceColor(colors, i)
		label := template.HTMLEscapeString(labels[i])

		switch {
		case almostEqual(share, 0):
		case almostEqual(share, 1):
			b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" aria-label=\"%s\"></circle>", cx, cy, radius, color, label))
		default:
			x1, y1 := polar(cx, cy, radius, angle)
			x2, y2 := polar(cx, cy, radius, angle+sweep)
			largeArc := 0
			if sweep > math.Pi {
				largeArc = 1
			}
			b.WriteString(fmt.Sprintf("<path d=\"M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f Z\" fill=\"%s\" stroke=\"#ffffff\" stroke-width=\"1\" aria-label=\"%s\"></path>", cx, cy, x1, y1, radius, radius, largeArc, x2, y2, color, label))
		}

		if share > 0 {
			lx, ly := polar(cx, cy, radius/2, angle+sweep/2)
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"middle\" dominant-baseline=\"central\">%s</text>", lx, ly, labelColor, PercentLabel(share)))
		}
		angle += sweep
	}

	if !opts.HideLegend {
		legendX := float64(width) - padding - pieLegendWidth + 16
		legendY := cy - float64(len(values)-1)*10
		for i := range values {
			y := legendY + float64(i)*20
			b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" rx=\"2\" fill=\"%s\"></rect>", legendX, y-5, sliceColor(colors, i)))
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"#64748b\" font-size=\"11\" text-anchor=\"start\" dominant-baseline=\"central\">%s</text>", legendX+16, y, template.HTMLEscapeString(labels[i])))
		}
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// PercentLabel renders a share in [0,1] as a whole percent, e.g. 0.354 -> "35%".
func PercentLabel(share float64) string {
	return fmt.Sprintf("%.0f%%", math.Round(share*100))
}

var defaultPalette = []string{
	"var(--chart-1)",
	"var(--chart-2)",
	"var(--chart-3)",
	"var(--chart-4)",
	"var(--chart-5)",
}

func sliceColor(colors []string, i int) string {
	if i < len(colors) && strings.TrimSpace(colors[i]) != "" {
		return colors[i]
	}
	return defaultPalette[i%len(defaultPalette)]
}

func polar(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Cos(angle), cy + r*math.Sin(angle)
}
