package report

import (
	"fmt"
	"io"
	"math"
	"text/template"
)

// Geometry positions the ring chart.
type Geometry struct {
	CenterX     float64
	CenterY     float64
	Radius      float64
	StrokeWidth float64
}

// DefaultGeometry matches a 256x256 viewport.
var DefaultGeometry = Geometry{CenterX: 128, CenterY: 128, Radius: 120, StrokeWidth: 20}

// Point is a cartesian coordinate in SVG user space (y grows downward).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Arc is one slice of the ring chart.
type Arc struct {
	Outcome    Outcome `json:"outcome"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
	Start      Point   `json:"start"`
	End        Point   `json:"end"`
	LargeArc   bool    `json:"largeArc"`
	Path       string  `json:"path"`
}

// PolarToCartesian converts an angle measured clockwise from the top (12 o'clock).
func PolarToCartesian(cx, cy, radius, angleDeg float64) Point {
	rad := (angleDeg - 90) * math.Pi / 180
	return Point{
		X: cx + radius*math.Cos(rad),
		Y: cy + radius*math.Sin(rad),
	}
}

// Chart turns the segment sequence into arcs of 360/N degrees each, the first starting at the top.
func Chart(stats Stats, g Geometry) []Arc {
	n := len(stats.Segments)
	if n == 0 {
		return nil
	}
	span := 360 / float64(n)
	arcs := make([]Arc, 0, n)
	for i, outcome := range stats.Segments {
		startAngle := float64(i) * span
		endAngle := startAngle + span
		start := PolarToCartesian(g.CenterX, g.CenterY, g.Radius, startAngle)
		end := PolarToCartesian(g.CenterX, g.CenterY, g.Radius, endAngle)
		large := endAngle-startAngle > 180
		arcs = append(arcs, Arc{
			Outcome:    outcome,
			StartAngle: startAngle,
			EndAngle:   endAngle,
			Start:      start,
			End:        end,
			LargeArc:   large,
			Path:       arcPath(start, end, g.Radius, large),
		})
	}
	return arcs
}

func arcPath(start, end Point, radius float64, large bool) string {
	flag := 0
	if large {
		flag = 1
	}
	return fmt.Sprintf("M %.3f %.3f A %g %g 0 %d 1 %.3f %.3f", start.X, start.Y, radius, radius, flag, end.X, end.Y)
}

var strokeColors = map[Outcome]string{
	OutcomeCorrect:      "#22c55e",
	OutcomeIncorrect:    "#ef4444",
	OutcomeNotAttempted: "#e5e7eb",
}

var svgTemplate = template.Must(template.New("ring").Funcs(template.FuncMap{
	"color": func(o Outcome) string { return strokeColors[o] },
	"full":  func(a Arc) bool { return a.EndAngle-a.StartAngle >= 360 },
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Size}}" height="{{.Size}}" viewBox="0 0 {{.Size}} {{.Size}}">
{{- range .Arcs}}
{{- if full .}}
  <circle cx="{{$.G.CenterX}}" cy="{{$.G.CenterY}}" r="{{$.G.Radius}}" fill="none" stroke="{{color .Outcome}}" stroke-width="{{$.G.StrokeWidth}}"/>
{{- else}}
  <path d="{{.Path}}" fill="none" stroke="{{color .Outcome}}" stroke-width="{{$.G.StrokeWidth}}"/>
{{- end}}
{{- end}}
  <text x="{{.G.CenterX}}" y="{{.G.CenterY}}" text-anchor="middle" dominant-baseline="middle" font-size="24" font-weight="bold">Score: {{printf "%.2f" .Stats.ScorePercent}}</text>
</svg>
`))

// RenderSVG writes the ring chart with the score in the middle.
// A single-question chart spans the whole circle and is drawn as a circle, since an
// SVG arc whose endpoints coincide renders nothing.
func RenderSVG(w io.Writer, stats Stats, g Geometry) error {
	return svgTemplate.Execute(w, struct {
		Size  float64
		G     Geometry
		Stats Stats
		Arcs  []Arc
	}{
		Size:  2 * g.CenterX,
		G:     g,
		Stats: stats,
		Arcs:  Chart(stats, g),
	})
}
