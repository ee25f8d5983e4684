package charts

import (
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"statbook/internal/errors"
)

var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorOrange,
	chart.ColorAlternateGray,
}

func seriesStyle(kind SeriesKind, col drawing.Color) chart.Style {
	switch kind {
	case SeriesPoints:
		return chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    3,
			DotColor:    col,
		}
	case SeriesArea:
		return chart.Style{
			StrokeColor: col,
			StrokeWidth: 1,
			FillColor:   col.WithAlpha(64),
		}
	case SeriesDashed:
		return chart.Style{
			StrokeColor:     col,
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 4.0},
		}
	default:
		return chart.Style{
			StrokeColor: col,
			StrokeWidth: 2,
		}
	}
}

// RenderSVG writes the scene as an SVG image of the given size
func RenderSVG(scene Scene, width, height int, w io.Writer) error {
	if width <= 0 || height <= 0 {
		return errors.InvalidInput("chart size must be positive, got %dx%d", width, height)
	}
	if len(scene.Series) == 0 {
		return errors.InvalidInput("scene %q has no series", scene.Title)
	}

	series := make([]chart.Series, 0, len(scene.Series))
	for i, s := range scene.Series {
		if len(s.X) != len(s.Y) || len(s.X) < MinPoints {
			return errors.InvalidInput("series %q needs at least %d matching x/y values", s.Name, MinPoints)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: s.X,
			YValues: s.Y,
			Style:   seriesStyle(s.Kind, palette[i%len(palette)]),
		})
	}

	graph := chart.Chart{
		Title:  scene.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis:  chart.XAxis{Name: scene.XLabel},
		YAxis:  chart.YAxis{Name: scene.YLabel},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.SVG, w); err != nil {
		return errors.Wrapf(err, "render %q", scene.Title)
	}
	return nil
}
