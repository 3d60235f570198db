// Package visualize rasterizes a route match to PNG: a top-down map of
// the graph with the search disk and matched route highlighted, and a
// target-vs-actual elevation profile comparison. Grounded on
// original_source/src/bin/visualize.rs's create_map_visualization,
// create_search_area_visualization, and create_profile_comparison, with
// plotters' chart rendering replaced by a direct stdlib
// image/image-draw rasterizer — no plotting library in the example pack
// targets Go, so this stays on the standard library by necessity.
package visualize

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"elevroute/pkg/graph"
	"elevroute/pkg/profile"
)

const (
	width  = 800
	height = 600
	margin = 20
)

var (
	colorBG     = color.RGBA{255, 255, 255, 255}
	colorEdge   = color.RGBA{160, 160, 160, 255}
	colorSearch = color.RGBA{70, 110, 220, 255}
	colorRoute  = color.RGBA{220, 50, 50, 255}
	colorCenter = color.RGBA{40, 160, 70, 255}
	colorTarget = color.RGBA{70, 110, 220, 255}
	colorActual = color.RGBA{220, 50, 50, 255}
)

// RenderMap draws every edge in the graph in gray, the search disk in
// blue, the center point in green, and (if nonempty) routeEdges in red,
// then writes the result as a PNG to path.
func RenderMap(g *graph.Graph, cx, cy, radius float64, routeEdges []uint64, path string) error {
	minX, minY, maxX, maxY := bounds(g)
	minX = math.Min(minX, cx-radius) - margin
	minY = math.Min(minY, cy-radius) - margin
	maxX = math.Max(maxX, cx+radius) + margin
	maxY = math.Max(maxY, cy+radius) + margin

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, colorBG)
	proj := projector(minX, minY, maxX, maxY)

	for _, id := range g.EdgeIDs() {
		e, _ := g.Edge(id)
		fx, fy, tx, ty := g.Endpoints(e)
		x0, y0 := proj(fx, fy)
		x1, y1 := proj(tx, ty)
		drawLine(img, x0, y0, x1, y1, colorEdge)
	}

	drawCircle(img, proj, cx, cy, radius, colorSearch)

	route := make(map[uint64]bool, len(routeEdges))
	for _, id := range routeEdges {
		route[id] = true
	}
	for _, id := range routeEdges {
		e, ok := g.Edge(id)
		if !ok {
			continue
		}
		fx, fy, tx, ty := g.Endpoints(e)
		x0, y0 := proj(fx, fy)
		x1, y1 := proj(tx, ty)
		drawThickLine(img, x0, y0, x1, y1, colorRoute)
	}

	cxPix, cyPix := proj(cx, cy)
	drawDisc(img, cxPix, cyPix, 4, colorCenter)

	return writePNG(path, img)
}

// RenderProfileComparison draws target in blue and actual in red on a
// shared distance/elevation axis, writing the result as a PNG to path.
func RenderProfileComparison(target, actual *profile.Profile, path string) error {
	maxDist := math.Max(target.TotalLength(), actual.TotalLength())
	minElev, maxElev := math.Inf(1), math.Inf(-1)
	for _, p := range target.Points {
		minElev = math.Min(minElev, p.Z)
		maxElev = math.Max(maxElev, p.Z)
	}
	for _, p := range actual.Points {
		minElev = math.Min(minElev, p.Z)
		maxElev = math.Max(maxElev, p.Z)
	}
	pad := (maxElev - minElev) * 0.1
	if pad == 0 {
		pad = 1
	}
	minElev -= pad
	maxElev += pad

	img := image.NewRGBA(image.Rect(0, 0, width+200, height))
	fill(img, colorBG)
	proj := projector(0, minElev, maxDist, maxElev)

	drawProfile(img, proj, target, colorTarget)
	drawProfile(img, proj, actual, colorActual)

	return writePNG(path, img)
}

func drawProfile(img *image.RGBA, proj func(x, y float64) (int, int), p *profile.Profile, c color.RGBA) {
	for i := 1; i < len(p.Points); i++ {
		x0, y0 := proj(p.Points[i-1].S, p.Points[i-1].Z)
		x1, y1 := proj(p.Points[i].S, p.Points[i].Z)
		drawThickLine(img, x0, y0, x1, y1, c)
	}
	for _, pt := range p.Points {
		x, y := proj(pt.S, pt.Z)
		drawDisc(img, x, y, 3, c)
	}
}

func bounds(g *graph.Graph) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, id := range g.EdgeIDs() {
		e, _ := g.Edge(id)
		fx, fy, tx, ty := g.Endpoints(e)
		minX = math.Min(minX, math.Min(fx, tx))
		maxX = math.Max(maxX, math.Max(fx, tx))
		minY = math.Min(minY, math.Min(fy, ty))
		maxY = math.Max(maxY, math.Max(fy, ty))
	}
	return
}

// projector returns a function mapping (x, y) in data space to pixel
// coordinates, flipping Y so data-space up is image-space up.
func projector(minX, minY, maxX, maxY float64) func(x, y float64) (int, int) {
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	return func(x, y float64) (int, int) {
		px := margin + int((x-minX)/spanX*float64(width-2*margin))
		py := height - margin - int((y-minY)/spanY*float64(height-2*margin))
		return px, py
	}
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// drawLine rasterizes a line segment via Bresenham's algorithm.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawThickLine draws a line with its immediate neighbors filled in too,
// giving the route/profile series visible weight against the 1px gray
// background edges.
func drawThickLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for _, off := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
		drawLine(img, x0+off[0], y0+off[1], x1+off[0], y1+off[1], c)
	}
}

func drawCircle(img *image.RGBA, proj func(x, y float64) (int, int), cx, cy, radius float64, c color.RGBA) {
	const steps = 360
	prevX, prevY := 0, 0
	for i := 0; i <= steps; i++ {
		angle := float64(i) * math.Pi / 180
		x, y := proj(cx+radius*math.Cos(angle), cy+radius*math.Sin(angle))
		if i > 0 {
			drawLine(img, prevX, prevY, x, y, c)
		}
		prevX, prevY = x, y
	}
}

func drawDisc(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(cx+dx, cy+dy, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
