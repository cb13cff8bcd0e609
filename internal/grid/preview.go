package grid

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	previewTileWidth    = 32
	previewTileHeight   = 16
	previewStepHeight   = 12
	previewAmbientLight = 0.2
)

// PreviewColors maps tile and occupant names to hex colours.
var PreviewColors = map[string]string{
	"floor":    "#4f8a3c",
	"slope":    "#7a6a45",
	"tree":     "#1f5e2a",
	"rock":     "#8c8c8c",
	"synthoid": "#3d7fd6",
	"sentry":   "#c77b1e",
	"sentinel": "#d23a3a",
	"start":    "#f2e14c",
}

type tilePreview struct {
	piece   Piece
	screenX int
	screenY int
}

// SavePreview renders an isometric PNG of g into outputDir and returns the
// written path.
func SavePreview(g *Grid, outputDir, name string) (string, error) {
	if g == nil {
		return "", errors.New("grid is nil")
	}
	maxLevel := 0.0
	for _, piece := range g.pieces {
		maxLevel = max(maxLevel, piece.Level)
	}
	columns := int(math.Ceil(maxLevel*2)) + 1

	width := (g.width+g.depth)*previewTileWidth/2 + previewTileWidth
	height := (g.width+g.depth)*previewTileHeight/2 + columns*previewStepHeight + previewTileHeight*2
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	background := color.NRGBA{R: 10, G: 10, B: 18, A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	tiles := make([]tilePreview, 0, len(g.pieces))
	for _, piece := range g.pieces {
		tiles = append(tiles, tilePreview{
			piece:   piece,
			screenX: (piece.Point.X - piece.Point.Z) * previewTileWidth / 2,
			screenY: (piece.Point.X + piece.Point.Z) * previewTileHeight / 2,
		})
	}
	// Back to front so nearer columns overdraw farther ones.
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].screenY == tiles[j].screenY {
			return tiles[i].screenX < tiles[j].screenX
		}
		return tiles[i].screenY < tiles[j].screenY
	})

	offsetX := g.depth*previewTileWidth/2 + previewTileWidth/2
	offsetY := columns*previewStepHeight + previewTileHeight
	for _, tile := range tiles {
		baseX := offsetX + tile.screenX
		baseY := offsetY + tile.screenY
		lift := int(math.Round(tile.piece.Level * 2 * previewStepHeight))
		renderTilePreview(img, baseX, baseY, lift, tile.piece)
		if marker, ok := g.previewMarker(tile.piece.Point); ok {
			renderMarker(img, baseX, baseY-lift, marker)
		}
	}

	if err := ensurePreviewDir(outputDir); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, fmt.Sprintf("%s.png", name))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return path, nil
}

func (g *Grid) previewMarker(p Point) (string, bool) {
	if kind, ok := g.Topmost(p); ok && kind != None {
		return kind.String(), true
	}
	if p == g.start {
		return "start", true
	}
	return "", false
}

func renderTilePreview(img *image.NRGBA, baseX, baseY, lift int, piece Piece) {
	name := "floor"
	if !piece.IsFloor {
		name = "slope"
	}
	baseColor := resolveColor(name)

	topColor := applyLighting(baseColor, previewAmbientLight+0.7)
	leftColor := applyLighting(baseColor, previewAmbientLight+0.45)
	rightColor := applyLighting(baseColor, previewAmbientLight+0.3)

	topY := baseY - lift
	top := []image.Point{
		{X: baseX, Y: topY},
		{X: baseX + previewTileWidth/2, Y: topY + previewTileHeight/2},
		{X: baseX, Y: topY + previewTileHeight},
		{X: baseX - previewTileWidth/2, Y: topY + previewTileHeight/2},
	}
	left := []image.Point{
		{X: baseX - previewTileWidth/2, Y: topY + previewTileHeight/2},
		{X: baseX, Y: topY + previewTileHeight},
		{X: baseX, Y: baseY + previewTileHeight},
		{X: baseX - previewTileWidth/2, Y: baseY + previewTileHeight/2},
	}
	right := []image.Point{
		{X: baseX + previewTileWidth/2, Y: topY + previewTileHeight/2},
		{X: baseX, Y: topY + previewTileHeight},
		{X: baseX, Y: baseY + previewTileHeight},
		{X: baseX + previewTileWidth/2, Y: baseY + previewTileHeight/2},
	}

	if lift > 0 {
		fillPolygon(img, left, leftColor)
		fillPolygon(img, right, rightColor)
	}
	fillPolygon(img, top, topColor)
}

func renderMarker(img *image.NRGBA, centerX, topY int, name string) {
	col := resolveColor(name)
	cy := topY + previewTileHeight/2
	diamond := []image.Point{
		{X: centerX, Y: cy - previewTileHeight/4 - 4},
		{X: centerX + previewTileWidth/6, Y: cy - 4},
		{X: centerX, Y: cy + previewTileHeight/4 - 4},
		{X: centerX - previewTileWidth/6, Y: cy - 4},
	}
	fillPolygon(img, diamond, col)
}

func resolveColor(name string) color.NRGBA {
	if col, ok := parseHexColor(PreviewColors[name]); ok {
		return col
	}
	return color.NRGBA{R: 128, G: 128, B: 128, A: 255}
}

func parseHexColor(value string) (color.NRGBA, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

func applyLighting(base color.NRGBA, factor float64) color.NRGBA {
	factor = min(max(factor, 0), 1)
	r := uint8(math.Round(float64(base.R) * factor))
	g := uint8(math.Round(float64(base.G) * factor))
	b := uint8(math.Round(float64(base.B) * factor))
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// fillPolygon fills a convex polygon. Every scanline crosses the outline at
// most twice, so the span between the outermost crossings is the interior.
func fillPolygon(img *image.NRGBA, pts []image.Point, col color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	bounds := img.Bounds()
	top, bottom := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		top = min(top, p.Y)
		bottom = max(bottom, p.Y)
	}
	top = max(top, bounds.Min.Y)
	bottom = min(bottom, bounds.Max.Y-1)

	for y := top; y <= bottom; y++ {
		left, right, crossings := math.MaxInt, math.MinInt, 0
		for i, a := range pts {
			b := pts[(i+1)%len(pts)]
			if a.Y == b.Y || y < min(a.Y, b.Y) || y >= max(a.Y, b.Y) {
				continue
			}
			x := a.X + (y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			left, right = min(left, x), max(right, x)
			crossings++
		}
		if crossings < 2 {
			continue
		}
		for x := max(left, bounds.Min.X); x <= min(right, bounds.Max.X-1); x++ {
			img.SetNRGBA(x, y, col)
		}
	}
}

func ensurePreviewDir(dir string) error {
	if dir == "" {
		return errors.New("preview output directory is empty")
	}
	return os.MkdirAll(dir, 0o755)
}
