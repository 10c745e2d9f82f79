package icons

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/amirpz/snapkit/internal/logger"
)

// Icon pairs a pixel size with the output file name.
type Icon struct {
	Size     int
	Filename string
}

// DefaultIcons is the fixed list of app-icon sizes an iOS asset catalog
// expects.
var DefaultIcons = []Icon{
	{20, "Icon-20.png"},
	{29, "Icon-29.png"},
	{40, "Icon-40.png"},
	{58, "Icon-58.png"},
	{60, "Icon-60.png"},
	{76, "Icon-76.png"},
	{80, "Icon-80.png"},
	{87, "Icon-87.png"},
	{120, "Icon-120.png"},
	{152, "Icon-152.png"},
	{167, "Icon-167.png"},
	{180, "Icon-180.png"},
	{1024, "Icon-1024.png"},
}

// Generator renders placeholder app icons: a solid background, an unfilled
// circular outline, and a centered glyph scaled to the icon size.
type Generator struct {
	OutputDir  string
	Icons      []Icon
	Background color.NRGBA
	Foreground color.NRGBA
	Glyph      string
	Logger     logger.Logger
}

// NewGenerator creates a Generator with the stock placeholder design.
func NewGenerator(outputDir string, log logger.Logger) *Generator {
	return &Generator{
		OutputDir:  outputDir,
		Icons:      DefaultIcons,
		Background: color.NRGBA{R: 139, G: 92, B: 246, A: 255}, // purple
		Foreground: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Glyph:      "$",
		Logger:     log,
	}
}

// Generate renders every configured icon into OutputDir, creating the
// directory if needed. It stops at the first write failure.
func (g *Generator) Generate() error {
	if err := os.MkdirAll(g.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create icon directory %s: %w", g.OutputDir, err)
	}

	for _, ic := range g.Icons {
		path := filepath.Join(g.OutputDir, ic.Filename)
		if err := g.writeIcon(ic.Size, path); err != nil {
			return err
		}
		g.Logger.InfoToUser("Created: %s", path)
	}

	g.Logger.Success("Generated %d placeholder icons in %s", len(g.Icons), g.OutputDir)
	g.Logger.WarningToUser("Remember to replace these with your actual app icon design!")
	return nil
}

// writeIcon renders one icon and encodes it as PNG.
func (g *Generator) writeIcon(size int, path string) error {
	img := g.Render(size)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// Render draws a single size-by-size placeholder icon.
func (g *Generator) Render(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, g.Background)
		}
	}

	g.drawCircleOutline(img, size)
	g.drawGlyph(img, size)

	return img
}

// drawCircleOutline draws an unfilled ring inset by size/8 with a stroke of
// max(1, size/40).
func (g *Generator) drawCircleOutline(img *image.NRGBA, size int) {
	margin := size / 8
	stroke := size / 40
	if stroke < 1 {
		stroke = 1
	}

	center := float64(size) / 2
	outer := center - float64(margin)
	inner := outer - float64(stroke)

	outerSq := outer * outer
	innerSq := inner * inner

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - center
			dy := float64(y) + 0.5 - center
			distSq := dx*dx + dy*dy
			if distSq <= outerSq && distSq >= innerSq {
				img.SetNRGBA(x, y, g.Foreground)
			}
		}
	}
}

// drawGlyph renders the glyph with the bitmap base face, then scales it to
// roughly half the icon height and composites it centered, nudged up a
// tenth of the icon as the placeholder design calls for.
func (g *Generator) drawGlyph(img *image.NRGBA, size int) {
	face := basicfont.Face7x13

	width := font.MeasureString(face, g.Glyph).Ceil()
	if width <= 0 {
		return
	}
	height := face.Metrics().Height.Ceil()

	glyph := image.NewNRGBA(image.Rect(0, 0, width, height))
	drawer := &font.Drawer{
		Dst:  glyph,
		Src:  image.NewUniform(g.Foreground),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(g.Glyph)

	targetH := size / 2
	if targetH < 1 {
		targetH = 1
	}
	targetW := targetH * width / height
	if targetW < 1 {
		targetW = 1
	}

	x0 := (size - targetW) / 2
	y0 := (size-targetH)/2 - size/10
	rect := image.Rect(x0, y0, x0+targetW, y0+targetH)

	draw.CatmullRom.Scale(img, rect, glyph, glyph.Bounds(), draw.Over, nil)
}
