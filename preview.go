package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Font sizes in a Style are pixels at the canonical canvas width; the
// preview scales them to whatever size the background actually is.
const canonicalCanvasWidth = 1080.0

const (
	previewWidth  = 1080
	previewHeight = 1350
)

// renderSlidePNG composites the local text and style over the background
// image and writes the result to outPath. It approximates the server-side
// composite so the user can inspect typography without waiting for a
// round trip; the server's rendered slide stays authoritative.
func renderSlidePNG(outPath string, background image.Image, title *string, body string, style Style, fontDir string) error {
	width, height := previewWidth, previewHeight
	if background != nil {
		bounds := background.Bounds()
		if bounds.Dx() > 0 && bounds.Dy() > 0 {
			width, height = bounds.Dx(), bounds.Dy()
		}
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.Clear()
	if background != nil {
		dc.DrawImage(background, 0, 0)
	}

	scale := float64(width) / canonicalCanvasWidth

	if title != nil && strings.TrimSpace(*title) != "" {
		err := drawRegionPNG(dc, style.TitleBox, *title, style.TitleSize*scale, style, width, height, fontDir)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(body) != "" {
		err := drawRegionPNG(dc, style.BodyBox, body, style.BodySize*scale, style, width, height, fontDir)
		if err != nil {
			return err
		}
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}

func drawRegionPNG(dc *gg.Context, box BoxGeometry, text string, fontSize float64, style Style, width, height int, fontDir string) error {
	face, err := loadFontFace(fontDir, style.FontFamily, style.FontWeight, fontSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	x := (box.X + box.Padding) * float64(width)
	y := (box.Y + box.Padding) * float64(height)
	w := (box.Width - 2*box.Padding) * float64(width)
	h := (box.Height - 2*box.Padding) * float64(height)
	if w < 1 || h < 1 {
		return nil
	}

	lines := dc.WordWrap(text, w)
	if style.MaxLines > 0 && len(lines) > style.MaxLines {
		lines = lines[:style.MaxLines]
	}
	lineHeight := fontSize * style.LineSpacing
	maxFit := int(h / lineHeight)
	if maxFit > 0 && len(lines) > maxFit {
		lines = lines[:maxFit]
	}

	var anchorX, align float64
	switch style.Alignment {
	case "left":
		anchorX, align = x, 0
	case "right":
		anchorX, align = x+w, 1
	default:
		anchorX, align = x+w/2, 0.5
	}

	for i, line := range lines {
		lineY := y + fontSize + float64(i)*lineHeight

		if style.Shadow.Enabled {
			dc.SetHexColor(style.Shadow.Color)
			// gg has no gaussian blur; fake it with softened passes
			// spread over the blur radius.
			passes := int(style.Shadow.Blur)
			if passes < 1 {
				passes = 1
			}
			for p := 0; p < passes; p++ {
				dc.DrawStringAnchored(line, anchorX+style.Shadow.DX, lineY+style.Shadow.DY, align, 0)
			}
		}

		if style.Stroke.Enabled && style.Stroke.Width > 0 {
			dc.SetHexColor(style.Stroke.Color)
			sw := style.Stroke.Width
			for _, offset := range [][2]float64{
				{-sw, 0}, {sw, 0}, {0, -sw}, {0, sw},
				{-sw, -sw}, {sw, -sw}, {-sw, sw}, {sw, sw},
			} {
				dc.DrawStringAnchored(line, anchorX+offset[0], lineY+offset[1], align, 0)
			}
		}

		dc.SetHexColor(style.TextColor)
		dc.DrawStringAnchored(line, anchorX, lineY, align, 0)
	}
	return nil
}

// loadFontFace resolves a family/weight pair to a font face. It looks for
// a matching .ttf under fontDir first and falls back to the bundled Go
// fonts so the preview always renders.
func loadFontFace(fontDir, family string, weight int, size float64) (font.Face, error) {
	fontData := goregular.TTF
	if weight >= 600 {
		fontData = gobold.TTF
	}

	if fontDir != "" && family != "" {
		if path := findFontFile(fontDir, family, weight); path != "" {
			if data, err := os.ReadFile(path); err == nil {
				fontData = data
			}
		}
	}

	ttfFont, err := truetype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(ttfFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func findFontFile(fontDir, family string, weight int) string {
	base := strings.ToLower(strings.ReplaceAll(family, " ", ""))
	candidates := []string{
		base + "-" + weightName(weight) + ".ttf",
		base + weightName(weight) + ".ttf",
		base + ".ttf",
	}
	for _, name := range candidates {
		entries, err := os.ReadDir(fontDir)
		if err != nil {
			return ""
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.ToLower(entry.Name()) == name {
				return filepath.Join(fontDir, entry.Name())
			}
		}
	}
	return ""
}

func weightName(weight int) string {
	switch {
	case weight >= 800:
		return "extrabold"
	case weight >= 700:
		return "bold"
	case weight >= 600:
		return "semibold"
	case weight >= 500:
		return "medium"
	case weight >= 300:
		return "regular"
	default:
		return "light"
	}
}
