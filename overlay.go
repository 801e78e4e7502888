package main

import (
	"image"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// overlayInput is everything the overlay needs to draw one frame. The
// renderer is a pure function of this tuple; the update loop recomputes it
// after every mutation instead of relying on partial invalidation.
type overlayInput struct {
	width      int
	height     int
	background []string // pre-sampled luminance rows, may be nil
	style      Style
	title      *string
	body       string
	selected   Region
	editing    bool
	editCursor int
}

// boxCellRect converts fractional geometry to a cell rectangle inside a
// width x height overlay. Boxes keep at least a 2x2 footprint so the
// border stays drawable at tiny terminal sizes.
func boxCellRect(box BoxGeometry, width, height int) (int, int, int, int) {
	x := int(box.X * float64(width))
	y := int(box.Y * float64(height))
	w := int(box.Width * float64(width))
	h := int(box.Height * float64(height))
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}
	if x > width-w {
		x = width - w
	}
	if y > height-h {
		y = height - h
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y, w, h
}

// cellToFraction converts an overlay cell coordinate to canvas fractions.
func cellToFraction(cellX, cellY, width, height int) (float64, float64) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return float64(cellX) / float64(width), float64(cellY) / float64(height)
}

func renderOverlay(in overlayInput) []string {
	if in.width < 1 {
		in.width = 1
	}
	if in.height < 1 {
		in.height = 1
	}

	grid := make([][]rune, in.height)
	for y := range grid {
		grid[y] = make([]rune, in.width)
		var bgRow []rune
		if y < len(in.background) {
			bgRow = []rune(in.background[y])
		}
		for x := range grid[y] {
			if x < len(bgRow) {
				grid[y][x] = bgRow[x]
			} else {
				grid[y][x] = ' '
			}
		}
	}

	// Body first so a selected title draws on top where they overlap.
	body := in.body
	if in.editing && in.selected == RegionBody {
		body = insertCursor(body, in.editCursor)
	}
	drawRegionBox(grid, in.style.BodyBox, body, in.style.Alignment, in.style.MaxLines,
		in.selected == RegionBody, in.width, in.height)

	if in.title != nil {
		title := *in.title
		if in.editing && in.selected == RegionTitle {
			title = insertCursor(title, in.editCursor)
		}
		drawRegionBox(grid, in.style.TitleBox, title, in.style.Alignment, in.style.MaxLines,
			in.selected == RegionTitle, in.width, in.height)
	}

	lines := make([]string, in.height)
	for y := range grid {
		lines[y] = string(grid[y])
	}
	return lines
}

func insertCursor(text string, pos int) string {
	runes := []rune(text)
	if pos < 0 {
		pos = 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}
	out := make([]rune, 0, len(runes)+1)
	out = append(out, runes[:pos]...)
	out = append(out, '█')
	out = append(out, runes[pos:]...)
	return string(out)
}

func drawRegionBox(grid [][]rune, box BoxGeometry, text, alignment string, maxLines int, selected bool, width, height int) {
	x, y, w, h := boxCellRect(box, width, height)

	horizontal, vertical := '─', '│'
	tl, tr, bl, br := '┌', '┐', '└', '┘'
	if selected {
		horizontal, vertical = '═', '║'
		tl, tr, bl, br = '╔', '╗', '╚', '╝'
	}

	for cx := x; cx < x+w; cx++ {
		setCell(grid, cx, y, horizontal)
		setCell(grid, cx, y+h-1, horizontal)
	}
	for cy := y; cy < y+h; cy++ {
		setCell(grid, x, cy, vertical)
		setCell(grid, x+w-1, cy, vertical)
	}
	setCell(grid, x, y, tl)
	setCell(grid, x+w-1, y, tr)
	setCell(grid, x, y+h-1, bl)
	setCell(grid, x+w-1, y+h-1, br)

	// Resize handles mark the draggable corners of the selected region.
	if selected {
		setCell(grid, x, y, '◆')
		setCell(grid, x+w-1, y, '◆')
		setCell(grid, x, y+h-1, '◆')
		setCell(grid, x+w-1, y+h-1, '◆')
	}

	// Interior: clear, then wrapped text.
	innerW := w - 2
	innerH := h - 2
	if innerW < 1 || innerH < 1 {
		return
	}
	for cy := y + 1; cy < y+h-1; cy++ {
		for cx := x + 1; cx < x+w-1; cx++ {
			setCell(grid, cx, cy, ' ')
		}
	}

	lines := wrapText(text, innerW)
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	for i, line := range lines {
		runes := []rune(line)
		offset := 0
		switch alignment {
		case "center":
			offset = (innerW - len(runes)) / 2
		case "right":
			offset = innerW - len(runes)
		}
		if offset < 0 {
			offset = 0
		}
		for j, r := range runes {
			setCell(grid, x+1+offset+j, y+1+i, r)
		}
	}
}

func setCell(grid [][]rune, x, y int, r rune) {
	if y < 0 || y >= len(grid) {
		return
	}
	if x < 0 || x >= len(grid[y]) {
		return
	}
	grid[y][x] = r
}

// wrapText breaks text into lines no wider than width runes, splitting on
// spaces where possible. Explicit newlines are respected.
func wrapText(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range words {
			for len([]rune(word)) > width {
				runes := []rune(word)
				if line != "" {
					out = append(out, line)
					line = ""
				}
				out = append(out, string(runes[:width]))
				word = string(runes[width:])
			}
			switch {
			case line == "":
				line = word
			case len([]rune(line))+1+len([]rune(word)) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

var luminanceRamp = []rune(" ░▒▓█")

// imageToCells downsamples an image into luminance runes so the overlay
// can show the background behind the text boxes. Terminal cells are about
// twice as tall as wide, which the vertical scale accounts for.
func imageToCells(img image.Image, width, height int) []string {
	if img == nil || width < 1 || height < 1 {
		return nil
	}
	small := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	lines := make([]string, height)
	for y := 0; y < height; y++ {
		row := make([]rune, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := small.At(x, y).RGBA()
			// Rec. 601 luma, 16-bit channels.
			luma := (299*r + 587*g + 114*b) / 1000
			idx := int(luma * uint32(len(luminanceRamp)) / 65536)
			if idx >= len(luminanceRamp) {
				idx = len(luminanceRamp) - 1
			}
			row[x] = luminanceRamp[idx]
		}
		lines[y] = string(row)
	}
	return lines
}
