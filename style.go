package main

// Stroke is an outline drawn around slide text. Owned by a Style and
// replaced wholesale, never mutated in place.
type Stroke struct {
	Enabled bool    `json:"enabled"`
	Width   float64 `json:"width"`
	Color   string  `json:"color"`
}

// Shadow is a drop shadow behind slide text.
type Shadow struct {
	Enabled bool    `json:"enabled"`
	DX      float64 `json:"dx"`
	DY      float64 `json:"dy"`
	Blur    float64 `json:"blur"`
	Color   string  `json:"color"`
}

// Style is the typography and layout description for one slide's two text
// regions. Values are copy-on-write: edits go through Apply, which returns
// a new Style and leaves the receiver untouched.
type Style struct {
	FontFamily  string      `json:"font_family"`
	FontWeight  int         `json:"font_weight"`
	TitleSize   float64     `json:"title_size"`
	BodySize    float64     `json:"body_size"`
	TextColor   string      `json:"text_color"`
	Alignment   string      `json:"alignment"`
	TitleBox    BoxGeometry `json:"title_box"`
	BodyBox     BoxGeometry `json:"body_box"`
	LineSpacing float64     `json:"line_spacing"`
	Stroke      Stroke      `json:"stroke"`
	Shadow      Shadow      `json:"shadow"`
	MaxLines    int         `json:"max_lines"`
}

func defaultStyle() Style {
	return Style{
		FontFamily:  sentinelFontFamily,
		FontWeight:  sentinelFontWeight,
		TitleSize:   sentinelFontSize,
		BodySize:    sentinelBodySize,
		TextColor:   sentinelTextColor,
		Alignment:   sentinelAlignment,
		TitleBox:    BoxGeometry{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.25, Padding: 0.02},
		BodyBox:     BoxGeometry{X: 0.1, Y: 0.45, Width: 0.8, Height: 0.4, Padding: 0.02},
		LineSpacing: 1.2,
		Stroke:      Stroke{Enabled: false, Width: 2, Color: "#000000"},
		Shadow:      Shadow{Enabled: false, DX: 2, DY: 2, Blur: 4, Color: "#000000"},
		MaxLines:    0,
	}
}

// BoxPatch is a partial BoxGeometry update; nil fields are left alone.
type BoxPatch struct {
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Padding *float64 `json:"padding,omitempty"`
}

type StrokePatch struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Color   *string  `json:"color,omitempty"`
}

type ShadowPatch struct {
	Enabled *bool    `json:"enabled,omitempty"`
	DX      *float64 `json:"dx,omitempty"`
	DY      *float64 `json:"dy,omitempty"`
	Blur    *float64 `json:"blur,omitempty"`
	Color   *string  `json:"color,omitempty"`
}

// StylePatch is a partial Style update. Shallow fields are replaced
// wholesale when set; the four nested patches merge field-by-field into
// the existing sub-object so a caller can move a box by sending only
// {x, y} without clobbering its size.
type StylePatch struct {
	FontFamily  *string      `json:"font_family,omitempty"`
	FontWeight  *int         `json:"font_weight,omitempty"`
	TitleSize   *float64     `json:"title_size,omitempty"`
	BodySize    *float64     `json:"body_size,omitempty"`
	TextColor   *string      `json:"text_color,omitempty"`
	Alignment   *string      `json:"alignment,omitempty"`
	TitleBox    *BoxPatch    `json:"title_box,omitempty"`
	BodyBox     *BoxPatch    `json:"body_box,omitempty"`
	LineSpacing *float64     `json:"line_spacing,omitempty"`
	Stroke      *StrokePatch `json:"stroke,omitempty"`
	Shadow      *ShadowPatch `json:"shadow,omitempty"`
	MaxLines    *int         `json:"max_lines,omitempty"`
}

// Apply merges a patch into the style and returns the merged copy.
func (s Style) Apply(p StylePatch) Style {
	if p.FontFamily != nil {
		s.FontFamily = *p.FontFamily
	}
	if p.FontWeight != nil {
		s.FontWeight = *p.FontWeight
	}
	if p.TitleSize != nil {
		s.TitleSize = *p.TitleSize
	}
	if p.BodySize != nil {
		s.BodySize = *p.BodySize
	}
	if p.TextColor != nil {
		s.TextColor = *p.TextColor
	}
	if p.Alignment != nil {
		s.Alignment = *p.Alignment
	}
	if p.TitleBox != nil {
		s.TitleBox = s.TitleBox.apply(*p.TitleBox)
	}
	if p.BodyBox != nil {
		s.BodyBox = s.BodyBox.apply(*p.BodyBox)
	}
	if p.LineSpacing != nil {
		s.LineSpacing = *p.LineSpacing
	}
	if p.Stroke != nil {
		s.Stroke = s.Stroke.apply(*p.Stroke)
	}
	if p.Shadow != nil {
		s.Shadow = s.Shadow.apply(*p.Shadow)
	}
	if p.MaxLines != nil {
		s.MaxLines = *p.MaxLines
	}
	return s
}

func (b BoxGeometry) apply(p BoxPatch) BoxGeometry {
	if p.X != nil {
		b.X = *p.X
	}
	if p.Y != nil {
		b.Y = *p.Y
	}
	if p.Width != nil {
		b.Width = *p.Width
	}
	if p.Height != nil {
		b.Height = *p.Height
	}
	if p.Padding != nil {
		b.Padding = *p.Padding
	}
	return b
}

func (st Stroke) apply(p StrokePatch) Stroke {
	if p.Enabled != nil {
		st.Enabled = *p.Enabled
	}
	if p.Width != nil {
		st.Width = *p.Width
	}
	if p.Color != nil {
		st.Color = *p.Color
	}
	return st
}

func (sh Shadow) apply(p ShadowPatch) Shadow {
	if p.Enabled != nil {
		sh.Enabled = *p.Enabled
	}
	if p.DX != nil {
		sh.DX = *p.DX
	}
	if p.DY != nil {
		sh.DY = *p.DY
	}
	if p.Blur != nil {
		sh.Blur = *p.Blur
	}
	if p.Color != nil {
		sh.Color = *p.Color
	}
	return sh
}

// merge folds a later patch into an earlier one: later non-nil fields win,
// nested box/stroke/shadow patches merge per-field. Used by the scheduler
// to coalesce a burst of edits into one payload.
func (p StylePatch) merge(next StylePatch) StylePatch {
	if next.FontFamily != nil {
		p.FontFamily = stringPtr(*next.FontFamily)
	}
	if next.FontWeight != nil {
		p.FontWeight = intPtr(*next.FontWeight)
	}
	if next.TitleSize != nil {
		p.TitleSize = floatPtr(*next.TitleSize)
	}
	if next.BodySize != nil {
		p.BodySize = floatPtr(*next.BodySize)
	}
	if next.TextColor != nil {
		p.TextColor = stringPtr(*next.TextColor)
	}
	if next.Alignment != nil {
		p.Alignment = stringPtr(*next.Alignment)
	}
	if next.TitleBox != nil {
		p.TitleBox = mergeBoxPatch(p.TitleBox, next.TitleBox)
	}
	if next.BodyBox != nil {
		p.BodyBox = mergeBoxPatch(p.BodyBox, next.BodyBox)
	}
	if next.LineSpacing != nil {
		p.LineSpacing = floatPtr(*next.LineSpacing)
	}
	if next.Stroke != nil {
		p.Stroke = mergeStrokePatch(p.Stroke, next.Stroke)
	}
	if next.Shadow != nil {
		p.Shadow = mergeShadowPatch(p.Shadow, next.Shadow)
	}
	if next.MaxLines != nil {
		p.MaxLines = intPtr(*next.MaxLines)
	}
	return p
}

// The merge helpers copy the pointed-to values rather than the pointers:
// the coalesced payload sits in the scheduler until the timer fires and
// must not change when a caller reuses or mutates its own patch.

func mergeBoxPatch(old, next *BoxPatch) *BoxPatch {
	merged := &BoxPatch{}
	if old != nil {
		merged.X = copyFloat(old.X)
		merged.Y = copyFloat(old.Y)
		merged.Width = copyFloat(old.Width)
		merged.Height = copyFloat(old.Height)
		merged.Padding = copyFloat(old.Padding)
	}
	if next.X != nil {
		merged.X = floatPtr(*next.X)
	}
	if next.Y != nil {
		merged.Y = floatPtr(*next.Y)
	}
	if next.Width != nil {
		merged.Width = floatPtr(*next.Width)
	}
	if next.Height != nil {
		merged.Height = floatPtr(*next.Height)
	}
	if next.Padding != nil {
		merged.Padding = floatPtr(*next.Padding)
	}
	return merged
}

func mergeStrokePatch(old, next *StrokePatch) *StrokePatch {
	merged := &StrokePatch{}
	if old != nil {
		merged.Enabled = copyBool(old.Enabled)
		merged.Width = copyFloat(old.Width)
		merged.Color = copyString(old.Color)
	}
	if next.Enabled != nil {
		merged.Enabled = boolPtr(*next.Enabled)
	}
	if next.Width != nil {
		merged.Width = floatPtr(*next.Width)
	}
	if next.Color != nil {
		merged.Color = stringPtr(*next.Color)
	}
	return merged
}

func mergeShadowPatch(old, next *ShadowPatch) *ShadowPatch {
	merged := &ShadowPatch{}
	if old != nil {
		merged.Enabled = copyBool(old.Enabled)
		merged.DX = copyFloat(old.DX)
		merged.DY = copyFloat(old.DY)
		merged.Blur = copyFloat(old.Blur)
		merged.Color = copyString(old.Color)
	}
	if next.Enabled != nil {
		merged.Enabled = boolPtr(*next.Enabled)
	}
	if next.DX != nil {
		merged.DX = floatPtr(*next.DX)
	}
	if next.DY != nil {
		merged.DY = floatPtr(*next.DY)
	}
	if next.Blur != nil {
		merged.Blur = floatPtr(*next.Blur)
	}
	if next.Color != nil {
		merged.Color = stringPtr(*next.Color)
	}
	return merged
}

// boxPatch builds a whole-geometry patch, used when the interaction engine
// hands back a complete BoxGeometry for one region.
func boxPatch(region Region, box BoxGeometry) StylePatch {
	p := &BoxPatch{
		X:      floatPtr(box.X),
		Y:      floatPtr(box.Y),
		Width:  floatPtr(box.Width),
		Height: floatPtr(box.Height),
	}
	if region == RegionTitle {
		return StylePatch{TitleBox: p}
	}
	return StylePatch{BodyBox: p}
}

// fullStylePatch converts a complete style into a patch touching every
// field. Used by undo restore and apply-to-all.
func fullStylePatch(s Style) StylePatch {
	return StylePatch{
		FontFamily:  stringPtr(s.FontFamily),
		FontWeight:  intPtr(s.FontWeight),
		TitleSize:   floatPtr(s.TitleSize),
		BodySize:    floatPtr(s.BodySize),
		TextColor:   stringPtr(s.TextColor),
		Alignment:   stringPtr(s.Alignment),
		TitleBox:    boxPatchAll(s.TitleBox),
		BodyBox:     boxPatchAll(s.BodyBox),
		LineSpacing: floatPtr(s.LineSpacing),
		Stroke: &StrokePatch{
			Enabled: boolPtr(s.Stroke.Enabled),
			Width:   floatPtr(s.Stroke.Width),
			Color:   stringPtr(s.Stroke.Color),
		},
		Shadow: &ShadowPatch{
			Enabled: boolPtr(s.Shadow.Enabled),
			DX:      floatPtr(s.Shadow.DX),
			DY:      floatPtr(s.Shadow.DY),
			Blur:    floatPtr(s.Shadow.Blur),
			Color:   stringPtr(s.Shadow.Color),
		},
		MaxLines: intPtr(s.MaxLines),
	}
}

func boxPatchAll(b BoxGeometry) *BoxPatch {
	return &BoxPatch{
		X:       floatPtr(b.X),
		Y:       floatPtr(b.Y),
		Width:   floatPtr(b.Width),
		Height:  floatPtr(b.Height),
		Padding: floatPtr(b.Padding),
	}
}

// mergeConfigDefaults overwrites fields still holding their sentinel value
// with the configured defaults. Fields the user (or a prior apply) already
// customized are left alone. Runs once per slide selection, never mid-edit.
func mergeConfigDefaults(s Style, cfg *Config) Style {
	if cfg == nil {
		return s
	}
	if cfg.DefaultFontFamily != "" && s.FontFamily == sentinelFontFamily {
		s.FontFamily = cfg.DefaultFontFamily
	}
	if cfg.DefaultFontWeight != 0 && s.FontWeight == sentinelFontWeight {
		s.FontWeight = cfg.DefaultFontWeight
	}
	if cfg.DefaultTitleSize != 0 && s.TitleSize == sentinelFontSize {
		s.TitleSize = cfg.DefaultTitleSize
	}
	if cfg.DefaultBodySize != 0 && s.BodySize == sentinelBodySize {
		s.BodySize = cfg.DefaultBodySize
	}
	if cfg.DefaultTextColor != "" && s.TextColor == sentinelTextColor {
		s.TextColor = cfg.DefaultTextColor
	}
	if cfg.DefaultAlignment != "" && s.Alignment == sentinelAlignment {
		s.Alignment = cfg.DefaultAlignment
	}
	return s
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func stringPtr(v string) *string  { return &v }
func boolPtr(v bool) *bool        { return &v }

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return floatPtr(*p)
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	return stringPtr(*p)
}

func copyBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	return boolPtr(*p)
}
