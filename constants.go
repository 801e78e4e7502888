package main

import "time"

type Stage int

const (
	StageStartup Stage = iota
	StageDraft
	StageTemplate
	StageImages
	StageTypography
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
	ModeTopicInput
	ModePromptInput
	ModeConfirm
)

type ConfirmAction int

const (
	ConfirmApplyAll ConfirmAction = iota
	ConfirmQuit
	ConfirmDiscardDrafts
)

type Region int

const (
	RegionTitle Region = iota
	RegionBody
)

type Corner int

const (
	CornerTL Corner = iota
	CornerTR
	CornerBL
	CornerBR
)

const (
	minBoxWidth  = 0.1
	minBoxHeight = 0.05

	debounceDelay = time.Second

	nudgeStep = 0.01
)

// Sentinel defaults: a style field still holding one of these is treated
// as "unset" by the config-default merge.
const (
	sentinelFontFamily = "Inter"
	sentinelFontWeight = 700
	sentinelFontSize   = 72.0
	sentinelBodySize   = 40.0
	sentinelTextColor  = "#FFFFFF"
	sentinelAlignment  = "center"
)
