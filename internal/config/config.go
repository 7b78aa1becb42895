package config

const (
	WindowWidth  = 1024
	WindowHeight = 512

	// Audio level tap
	TapRingSize     = 8192
	TapWindow       = 2048
	LevelSmoothing  = 0.6
	PeakFalloff     = 0.5
	ResampleQuality = 4

	// Open button
	ButtonWidth  = 120
	ButtonHeight = 40
	ButtonX      = 20
	ButtonY      = 50

	// Knob board
	KnobSize   = 160
	KnobGap    = 80
	KnobFirstX = 92
	KnobRowY   = 180
	CaptionGap = 14

	// Color animation of the level meter
	LevelHueSpan = 120
)
