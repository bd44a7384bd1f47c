package config

// Settings is the persisted "last applied" state. The device forgets
// NoStore colors on power cycle, so the CLI re-applies these on request.
type Settings struct {
	Version int `yaml:"version"`

	// SameColor means the wheel follows the logo color. When set, the
	// WheelColor field is ignored on load.
	SameColor bool `yaml:"same_color"`

	// Colors as hex strings ("#RRGGBB"). Strings rather than packed ints so
	// the file is hand-editable.
	LogoColor  string `yaml:"logo_color"`
	WheelColor string `yaml:"wheel_color"`
}

// defaultColor matches the factory-ish grey the original tool shipped with.
const defaultColor = "#AAAAAA"

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:    1,
		SameColor:  true,
		LogoColor:  defaultColor,
		WheelColor: defaultColor,
	}
}
