package tmplsimp

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Settings is the configuration collaborator from spec.md §6. It is
// intentionally tiny: the simplifier has exactly one behavioral knob
// (debug warnings) plus the recursion guard from §4.6, which is
// implementation-defined at 100 but left overridable for tests that want
// to exercise the abort path without constructing a hundred nested
// instantiations.
type Settings struct {
	DebugWarnings         bool `yaml:"debugwarnings"`
	MaxExpansionRecursion int  `yaml:"maxExpansionRecursion"`
}

// DefaultSettings matches the original core's behavior: no debug
// chatter, and the 100-iteration cap from §4.6.
func DefaultSettings() Settings {
	return Settings{DebugWarnings: false, MaxExpansionRecursion: 100}
}

// LoadSettings reads a YAML settings file (the --template-config flag in
// cmd/ralph-cc) and overlays it onto DefaultSettings. A missing or empty
// field in the file keeps the default.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	overlay := struct {
		DebugWarnings         *bool `yaml:"debugwarnings"`
		MaxExpansionRecursion *int  `yaml:"maxExpansionRecursion"`
	}{}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return s, err
	}
	if overlay.DebugWarnings != nil {
		s.DebugWarnings = *overlay.DebugWarnings
	}
	if overlay.MaxExpansionRecursion != nil {
		s.MaxExpansionRecursion = *overlay.MaxExpansionRecursion
	}
	return s, nil
}
