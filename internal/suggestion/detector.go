package suggestion

import (
	"fmt"
	"strings"
)

// Detector identifies the checker that produced a suggestion.
type Detector uint8

const (
	Hunspell Detector = iota + 1
	LanguageTool
	Rules
	Reflow
)

var detectorNames = map[Detector]string{
	Hunspell:     "hunspell",
	LanguageTool: "languagetool",
	Rules:        "rules",
	Reflow:       "reflow",
}

// AllDetectors lists every known detector in dispatch order.
func AllDetectors() []Detector {
	return []Detector{Hunspell, LanguageTool, Rules, Reflow}
}

func (d Detector) String() string {
	if name, ok := detectorNames[d]; ok {
		return name
	}
	return fmt.Sprintf("detector(%d)", uint8(d))
}

// ParseDetector resolves a detector by name, case-insensitively.
func ParseDetector(s string) (Detector, error) {
	for d, name := range detectorNames {
		if strings.EqualFold(s, name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("suggestion: unknown detector %q", s)
}

// MarshalText encodes the detector by name.
func (d Detector) MarshalText() ([]byte, error) {
	if _, ok := detectorNames[d]; !ok {
		return nil, fmt.Errorf("suggestion: unknown detector %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a detector name.
func (d *Detector) UnmarshalText(b []byte) error {
	parsed, err := ParseDetector(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
