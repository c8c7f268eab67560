package settings

import (
	"fmt"
	"regexp"
	"strings"
)

var attributeNameExpr = regexp.MustCompile(`^[a-zA-Z0-9_ -]+$`)

// LabelOverride maps one attribute code to a merchant-chosen label.
type LabelOverride struct {
	Attribute string
	Label     string
}

// LabelOverrides keeps the merchant's override lines in their original
// order so serialization round-trips exactly.
type LabelOverrides []LabelOverride

// Lookup returns the override label for an attribute code, if any.
func (o LabelOverrides) Lookup(attribute string) (string, bool) {
	for _, override := range o {
		if override.Attribute == attribute {
			return override.Label, true
		}
	}
	return "", false
}

// Serialize renders the canonical newline-delimited attribute|label form.
func (o LabelOverrides) Serialize() string {
	lines := make([]string, 0, len(o))
	for _, override := range o {
		lines = append(lines, override.Attribute+"|"+override.Label)
	}
	return strings.Join(lines, "\n")
}

// ParseLabelOverrides validates newline-delimited "attribute|label"
// text. Empty lines are skipped; any malformed line fails the whole
// parse so a bad configuration write is rejected as a unit.
func ParseLabelOverrides(text string) (LabelOverrides, error) {
	var overrides LabelOverrides
	seen := map[string]struct{}{}

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid format on line %d: use \"attribute_name|custom_label\"", i+1)
		}

		attribute := strings.TrimSpace(parts[0])
		label := strings.TrimSpace(parts[1])

		if !attributeNameExpr.MatchString(attribute) {
			return nil, fmt.Errorf("invalid attribute name %q on line %d: use only letters, numbers, underscores, hyphens, and spaces", attribute, i+1)
		}
		if label == "" {
			return nil, fmt.Errorf("custom label cannot be empty on line %d", i+1)
		}

		if _, dup := seen[attribute]; dup {
			return nil, fmt.Errorf("duplicate attribute %q on line %d", attribute, i+1)
		}
		seen[attribute] = struct{}{}

		overrides = append(overrides, LabelOverride{Attribute: attribute, Label: label})
	}

	return overrides, nil
}
