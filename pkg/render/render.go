// Package render computes the final attribute set of an icon.
//
// Attributes are layered, later layers winning, with class values
// concatenated at every step:
//
//	icon attributes < Defaults < PrefixDefaults < suffix rule < caller
//
// Accessibility attributes are settled last. A labelled icon gets
// role="img"; any other icon gets aria-hidden="true". Only attributes passed
// by the caller override that outcome.
package render

import (
	"strings"

	"github.com/go-drift/icons/pkg/icon"
)

// SuffixRule adds attributes to icons whose local name ends in "-" + Suffix.
// A rule with an empty Suffix matches when no other rule of its prefix does.
type SuffixRule struct {
	Suffix     string
	Attributes icon.Attributes
}

// Renderer holds the default attribute layers. The zero value renders with no
// defaults.
type Renderer struct {
	// Defaults apply to every icon.
	Defaults icon.Attributes
	// PrefixDefaults apply to icons resolved under a prefix.
	PrefixDefaults map[string]icon.Attributes
	// Suffixes are checked in order per prefix.
	Suffixes map[string][]SuffixRule
}

// Render returns ic carrying the complete merged attribute set. The result
// replaces the icon's attributes rather than adding to them, so rendering an
// already rendered icon starts again from its attributes as they are now.
func (r *Renderer) Render(ic icon.Icon, prefix string, attrs icon.Attributes, localName string) icon.Icon {
	merged := ic.Attributes()
	if r != nil {
		merged = merged.Merge(r.Defaults)
		if prefix != "" {
			merged = merged.Merge(r.PrefixDefaults[prefix])
		}
		if rule, ok := r.suffix(prefix, localName); ok {
			merged = merged.Merge(rule.Attributes)
		}
	}
	merged = merged.Merge(attrs)
	return ic.ReplaceAttributes(accessible(merged, attrs))
}

func (r *Renderer) suffix(prefix, localName string) (SuffixRule, bool) {
	rules := r.Suffixes[prefix]
	for _, rule := range rules {
		if rule.Suffix != "" && strings.HasSuffix(localName, "-"+rule.Suffix) {
			return rule, true
		}
	}
	for _, rule := range rules {
		if rule.Suffix == "" {
			return rule, true
		}
	}
	return SuffixRule{}, false
}

// accessible settles role and aria-hidden. caller holds the attributes the
// caller passed explicitly.
func accessible(merged, caller icon.Attributes) icon.Attributes {
	if labelled(merged) {
		if !caller.Has("role") {
			merged = merged.With("role", "img")
		}
		if !caller.Has("aria-hidden") {
			merged = merged.Without("aria-hidden")
		}
		return merged
	}
	if !caller.Has("aria-hidden") {
		merged = merged.With("aria-hidden", "true")
	}
	return merged
}

func labelled(attrs icon.Attributes) bool {
	return strings.TrimSpace(attrs.Value("aria-label")) != "" ||
		strings.TrimSpace(attrs.Value("aria-labelledby")) != ""
}
