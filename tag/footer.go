package tag

// Footer carries the identifying strings printed in a page footer. Schematic
// pages frequently omit the higher aspect levels from inline tags and state
// them once in the footer instead; ResolveWithFooter uses this to complete
// such partial tags.
type Footer struct {
	// Project is the project name printed in the footer, if any.
	Project string

	// Product is the product name printed in the footer, if any.
	Product string

	// Tags are the footer's own tag strings, one per stated aspect level
	// (e.g. "=Func", "+Loc").
	Tags []string
}

// IsZero reports whether the footer carries no usable tag information.
func (f Footer) IsZero() bool { return len(f.Tags) == 0 }

// parts extracts one value per separator from the footer tags. Footers state
// at most one value per aspect level; if a footer tag repeats a separator
// only the first value is kept. Document-aspect separators are skipped:
// footer document references do not belong in component tags.
func (f Footer) parts(r *Resolver) map[string]string {
	parts := make(map[string]string)
	for _, raw := range f.Tags {
		parsed, err := r.parse(raw)
		if err != nil {
			continue
		}
		for _, a := range parsed {
			if r.cfg.Aspect(a.Separator) == "Document" {
				continue
			}
			if _, seen := parts[a.Separator]; !seen {
				parts[a.Separator] = a.Value
			}
		}
	}
	return parts
}
