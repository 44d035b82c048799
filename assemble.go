package main

import "strings"

// Draft is the assembled reconciled document: per-section sentences in
// canonical order, the rendered DSS-format text, and the count of
// sentences that made it in.
type Draft struct {
	Sections     map[string][]string `json:"sections"`
	Rendered     string              `json:"rendered"`
	ChangedCount int                 `json:"changed_count"`
}

// AssembleDraft renders the final document from the classified items and
// the current decision state. Per decision:
//
//	accepted correction: the matcher substitution of its context text
//	                     (unmodified context when no strategy matches —
//	                     never a sentence not grounded in original text)
//	accepted issue:      the recommendation text verbatim
//	manual:              the stored edited text (recommendation fallback)
//	rejected:            the original sentence unchanged
//	pending:             excluded entirely
//
// Assembly is a pure function of items+store: re-running it with no
// intervening decision change yields byte-identical output.
func AssembleDraft(items []ReviewItem, store *ReviewStore) Draft {
	sections := make(map[string][]string, len(SectionOrder))
	for _, key := range SectionOrder {
		sections[key] = []string{}
	}

	organized := OrganizeItems(items, store)
	changed := 0
	for _, key := range SectionOrder {
		for _, item := range organized[key].All {
			sentence, ok := renderItem(item, store)
			if !ok {
				continue
			}
			sections[key] = append(sections[key], sentence)
			changed++
		}
	}

	var b strings.Builder
	for _, key := range SectionOrder {
		sentences := sections[key]
		if len(sentences) == 0 {
			continue
		}
		b.WriteString("### " + SectionTitle(key) + "\n")
		for _, sentence := range sentences {
			b.WriteString("## " + sentence + "\n\n")
		}
	}

	return Draft{
		Sections:     sections,
		Rendered:     b.String(),
		ChangedCount: changed,
	}
}

// renderItem produces the emitted sentence for one item, or ok=false
// when the item stays out of the document.
func renderItem(item ReviewItem, store *ReviewStore) (string, bool) {
	switch item.Status {
	case StatusAccepted:
		if item.Kind == KindCorrection && item.Correction != nil {
			c := item.Correction
			sub := AttemptSubstitution(c.DSSContext, c.OriginalValue, c.CorrectedValue)
			return sub.Text, true
		}
		if item.Issue != nil {
			return item.Issue.Recommendation, true
		}
		return "", false
	case StatusManual:
		if item.EditedText != "" {
			return item.EditedText, true
		}
		if text := store.EditedText(item.ID); text != "" {
			return text, true
		}
		// Should not happen: the store refuses manual without text.
		if item.Issue != nil {
			return item.Issue.Recommendation, true
		}
		if item.Correction != nil {
			return item.Correction.DSSContext, true
		}
		return "", false
	case StatusRejected:
		if item.Kind == KindCorrection && item.Correction != nil {
			return item.Correction.DSSContext, true
		}
		if item.Issue != nil {
			return item.Issue.DSSSentence, true
		}
		return "", false
	default:
		return "", false
	}
}

// CorrectionPreview is the before/after pair shown next to a numeric
// correction, with the changed values highlighted for presentation.
type CorrectionPreview struct {
	Before  string `json:"before"`
	After   string `json:"after"`
	Applied bool   `json:"applied"`
}

// PreviewCorrection builds the before/after diff for one correction.
// Highlighting is cosmetic and independently fallible: when a value
// cannot be located for wrapping, the text is shown unmarked, but the
// substitution result is unaffected.
func PreviewCorrection(c Correction) CorrectionPreview {
	sub := AttemptSubstitution(c.DSSContext, c.OriginalValue, c.CorrectedValue)
	return CorrectionPreview{
		Before:  HighlightValue(c.DSSContext, c.OriginalValue),
		After:   HighlightValue(sub.Text, c.CorrectedValue),
		Applied: sub.Applied,
	}
}
