package main

// SectionView is the per-section grouping handed to the presentation
// layer: corrections and issues separately plus a combined ordered list.
type SectionView struct {
	Corrections []ReviewItem `json:"corrections"`
	Issues      []ReviewItem `json:"issues"`
	All         []ReviewItem `json:"all"`
}

// OrganizeItems partitions classified items into the fixed sections and
// merges the live decision state into each item. Ordering inside a
// section is corrections first, then issues, each in classification
// order, so repeated calls with an unchanged store render identically.
// Every section key is always present; empty sections hold empty lists.
func OrganizeItems(items []ReviewItem, store *ReviewStore) map[string]SectionView {
	sections := make(map[string]SectionView, len(SectionOrder))
	for _, key := range SectionOrder {
		sections[key] = SectionView{
			Corrections: []ReviewItem{},
			Issues:      []ReviewItem{},
		}
	}

	for _, item := range items {
		d := store.GetDecision(item.ID)
		item.Status = d.Status
		item.EditedText = d.EditedText

		key := item.Section
		if _, ok := sections[key]; !ok {
			// Classifier guarantees a known section, but an item must
			// never be lost even if that guarantee breaks.
			key = SectionResults
			item.Section = key
		}
		view := sections[key]
		if item.Kind == KindCorrection {
			view.Corrections = append(view.Corrections, item)
		} else {
			view.Issues = append(view.Issues, item)
		}
		sections[key] = view
	}

	for key, view := range sections {
		view.All = make([]ReviewItem, 0, len(view.Corrections)+len(view.Issues))
		view.All = append(view.All, view.Corrections...)
		view.All = append(view.All, view.Issues...)
		sections[key] = view
	}
	return sections
}

// Progress summarizes reviewer completion across all items.
type Progress struct {
	Total           int     `json:"total"`
	Accepted        int     `json:"accepted"`
	Rejected        int     `json:"rejected"`
	Manual          int     `json:"manual"`
	Pending         int     `json:"pending"`
	PercentComplete float64 `json:"percent_complete"`
}

// ProgressSummary counts decisions across all items. Percent complete is
// (accepted+rejected+manual)/total; an empty run counts as 100%.
func ProgressSummary(items []ReviewItem, store *ReviewStore) Progress {
	counts := store.Counts(items)
	p := Progress{
		Total:    len(items),
		Accepted: counts[StatusAccepted],
		Rejected: counts[StatusRejected],
		Manual:   counts[StatusManual],
		Pending:  counts[StatusPending],
	}
	if p.Total == 0 {
		p.PercentComplete = 100
		return p
	}
	decided := p.Accepted + p.Rejected + p.Manual
	p.PercentComplete = float64(decided) / float64(p.Total) * 100
	return p
}
