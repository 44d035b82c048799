package main

import (
	"fmt"
	"strings"
)

// sectionForCategory maps the free-text category on a raw finding to one
// of the fixed section keys. The model answers in Korean or English
// depending on the prompt language, so both spellings are accepted.
// Unrecognized or absent categories land in the results section rather
// than being dropped; the original product defaults uncategorized
// findings there.
func sectionForCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "results", "실적", "실적발표", "성과", "결과":
		return SectionResults
	case "guidance", "가이던스", "전망", "계획", "목표":
		return SectionGuidance
	case "qa", "q&a", "q & a", "질의응답", "질의", "질문":
		return SectionQA
	default:
		return SectionResults
	}
}

// ClassifyFindings normalizes a raw findings payload into review items.
// Every correction and every issue (passed matches included) becomes
// exactly one item; malformed fields degrade to empty strings and never
// abort the batch. Item IDs are positional within each raw list, so
// classifying the same payload twice yields identical IDs in the same
// order.
func ClassifyFindings(raw Findings) []ReviewItem {
	items := make([]ReviewItem, 0, len(raw.Corrections)+len(raw.Issues))
	for i := range raw.Corrections {
		c := raw.Corrections[i]
		items = append(items, ReviewItem{
			ID:         fmt.Sprintf("correction-%d", i),
			Kind:       KindCorrection,
			Section:    sectionForCategory(c.Category),
			Correction: &c,
			Status:     StatusPending,
		})
	}
	for i := range raw.Issues {
		is := raw.Issues[i]
		items = append(items, ReviewItem{
			ID:      fmt.Sprintf("issue-%d", i),
			Kind:    KindIssue,
			Section: sectionForCategory(is.Category),
			Issue:   &is,
			Status:  StatusPending,
		})
	}
	return items
}

// ComputeAssessment derives the run-level quality summary from a
// findings payload: an accuracy score penalized by severity, a
// faithfulness rating, and a one-line Korean summary.
func ComputeAssessment(raw Findings) Assessment {
	critical, high, minor := 0, 0, 0
	for _, is := range raw.Issues {
		if is.Passed() {
			continue
		}
		switch strings.ToLower(is.Severity) {
		case "critical":
			critical++
		case "high":
			high++
		default:
			minor++
		}
	}
	// Numeric mismatches count as high-severity problems.
	high += len(raw.Corrections)
	total := critical + high + minor

	score := 100 - (critical*20 + high*10 + minor*3)
	if score < 0 {
		score = 0
	}

	var faithfulness, summary string
	switch {
	case total == 0:
		faithfulness = "good"
		summary = "DSS가 어닝콜 내용을 정확하게 반영했습니다."
	case critical > 0 || high > 3:
		faithfulness = "poor"
		summary = fmt.Sprintf("심각한 문제 %d건, 주요 문제 %d건 발견. 수정 필요.", critical, high)
	case high > 0:
		faithfulness = "fair"
		summary = fmt.Sprintf("주요 문제 %d건 발견. 일부 수정 권장.", high)
	default:
		faithfulness = "good"
		summary = fmt.Sprintf("경미한 문제 %d건만 발견. 전반적으로 양호.", total)
	}

	return Assessment{
		AccuracyScore:   score,
		Faithfulness:    faithfulness,
		MajorIssueCount: critical + high,
		Summary:         summary,
	}
}
