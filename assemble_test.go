package main

import (
	"strings"
	"testing"
)

func reviewFixture() ([]ReviewItem, *ReviewStore) {
	items := []ReviewItem{
		{
			ID: "correction-0", Kind: KindCorrection, Section: SectionResults,
			Correction: &Correction{
				OriginalValue:  "1,234억원",
				CorrectedValue: "2,345억원",
				DSSContext:     "매출은 1,234억원을 기록했다",
			},
		},
		{
			ID: "issue-0", Kind: KindIssue, Section: SectionResults,
			Issue: &Issue{
				DSSSentence:    "영업이익은 개선되었다",
				Recommendation: "영업이익은 소폭 개선되었다",
			},
		},
		{
			ID: "issue-1", Kind: KindIssue, Section: SectionGuidance,
			Issue: &Issue{
				DSSSentence:    "내년 매출은 두 배가 될 것이다",
				Recommendation: "내년 매출 성장을 목표한다",
			},
		},
		{
			ID: "issue-2", Kind: KindIssue, Section: SectionQA,
			Issue: &Issue{DSSSentence: "질문에 답변하지 않았다"},
		},
	}
	return items, NewReviewStore()
}

func TestAssembleDraftDecisionMapping(t *testing.T) {
	items, store := reviewFixture()
	if err := store.SetDecision("correction-0", StatusAccepted, ""); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if err := store.SetDecision("issue-0", StatusRejected, ""); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if err := store.SetDecision("issue-1", StatusManual, "수정된 문장입니다"); err != nil {
		t.Fatalf("manual failed: %v", err)
	}
	// issue-2 stays pending and must be excluded.

	draft := AssembleDraft(items, store)

	results := draft.Sections[SectionResults]
	if len(results) != 2 {
		t.Fatalf("expected 2 results sentences, got %d: %v", len(results), results)
	}
	if results[0] != "매출은 2,345억원을 기록했다" {
		t.Fatalf("accepted correction not substituted: %q", results[0])
	}
	if results[1] != "영업이익은 개선되었다" {
		t.Fatalf("rejected issue must keep the original sentence: %q", results[1])
	}

	guidance := draft.Sections[SectionGuidance]
	if len(guidance) != 1 || guidance[0] != "수정된 문장입니다" {
		t.Fatalf("manual item must use edited text: %v", guidance)
	}

	if len(draft.Sections[SectionQA]) != 0 {
		t.Fatalf("pending item must be excluded: %v", draft.Sections[SectionQA])
	}
	if draft.ChangedCount != 3 {
		t.Fatalf("expected 3 emitted sentences, got %d", draft.ChangedCount)
	}
}

func TestAssembleDraftRenderedFormat(t *testing.T) {
	items, store := reviewFixture()
	_ = store.SetDecision("correction-0", StatusAccepted, "")
	_ = store.SetDecision("issue-1", StatusManual, "수정된 문장입니다")

	draft := AssembleDraft(items, store)

	want := "### 실적발표\n" +
		"## 매출은 2,345억원을 기록했다\n\n" +
		"### 가이던스\n" +
		"## 수정된 문장입니다\n\n"
	if draft.Rendered != want {
		t.Fatalf("rendered mismatch:\ngot:  %q\nwant: %q", draft.Rendered, want)
	}
	// Sections with no emitted sentences must not appear at all.
	if strings.Contains(draft.Rendered, "Q&A") {
		t.Fatal("empty section header leaked into the document")
	}
}

func TestAssembleDraftAcceptedIssueUsesRecommendation(t *testing.T) {
	items, store := reviewFixture()
	_ = store.SetDecision("issue-0", StatusAccepted, "")

	draft := AssembleDraft(items, store)
	results := draft.Sections[SectionResults]
	if len(results) != 1 || results[0] != "영업이익은 소폭 개선되었다" {
		t.Fatalf("accepted issue must emit its recommendation: %v", results)
	}
}

func TestAssembleDraftIdempotent(t *testing.T) {
	items, store := reviewFixture()
	_ = store.SetDecision("correction-0", StatusAccepted, "")
	_ = store.SetDecision("issue-0", StatusRejected, "")
	_ = store.SetDecision("issue-1", StatusManual, "수정된 문장입니다")

	first := AssembleDraft(items, store)
	second := AssembleDraft(items, store)
	if first.Rendered != second.Rendered {
		t.Fatalf("assembly not idempotent:\nfirst:  %q\nsecond: %q", first.Rendered, second.Rendered)
	}
	if first.ChangedCount != second.ChangedCount {
		t.Fatalf("changed count drifted: %d vs %d", first.ChangedCount, second.ChangedCount)
	}
}

func TestAssembleDraftAllPendingIsEmpty(t *testing.T) {
	items, store := reviewFixture()
	draft := AssembleDraft(items, store)
	if draft.Rendered != "" {
		t.Fatalf("all-pending run must render empty, got %q", draft.Rendered)
	}
	if draft.ChangedCount != 0 {
		t.Fatalf("expected 0 sentences, got %d", draft.ChangedCount)
	}
}

func TestAssembleDraftUnappliedSubstitutionKeepsContext(t *testing.T) {
	items := []ReviewItem{
		{
			ID: "correction-0", Kind: KindCorrection, Section: SectionResults,
			Correction: &Correction{
				OriginalValue:  "9,999억원",
				CorrectedValue: "1억원",
				DSSContext:     "영업이익은 개선되었다",
			},
		},
	}
	store := NewReviewStore()
	_ = store.SetDecision("correction-0", StatusAccepted, "")

	draft := AssembleDraft(items, store)
	results := draft.Sections[SectionResults]
	// The value is not in the sentence: the original context is emitted
	// rather than any invented text.
	if len(results) != 1 || results[0] != "영업이익은 개선되었다" {
		t.Fatalf("unexpected emitted text: %v", results)
	}
}

func TestPreviewCorrection(t *testing.T) {
	p := PreviewCorrection(Correction{
		OriginalValue:  "1,234억원",
		CorrectedValue: "2,345억원",
		DSSContext:     "매출은 1,234억원을 기록했다",
	})
	if !p.Applied {
		t.Fatal("expected preview to report an applied substitution")
	}
	if !strings.Contains(p.Before, "**1,234억원**") {
		t.Fatalf("before not highlighted: %q", p.Before)
	}
	if !strings.Contains(p.After, "**2,345억원**") {
		t.Fatalf("after not highlighted: %q", p.After)
	}
}
