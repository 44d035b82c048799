package main

import "testing"

func TestSplitDSSSectionsHeaders(t *testing.T) {
	text := "### 실적발표\n" +
		"## 매출은 1,234억원을 기록했다.\n" +
		"### 가이던스\n" +
		"## 내년 성장을 목표한다.\n" +
		"### Q&A\n" +
		"## 배당 관련 질문이 있었다.\n"

	sections := SplitDSSSections(text)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(sections), sections)
	}
	if sections[0].Key != SectionResults || sections[1].Key != SectionGuidance || sections[2].Key != SectionQA {
		t.Fatalf("unexpected section order: %s %s %s", sections[0].Key, sections[1].Key, sections[2].Key)
	}
}

func TestSplitDSSSectionsCanonicalOrder(t *testing.T) {
	// Source order is Q&A first; output order must still be canonical.
	text := "### Q&A\n질문이 있었다.\n### 실적발표\n매출이 늘었다.\n"
	sections := SplitDSSSections(text)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Key != SectionResults || sections[1].Key != SectionQA {
		t.Fatalf("sections not in canonical order: %s %s", sections[0].Key, sections[1].Key)
	}
}

func TestSplitDSSSectionsGuidanceBeatsResults(t *testing.T) {
	// "실적 전망" contains a results keyword but is a guidance header.
	sections := SplitDSSSections("### 실적 전망\n내년 매출 성장을 예상한다.\n")
	if len(sections) != 1 || sections[0].Key != SectionGuidance {
		t.Fatalf("expected guidance, got %+v", sections)
	}
}

func TestSplitDSSSectionsNoHeaders(t *testing.T) {
	text := "매출은 1,234억원을 기록했다.\n내년 가이던스는 상향 조정되었다.\nQ&A에서 배당 질문이 나왔다.\n"
	sections := SplitDSSSections(text)
	if len(sections) != 3 {
		t.Fatalf("expected keyword fallback to find 3 sections, got %d: %+v", len(sections), sections)
	}
}

func TestSplitDSSSectionsDefaultsToResults(t *testing.T) {
	sections := SplitDSSSections("회사 개요에 대한 설명이다.\n")
	if len(sections) != 1 || sections[0].Key != SectionResults {
		t.Fatalf("headerless unmatched text must default to results, got %+v", sections)
	}
}

func TestSplitDSSSectionsEmpty(t *testing.T) {
	if sections := SplitDSSSections(""); len(sections) != 0 {
		t.Fatalf("expected no sections, got %+v", sections)
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("매출은 1.5조원을 기록했다. 영업이익은 개선되었다.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
	if got[0] != "매출은 1.5조원을 기록했다." {
		t.Fatalf("decimal split incorrectly: %q", got[0])
	}
	if got[1] != "영업이익은 개선되었다." {
		t.Fatalf("unexpected second sentence: %q", got[1])
	}
}

func TestSplitSentencesStripsMarkers(t *testing.T) {
	got := SplitSentences("## 매출은 1,234억원을 기록했다.")
	if len(got) != 1 || got[0] != "매출은 1,234억원을 기록했다." {
		t.Fatalf("marker not stripped: %v", got)
	}
}

func TestSplitSentencesAppendsPeriod(t *testing.T) {
	got := SplitSentences("영업이익은 개선되었다")
	if len(got) != 1 || got[0] != "영업이익은 개선되었다." {
		t.Fatalf("trailing period not appended: %v", got)
	}
}

func TestSplitSentencesLineBoundaries(t *testing.T) {
	got := SplitSentences("첫 번째 문장이다.\n두 번째 문장이다.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
}
