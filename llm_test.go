package main

import (
	"strings"
	"testing"
)

func TestParseValidationResponseClean(t *testing.T) {
	parsed, err := parseValidationResponse(`{"corrections": [{"sentence": 1, "metric": "매출액"}], "issues": []}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(parsed.Corrections) != 1 || parsed.Corrections[0].Metric != "매출액" {
		t.Fatalf("unexpected result: %+v", parsed)
	}
}

func TestParseValidationResponseFenced(t *testing.T) {
	parsed, err := parseValidationResponse("```json\n{\"corrections\": [], \"issues\": [{\"sentence\": 2, \"severity\": \"High\"}]}\n```")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(parsed.Issues) != 1 || parsed.Issues[0].Severity != "High" {
		t.Fatalf("unexpected result: %+v", parsed)
	}
}

func TestParseValidationResponseTrailingCommas(t *testing.T) {
	parsed, err := parseValidationResponse(`{"corrections": [{"sentence": 1,},], "issues": [],}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(parsed.Corrections) != 1 {
		t.Fatalf("unexpected result: %+v", parsed)
	}
}

func TestParseValidationResponseTruncated(t *testing.T) {
	// Output cut off mid-object: recovery keeps the complete entries.
	truncated := `{"corrections": [{"sentence": 1, "metric": "매출액"}, {"sentence": 2, "met`
	parsed, err := parseValidationResponse(truncated)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(parsed.Corrections) != 1 || parsed.Corrections[0].Metric != "매출액" {
		t.Fatalf("unexpected result: %+v", parsed)
	}
}

func TestParseValidationResponseGarbage(t *testing.T) {
	if _, err := parseValidationResponse("죄송합니다, JSON을 생성할 수 없습니다"); err == nil {
		t.Fatal("expected an error for non-JSON output")
	}
}

func TestBalanceJSON(t *testing.T) {
	got := balanceJSON(`{"a": [{"b": 1}`)
	if got != `{"a": [{"b": 1}]}` {
		t.Fatalf("unexpected balance: %q", got)
	}
	// Braces inside strings must not count.
	got = balanceJSON(`{"a": "}{"`)
	if got != `{"a": "}{"}` {
		t.Fatalf("unexpected balance: %q", got)
	}
}

func TestHasDeleteKeyword(t *testing.T) {
	for _, rec := range []string{
		"이 문장을 삭제하세요",
		"해당 내용을 제거해야 합니다",
		"이 부분을 빼는 것이 좋습니다",
	} {
		if !hasDeleteKeyword(rec) {
			t.Fatalf("expected delete keyword in %q", rec)
		}
	}
	if hasDeleteKeyword("매출은 2,345억원을 기록했다") {
		t.Fatal("substitution sentence flagged as delete")
	}
}

func TestResolveBatchFindings(t *testing.T) {
	batch := []dssSentence{
		{Section: SectionResults, Text: "매출은 1,234억원을 기록했다."},
		{Section: SectionGuidance, Text: "내년 매출은 두 배가 될 것이다."},
		{Section: SectionQA, Text: "배당 정책은 유지된다."},
	}
	parsed := rawValidation{
		Corrections: []rawCorrection{
			{Sentence: 1, Metric: "매출액", OriginalValue: "1,234억원", CorrectedValue: "2,345억원"},
		},
		Issues: []rawIssue{
			{Sentence: 2, IssueType: "과장", Severity: "High", Recommendation: "내년 매출 성장을 목표한다."},
		},
	}

	out := resolveBatchFindings(batch, parsed)

	if len(out.Corrections) != 1 {
		t.Fatalf("expected 1 correction, got %d", len(out.Corrections))
	}
	c := out.Corrections[0]
	if c.DSSContext != batch[0].Text || c.Category != SectionResults {
		t.Fatalf("correction not resolved to its sentence: %+v", c)
	}

	// One flagged issue plus one passed match for the untouched sentence.
	if len(out.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %+v", len(out.Issues), out.Issues)
	}
	if out.Issues[0].Passed() || out.Issues[0].DSSSentence != batch[1].Text {
		t.Fatalf("unexpected flagged issue: %+v", out.Issues[0])
	}
	if !out.Issues[1].Passed() || out.Issues[1].DSSSentence != batch[2].Text {
		t.Fatalf("untouched sentence must come back passed: %+v", out.Issues[1])
	}
}

func TestResolveBatchFindingsFiltersDeleteRecommendations(t *testing.T) {
	batch := []dssSentence{{Section: SectionResults, Text: "매출이 급증했다."}}
	parsed := rawValidation{
		Issues: []rawIssue{
			{Sentence: 1, Severity: "High", Recommendation: "이 문장을 삭제하세요"},
		},
	}

	out := resolveBatchFindings(batch, parsed)
	for _, is := range out.Issues {
		if strings.Contains(is.Recommendation, "삭제") {
			t.Fatalf("delete recommendation survived: %+v", is)
		}
	}
}

func TestResolveBatchFindingsIgnoresOutOfRangeIndexes(t *testing.T) {
	batch := []dssSentence{{Section: SectionResults, Text: "매출이 늘었다."}}
	parsed := rawValidation{
		Corrections: []rawCorrection{{Sentence: 0}, {Sentence: 5}},
	}

	out := resolveBatchFindings(batch, parsed)
	if len(out.Corrections) != 0 {
		t.Fatalf("out-of-range corrections must be dropped: %+v", out.Corrections)
	}
}

func TestResolveBatchFindingsDefaultsMetric(t *testing.T) {
	batch := []dssSentence{{Section: SectionResults, Text: "매출이 늘었다."}}
	parsed := rawValidation{
		Issues: []rawIssue{{Sentence: 1, Severity: "Minor", Recommendation: "매출이 소폭 늘었다."}},
	}

	out := resolveBatchFindings(batch, parsed)
	if out.Issues[0].Metric != "전반적 내용" {
		t.Fatalf("empty metric must default, got %q", out.Issues[0].Metric)
	}
}

func TestBuildValidationPrompts(t *testing.T) {
	batch := []dssSentence{
		{Section: SectionResults, Text: "매출은 1,234억원을 기록했다."},
		{Section: SectionGuidance, Text: "내년 성장을 목표한다."},
	}
	system, user := buildValidationPrompts("어닝콜 원문 내용", batch)

	if !strings.Contains(system, "JSON") {
		t.Fatal("system prompt must demand JSON output")
	}
	if !strings.Contains(user, "1. [실적발표] 매출은 1,234억원을 기록했다.") {
		t.Fatalf("sentence 1 missing from prompt:\n%s", user)
	}
	if !strings.Contains(user, "2. [가이던스] 내년 성장을 목표한다.") {
		t.Fatalf("sentence 2 missing from prompt:\n%s", user)
	}
	if !strings.Contains(user, "어닝콜 원문 내용") {
		t.Fatal("transcript missing from prompt")
	}
}

func TestLLMUsageAdd(t *testing.T) {
	u := LLMUsage{InputTokens: 100, OutputTokens: 50}
	u.Add(LLMUsage{InputTokens: 10, OutputTokens: 5, CacheReadInputTokens: 80})
	if u.InputTokens != 110 || u.OutputTokens != 55 || u.CacheReadInputTokens != 80 {
		t.Fatalf("unexpected usage: %+v", u)
	}
	if u.TotalTokens() != 165 {
		t.Fatalf("unexpected total: %d", u.TotalTokens())
	}
}
