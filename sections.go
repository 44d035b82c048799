package main

import (
	"regexp"
	"strings"
)

// maxHeaderLen distinguishes real markdown section headers from content
// lines that merely start with "##": headers are short.
const maxHeaderLen = 100

var (
	resultsKeywords  = []string{"실적", "실적발표", "성과", "결과"}
	guidanceKeywords = []string{"가이던스", "전망", "계획", "목표", "가이드"}
	qaKeywords       = []string{"q&a", "q & a", "질의", "응답", "질문"}
)

// DSSSection is one named slice of the summary document.
type DSSSection struct {
	Key  string
	Text string
}

// SplitDSSSections partitions the DSS text into the three fixed sections
// using "###"/"##" markdown headers. Lines before any header, and text
// whose headers match no known keyword set, accumulate under results
// (the document's default opening section). When the text has no headers
// at all, section boundaries are inferred from keywords in the content
// lines instead. Sections come back in canonical order; empty sections
// are omitted.
func SplitDSSSections(text string) []DSSSection {
	buckets := map[string]*strings.Builder{
		SectionResults:  {},
		SectionGuidance: {},
		SectionQA:       {},
	}

	lines := strings.Split(text, "\n")
	current := SectionResults
	foundHeader := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isSectionHeader(trimmed) {
			if key, ok := sectionForHeader(trimmed); ok {
				foundHeader = true
				current = key
				continue
			}
		}
		if trimmed == "" {
			continue
		}
		buckets[current].WriteString(line + "\n")
	}

	if !foundHeader {
		for _, b := range buckets {
			b.Reset()
		}
		current = SectionResults
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if key, ok := sectionForContentLine(trimmed); ok {
				current = key
			}
			buckets[current].WriteString(line + "\n")
		}
	}

	var out []DSSSection
	for _, key := range SectionOrder {
		text := strings.TrimSpace(buckets[key].String())
		if text != "" {
			out = append(out, DSSSection{Key: key, Text: text})
		}
	}
	return out
}

// isSectionHeader spots "###"/"##" header lines. Sentence lines carry a
// "## " marker too, but end with a period; headers do not.
func isSectionHeader(trimmed string) bool {
	if !strings.HasPrefix(trimmed, "##") || len(trimmed) >= maxHeaderLen {
		return false
	}
	return !strings.HasSuffix(trimmed, ".")
}

// sectionForHeader resolves a header line to a section key. Q&A and
// guidance keywords win over results keywords so that headers like
// "실적 전망" land in guidance.
func sectionForHeader(line string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(strings.Trim(line, "# ")))
	if containsAny(lower, qaKeywords) {
		return SectionQA, true
	}
	if containsAny(lower, guidanceKeywords) {
		return SectionGuidance, true
	}
	if containsAny(lower, resultsKeywords) {
		return SectionResults, true
	}
	return "", false
}

// sectionForContentLine is the headerless fallback: a content line that
// mentions a section keyword switches the current section.
func sectionForContentLine(line string) (string, bool) {
	lower := strings.ToLower(line)
	if containsAny(lower, qaKeywords) {
		return SectionQA, true
	}
	if containsAny(lower, guidanceKeywords) {
		return SectionGuidance, true
	}
	if containsAny(lower, []string{"실적", "성과", "결과", "매출", "영업이익"}) {
		return SectionResults, true
	}
	return "", false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// sentenceSplitRe splits on a period that does not follow a digit, so
// "1.5조원" stays intact while "기록했다. 영업이익은" splits.
var sentenceSplitRe = regexp.MustCompile(`([^0-9])\.(\s+|$)`)

// SplitSentences breaks section text into individual DSS sentences.
// Lines keep their own boundaries; a leading "##" sentence marker is
// stripped; every returned sentence ends with a period.
func SplitSentences(text string) []string {
	var sentences []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "##") {
			line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		}
		// Mark split points, then cut: Go's regexp has no lookbehind.
		marked := sentenceSplitRe.ReplaceAllString(line, "$1.\x00")
		for _, part := range strings.Split(marked, "\x00") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if !strings.HasSuffix(part, ".") {
				part += "."
			}
			sentences = append(sentences, part)
		}
	}
	return sentences
}
