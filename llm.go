package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

type LLMUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// dssSentence is one summary sentence queued for validation, tagged with
// the section it came from.
type dssSentence struct {
	Section string
	Text    string
}

// Raw per-sentence entries as the model returns them. The "sentence"
// field is the 1-based index within the batch it was shown.
type rawCorrection struct {
	Sentence       int    `json:"sentence"`
	Metric         string `json:"metric"`
	Period         string `json:"period"`
	Company        string `json:"company"`
	OriginalValue  string `json:"original_value"`
	CorrectedValue string `json:"corrected_value"`
	Reason         string `json:"reason"`
	SourceContext  string `json:"source_context"`
}

type rawIssue struct {
	Sentence       int    `json:"sentence"`
	Metric         string `json:"metric"`
	Period         string `json:"period"`
	Company        string `json:"company"`
	IssueType      string `json:"issue_type"`
	Severity       string `json:"severity"`
	Description    string `json:"issue"`
	Recommendation string `json:"recommendation"`
	SourceContext  string `json:"source_context"`
}

type rawValidation struct {
	Corrections []rawCorrection `json:"corrections"`
	Issues      []rawIssue      `json:"issues"`
}

// validateFn is the AI-collaborator boundary; tests swap it out.
var validateFn = ValidateDSS

// ValidateDSS compares the DSS summary against the transcript with one
// model call per sentence batch and returns the merged findings payload.
// Sentences the model raises nothing about come back as passed matches,
// so every DSS sentence is accounted for in the result.
func ValidateDSS(ctx context.Context, cfg Config, transcript, summary string) (Findings, LLMUsage, error) {
	if len(transcript) > cfg.MaxTranscriptChars {
		transcript = transcript[:cfg.MaxTranscriptChars]
	}
	if len(summary) > cfg.MaxSummaryChars {
		summary = summary[:cfg.MaxSummaryChars]
	}

	var sentences []dssSentence
	for _, section := range SplitDSSSections(summary) {
		for _, text := range SplitSentences(section.Text) {
			sentences = append(sentences, dssSentence{Section: section.Key, Text: text})
		}
	}
	if len(sentences) == 0 {
		return Findings{}, LLMUsage{}, nil
	}

	batchSize := cfg.LLMBatchSize
	if batchSize < 1 {
		batchSize = 10
	}
	var batches [][]dssSentence
	for start := 0; start < len(sentences); start += batchSize {
		end := start + batchSize
		if end > len(sentences) {
			end = len(sentences)
		}
		batches = append(batches, sentences[start:end])
	}

	type batchResult struct {
		findings Findings
		usage    LLMUsage
		err      error
	}
	results := make([]batchResult, len(batches))

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(idx int, batch []dssSentence) {
			defer wg.Done()
			systemPrompt, userPrompt := buildValidationPrompts(transcript, batch)

			var responseText string
			var usage LLMUsage
			var callErr error

			switch cfg.LLMProvider {
			case "openai":
				model := cfg.LLMModel
				if model == "" {
					model = defaultOpenAIModel
				}
				log.Printf("llm validate provider=openai model=%s sentences=%d batch=%d", model, len(batch), idx)
				responseText, usage, callErr = callOpenAI(ctx, cfg.OpenAIAPIKey, model, systemPrompt, userPrompt)
			default:
				model := cfg.LLMModel
				if model == "" {
					model = defaultAnthropicModel
				}
				log.Printf("llm validate provider=anthropic model=%s sentences=%d batch=%d", model, len(batch), idx)
				responseText, usage, callErr = callAnthropic(ctx, cfg.AnthropicAPIKey, model, systemPrompt, userPrompt)
			}
			if callErr != nil {
				results[idx] = batchResult{usage: usage, err: callErr}
				return
			}

			parsed, parseErr := parseValidationResponse(responseText)
			if parseErr != nil {
				results[idx] = batchResult{usage: usage, err: parseErr}
				return
			}
			results[idx] = batchResult{findings: resolveBatchFindings(batch, parsed), usage: usage}
		}(i, batch)
	}
	wg.Wait()

	// Merge in batch order so repeated runs over the same input produce
	// findings in the same order.
	var all Findings
	totalUsage := LLMUsage{}
	for _, r := range results {
		totalUsage.Add(r.usage)
		if r.err != nil {
			return Findings{}, totalUsage, r.err
		}
		all.Corrections = append(all.Corrections, r.findings.Corrections...)
		all.Issues = append(all.Issues, r.findings.Issues...)
	}
	return all, totalUsage, nil
}

func buildValidationPrompts(transcript string, batch []dssSentence) (string, string) {
	systemPrompt := `당신은 IR 자료 검수 전문가입니다. DSS 요약 문장들을 어닝콜 원문과 비교하여 검증합니다.

각 문장에 대해 다음 문제가 있는지 확인하세요:
- 수치 오류: 숫자가 원문과 다름 (가장 중요). corrections 항목으로 보고하세요.
- 과장 / 축소 / 확대해석 / 문맥누락 / 조건무시: issues 항목으로 보고하세요.

수정안 작성 원칙:
- recommendation은 원래 문장을 수정한 완전한 문장만 작성하세요. 그대로 DSS에 복사-붙여넣기 가능해야 합니다.
- "삭제하세요", "제거하세요" 같은 지시문은 금지합니다.
- 확실한 근거가 있을 때만 문제로 지적하세요. 문제가 없는 문장은 응답에 포함하지 마세요.

JSON만 반환하세요 (마크다운 없이):
{"corrections": [{"sentence": 1, "metric": "매출액", "period": "2025-Q4", "company": "회사명", "original_value": "5조원", "corrected_value": "3조 4,510억원", "reason": "무엇이 잘못되었는지", "source_context": "어닝콜 원문의 해당 부분"}],
 "issues": [{"sentence": 2, "metric": "영업이익", "period": "2025-Q4", "company": "회사명", "issue_type": "과장", "severity": "High", "issue": "무엇이 잘못되었는지", "recommendation": "수정된 완전한 문장", "source_context": "어닝콜 원문의 해당 부분"}]}`

	var sentenceLines strings.Builder
	for i, s := range batch {
		sentenceLines.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, SectionTitle(s.Section), s.Text))
	}

	userPrompt := "어닝콜 원문:\n<earning_call>\n" + transcript + "\n</earning_call>\n\n" +
		"검증할 DSS 문장:\n" + sentenceLines.String()
	return systemPrompt, userPrompt
}

// deleteKeywords are rejected recommendation phrasings: the reviewer can
// only substitute sentences, never be told to delete one.
var deleteKeywords = []string{"삭제", "제거", "없애", "지우", "빼"}

func hasDeleteKeyword(recommendation string) bool {
	for _, kw := range deleteKeywords {
		if strings.Contains(recommendation, kw) {
			return true
		}
	}
	return false
}

// resolveBatchFindings turns batch-local model output into the findings
// payload: sentence indexes resolve to section and context text, issues
// recommending deletion are dropped, and untouched sentences become
// passed matches.
func resolveBatchFindings(batch []dssSentence, parsed rawValidation) Findings {
	var out Findings
	flagged := make(map[int]bool)

	for _, rc := range parsed.Corrections {
		if rc.Sentence < 1 || rc.Sentence > len(batch) {
			continue
		}
		s := batch[rc.Sentence-1]
		flagged[rc.Sentence] = true
		metric := rc.Metric
		if metric == "" {
			metric = "전반적 내용"
		}
		out.Corrections = append(out.Corrections, Correction{
			Metric:         metric,
			Period:         rc.Period,
			Company:        rc.Company,
			OriginalValue:  rc.OriginalValue,
			CorrectedValue: rc.CorrectedValue,
			DSSContext:     s.Text,
			Reason:         rc.Reason,
			SourceContext:  rc.SourceContext,
			Category:       s.Section,
		})
	}

	for _, ri := range parsed.Issues {
		if ri.Sentence < 1 || ri.Sentence > len(batch) {
			continue
		}
		if hasDeleteKeyword(ri.Recommendation) {
			log.Printf("llm validate filtered delete recommendation metric=%s", ri.Metric)
			continue
		}
		s := batch[ri.Sentence-1]
		flagged[ri.Sentence] = true
		metric := ri.Metric
		if metric == "" {
			metric = "전반적 내용"
		}
		out.Issues = append(out.Issues, Issue{
			Metric:           metric,
			Period:           ri.Period,
			Company:          ri.Company,
			DSSSentence:      s.Text,
			Description:      ri.Description,
			IssueType:        ri.IssueType,
			Severity:         ri.Severity,
			Recommendation:   ri.Recommendation,
			SourceContext:    ri.SourceContext,
			Category:         s.Section,
			ValidationStatus: "issue_found",
		})
	}

	for i, s := range batch {
		if flagged[i+1] {
			continue
		}
		out.Issues = append(out.Issues, Issue{
			Metric:           "일치함",
			DSSSentence:      s.Text,
			Recommendation:   s.Text,
			Severity:         "Low",
			Category:         s.Section,
			ValidationStatus: "passed",
		})
	}
	return out
}

var controlCharRe = regexp.MustCompile(`[\x00-\x08\x0B-\x0C\x0E-\x1F]`)
var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

// parseValidationResponse parses the model's JSON, recovering from the
// usual failure modes: markdown fences, stray control characters,
// trailing commas, and output truncated mid-object.
func parseValidationResponse(responseText string) (rawValidation, error) {
	text := strings.TrimSpace(responseText)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	text = controlCharRe.ReplaceAllString(text, "")

	var parsed rawValidation
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return parsed, nil
	}

	fixed := trailingCommaRe.ReplaceAllString(text, "$1")
	if err := json.Unmarshal([]byte(fixed), &parsed); err == nil {
		log.Printf("llm validate recovered response after trailing-comma fix")
		return parsed, nil
	}

	// Truncated output: cut back to the last complete brace and balance
	// what remains.
	if idx := strings.LastIndexAny(fixed, "}]"); idx > 0 {
		truncated := balanceJSON(fixed[:idx+1])
		if err := json.Unmarshal([]byte(truncated), &parsed); err == nil {
			log.Printf("llm validate recovered truncated response")
			return parsed, nil
		}
	}

	snippet := text
	if len(snippet) > 512 {
		snippet = snippet[:512] + fmt.Sprintf("... [truncated, total_length=%d]", len(text))
	}
	return rawValidation{}, fmt.Errorf("parsing validation response: invalid JSON (truncated response: %s)", snippet)
}

// balanceJSON appends the closing brackets a prefix of valid JSON is
// missing. Quotes inside strings are respected; it gives up unchanged on
// anything already balanced.
func balanceJSON(s string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, c)
			}
		case '}', ']':
			if !inString && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	out := s
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			out += "}"
		} else {
			out += "]"
		}
	}
	return out
}

// --- Anthropic ---

func callAnthropic(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d cache_create=%d cache_read=%d", len(block.Text), usage.InputTokens, usage.OutputTokens, usage.CacheCreationInputTokens, usage.CacheReadInputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}

// --- OpenAI ---

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func callOpenAI(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	reqBody := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", LLMUsage{}, fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		log.Printf("llm openai api error: %s", openAIResp.Error.Message)
		return "", LLMUsage{}, fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return "", LLMUsage{}, fmt.Errorf("no choices in OpenAI response")
	}
	usage := LLMUsage{}
	if openAIResp.Usage != nil {
		usage.InputTokens = openAIResp.Usage.PromptTokens
		usage.OutputTokens = openAIResp.Usage.CompletionTokens
	}

	log.Printf("llm openai response size=%d tokens_in=%d tokens_out=%d", len(openAIResp.Choices[0].Message.Content), usage.InputTokens, usage.OutputTokens)
	return openAIResp.Choices[0].Message.Content, usage, nil
}
