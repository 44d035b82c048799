package main

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// NotifyRunComplete posts a validation-run summary to the configured
// Slack channel. Notification failures are logged, never propagated:
// the run result does not depend on Slack.
func NotifyRunComplete(api *slack.Client, channelID string, run ValidationRun, assessment Assessment) {
	if api == nil || channelID == "" {
		return
	}
	msg := fmt.Sprintf(
		"DSS 검증 완료: %s\n• 수치 수정 %d건, 이슈 %d건, 일치 %d건\n• 정확도 점수 %d점 (%s)\n%s",
		run.Company, run.Corrections, run.Issues, run.Passed,
		assessment.AccuracyScore, assessment.Faithfulness, assessment.Summary,
	)
	_, _, err := api.PostMessage(channelID, slack.MsgOptionText(msg, false))
	if err != nil {
		log.Printf("Notify post error channel=%s: %v", channelID, err)
	} else {
		log.Printf("Notified run complete channel=%s session=%s", channelID, run.SessionID)
	}
}

// NotifyDraftExported posts a draft-export notice to the configured
// Slack channel.
func NotifyDraftExported(api *slack.Client, channelID string, export DraftExport) {
	if api == nil || channelID == "" {
		return
	}
	msg := fmt.Sprintf("최종 DSS 초안 생성 완료: %s (%d문장)", export.Filename, export.ChangedCount)
	_, _, err := api.PostMessage(channelID, slack.MsgOptionText(msg, false))
	if err != nil {
		log.Printf("Notify post error channel=%s: %v", channelID, err)
	}
}
