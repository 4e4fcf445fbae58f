package services

import (
	"fmt"
	"strings"

	"debatebot/models"
)

// debateBotSystemInstructions is the fixed persona contract sent with every
// generation request.
const debateBotSystemInstructions = "You are DebateBot, an AI debate partner. Your tone is formal, respectful, and professional. " +
	"All responses must be a SINGLE paragraph of 120–180 words. Include 2–4 supporting points as inline " +
	"numbered or bulleted fragments within the same paragraph (e.g., '1) ...; 2) ...'). " +
	"Use broad, general knowledge to support claims without URLs or citations. Acknowledge strong " +
	"counterpoints when appropriate. Avoid logical fallacies. If the user explicitly instructs you to switch sides, " +
	"do so immediately and continue arguing from the new side thereafter."

const (
	historyLineUser = "User: %s"
	historyLineBot  = "DebateBot: %s"
)

// RenderHistory converts a debate history into a newline-joined transcript,
// one line per message, preserving order.
func RenderHistory(history []models.Message) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		if msg.Role == models.RoleUser {
			lines = append(lines, fmt.Sprintf(historyLineUser, msg.Text))
		} else {
			lines = append(lines, fmt.Sprintf(historyLineBot, msg.Text))
		}
	}
	return strings.Join(lines, "\n")
}

// RenderOpeningPrompt builds the prompt for the bot's opening argument.
func RenderOpeningPrompt(topic, botSide string) string {
	return fmt.Sprintf("%s\n"+
		"Topic: %s\n"+
		"DebateBot side: %s.\n"+
		"<DEBATE_HISTORY>\n"+
		"(No prior messages — produce an opening argument.)\n"+
		"User: Please present a concise opening argument for your side following all rules.",
		debateBotSystemInstructions, topic, botSide)
}

// RenderTurnPrompt builds the prompt for a mid-debate reply. botSide is the
// side after any just-applied switch; switchRequested tells the model whether
// the user asked for the switch in this very message.
func RenderTurnPrompt(topic, botSide, historyText, userMessage string, switchRequested bool) string {
	return fmt.Sprintf("%s\n"+
		"Topic: %s\n"+
		"DebateBot side: %s. If SWITCH_REQUESTED is true, switch to the opposite side now.\n"+
		"<DEBATE_HISTORY>\n%s\n"+
		"User: %s\n"+
		"SWITCH_REQUESTED=%t",
		debateBotSystemInstructions, topic, botSide, historyText, userMessage, switchRequested)
}
