package chat

import (
	"context"
	"fmt"
	"strings"

	"noteflow/api"
)

// LimitReachedMessage is rendered when the conversation budget is used up.
const LimitReachedMessage = "This conversation has reached its message limit. Start a new conversation to keep chatting."

// SendFollowup sends a free-text follow-up message anchored to the current
// session context. Empty messages are ignored; once the budget is used up
// the limit message is rendered without contacting the server.
func (o *Orchestrator) SendFollowup(ctx context.Context, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}

	if o.session.AtLimit() {
		o.thread.AppendAssistant(LimitReachedMessage)
		o.notify("Limit reached", "Start a new conversation to continue", "warning")
		o.onChange()
		return
	}

	o.thread.AppendUser(message, nil)
	o.session.CountMessage()

	req := o.thread.ShowPlaceholder("Thinking...")
	o.onChange()

	kind, recordID, _ := o.session.Record()
	resp, err := o.client.Chat(ctx, api.ChatRequest{
		Message:        message,
		ContextType:    string(kind),
		ContextID:      recordID,
		ConversationID: o.session.ConversationID(),
	})

	o.thread.ResolvePlaceholder(req)
	if err != nil {
		ce := api.Categorize(err)
		o.thread.AppendAssistant(ce.Message + "\n\n" + ce.Advice)
		o.notify(errorTitle(ce.Category), ce.Advice, "error")
		o.onChange()
		return
	}

	o.thread.AppendAssistant(resp.Response)
	o.session.CountMessage()
	o.session.SetConversationID(resp.ConversationID)

	if o.session.ShouldWarn() {
		o.notify("Almost at the limit",
			fmt.Sprintf("%d messages left in this conversation", o.session.Remaining()),
			"warning")
	}
	o.onChange()
}

// NewConversation clears the session so the next follow-up starts fresh.
func (o *Orchestrator) NewConversation() {
	o.session.Reset()
	o.notify("New conversation", "Context cleared", "info")
}
