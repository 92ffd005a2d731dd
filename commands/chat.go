package commands

import (
	"context"
	"errors"

	"github.com/leoassist/leo/chat"
)

type ChatSendResponse struct {
	Reply   chat.Message `json:"reply"`
	Typing  bool         `json:"typing"`
	Failed  bool         `json:"failed,omitempty"`
	Message string       `json:"error,omitempty"`
}

// ChatSendCommand sends one message. A failed completion still succeeds
// at the command level: the fallback reply is part of the conversation.
func ChatSendCommand(ctx context.Context, text string) *CommandResponse {
	rt, err := requireRuntime()
	if err != nil {
		return NewErrorResponse(err)
	}

	reply, err := rt.Chat.Send(ctx, text)
	if errors.Is(err, chat.ErrEmptyMessage) {
		return NewErrorResponse(err)
	}

	resp := ChatSendResponse{Reply: reply, Typing: rt.Chat.Typing()}
	if err != nil {
		resp.Failed = true
		resp.Message = err.Error()
	}
	return NewSuccessResponse(resp)
}

func ChatHistoryCommand() *CommandResponse {
	rt, err := requireRuntime()
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(rt.Chat.History())
}

func ChatClearCommand() *CommandResponse {
	rt, err := requireRuntime()
	if err != nil {
		return NewErrorResponse(err)
	}
	rt.Chat.Clear()
	return NewSuccessResponse(rt.Chat.History())
}
