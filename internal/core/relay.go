package core

import (
	"errors"
	"strings"

	"github.com/vovakirdan/ghostcord/internal/store"
)

// Every durable message is written before anything is delivered; a failed
// write is reported to the sender only.

func (h *Hub) channelMessage(c *Client, identity string, cmd *Command) {
	if cmd.ServerID == "" || cmd.Channel == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "server and channel are required"))
		return
	}
	if strings.TrimSpace(cmd.Text) == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "message text is required"))
		return
	}

	rec := &store.Message{
		ServerID: cmd.ServerID,
		Channel:  cmd.Channel,
		Username: identity,
		Text:     cmd.Text,
	}
	if err := h.store.SaveChannelMessage(h.ctx, rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.fail(c, coreError(ErrCodeNotFound, "channel not found"))
			return
		}
		h.fail(c, h.classify(err))
		return
	}

	// Delivery is not restricted to members; clients filter by server and channel.
	h.broadcast(&Event{Kind: EventChannelMessage, Message: messageFromChannel(rec)})
}

func (h *Hub) globalMessage(c *Client, identity string, cmd *Command) {
	if strings.TrimSpace(cmd.Text) == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "message text is required"))
		return
	}

	rec := &store.GlobalMessage{Username: identity, Text: cmd.Text}
	if err := h.store.SaveGlobalMessage(h.ctx, rec); err != nil {
		h.fail(c, h.classify(err))
		return
	}

	h.broadcast(&Event{Kind: EventGlobalMessage, Message: messageFromGlobal(rec)})
}

func (h *Hub) directMessage(c *Client, identity string, cmd *Command) {
	if cmd.To == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "recipient is required"))
		return
	}
	if strings.TrimSpace(cmd.Text) == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "message text is required"))
		return
	}

	rec := &store.DirectMessage{From: identity, To: cmd.To, Text: cmd.Text}
	if err := h.store.SaveDirectMessage(h.ctx, rec); err != nil {
		h.fail(c, h.classify(err))
		return
	}

	msg := messageFromDirect(rec)
	delivered := h.sendTo(cmd.To, &Event{Kind: EventDirectMessage, Message: msg})
	h.send(c, &Event{Kind: EventDirectMessageSent, Message: msg, Delivered: delivered})
}

func (h *Hub) channelHistory(c *Client, cmd *Command) {
	if cmd.ServerID == "" || cmd.Channel == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "server and channel are required"))
		return
	}

	recs, err := h.store.ListChannelMessages(h.ctx, cmd.ServerID, cmd.Channel, HistoryLimit)
	if err != nil {
		h.fail(c, h.classify(err))
		return
	}

	msgs := make([]Message, 0, len(recs))
	for _, rec := range recs {
		msgs = append(msgs, messageFromChannel(rec))
	}
	h.send(c, &Event{Kind: EventHistory, ServerID: cmd.ServerID, Channel: cmd.Channel, Messages: msgs})
}

func (h *Hub) directHistory(c *Client, identity string, cmd *Command) {
	if cmd.To == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "peer is required"))
		return
	}

	recs, err := h.store.ListDirectMessages(h.ctx, identity, cmd.To, HistoryLimit)
	if err != nil {
		h.fail(c, h.classify(err))
		return
	}

	msgs := make([]Message, 0, len(recs))
	for _, rec := range recs {
		msgs = append(msgs, messageFromDirect(rec))
	}
	h.send(c, &Event{Kind: EventDirectHistory, User: cmd.To, Messages: msgs})
}

func (h *Hub) globalHistory(c *Client) {
	recs, err := h.store.ListGlobalMessages(h.ctx, HistoryLimit)
	if err != nil {
		h.fail(c, h.classify(err))
		return
	}

	msgs := make([]Message, 0, len(recs))
	for _, rec := range recs {
		msgs = append(msgs, messageFromGlobal(rec))
	}
	h.send(c, &Event{Kind: EventGlobalHistory, Messages: msgs})
}
