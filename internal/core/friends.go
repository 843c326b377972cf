package core

import "github.com/vovakirdan/ghostcord/internal/service/friends"

func (h *Hub) friendRequest(c *Client, identity string, cmd *Command) {
	if cmd.To == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "recipient is required"))
		return
	}

	if _, err := h.friends.SendRequest(h.ctx, identity, cmd.To); err != nil {
		h.fail(c, h.classify(err))
		return
	}

	h.sendTo(cmd.To, &Event{Kind: EventFriendRequest, User: identity})
	h.send(c, &Event{Kind: EventFriendRequestSent, User: cmd.To})
}

// acceptFriend does not check which side of the pair sent the request.
func (h *Hub) acceptFriend(c *Client, identity string, cmd *Command) {
	if cmd.To == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "user is required"))
		return
	}

	if err := h.friends.AcceptRequest(h.ctx, identity, cmd.To); err != nil {
		h.fail(c, h.classify(err))
		return
	}

	h.sendTo(cmd.To, &Event{Kind: EventFriendAcceptedBy, User: identity})
	h.send(c, &Event{Kind: EventFriendAccepted, User: cmd.To})
}

// removeFriend also declines or withdraws a pending request.
func (h *Hub) removeFriend(c *Client, identity string, cmd *Command) {
	if cmd.To == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "user is required"))
		return
	}

	if err := h.friends.Remove(h.ctx, identity, cmd.To); err != nil {
		h.fail(c, h.classify(err))
		return
	}

	h.sendTo(cmd.To, &Event{Kind: EventFriendRemoved, User: identity})
	h.send(c, &Event{Kind: EventFriendRemoveConfirmed, User: cmd.To})
}

func (h *Hub) listFriends(c *Client, identity string) {
	views, err := h.friends.List(h.ctx, identity)
	if err != nil {
		h.fail(c, h.classify(err))
		return
	}
	h.send(c, &Event{Kind: EventFriends, Friends: friendViews(views)})
}

func friendViews(views []friends.View) []FriendView {
	out := make([]FriendView, 0, len(views))
	for _, v := range views {
		out = append(out, FriendView{Username: v.Username, Status: v.Status})
	}
	return out
}
