package core

import "strings"

func (h *Hub) listServers(c *Client) {
	infos, err := h.servers.ListServers(h.ctx)
	if err != nil {
		h.fail(c, h.classify(err))
		return
	}
	h.send(c, &Event{Kind: EventServers, Servers: serverViews(infos)})
}

func (h *Hub) createServer(c *Client, identity string, cmd *Command) {
	if cmd.User != "" && cmd.User != identity {
		h.fail(c, coreError(ErrCodeBadRequest, "owner must be the sender"))
		return
	}

	info, err := h.servers.CreateServer(h.ctx, identity, cmd.ServerID, cmd.Name)
	if err != nil {
		h.fail(c, h.classify(err))
		return
	}

	view := serverView(info)
	h.log.Info().Str("server_id", view.ID).Str("owner", identity).Msg("server created")
	h.broadcast(&Event{Kind: EventServerCreated, Server: &view})
}

func (h *Hub) joinServer(c *Client, identity string, cmd *Command) {
	if cmd.User != "" && cmd.User != identity {
		h.fail(c, coreError(ErrCodeBadRequest, "can only join as yourself"))
		return
	}
	if cmd.ServerID == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "server is required"))
		return
	}

	info, added, err := h.servers.JoinServer(h.ctx, identity, cmd.ServerID)
	if err != nil {
		h.fail(c, h.classify(err))
		return
	}

	view := serverView(info)
	h.send(c, &Event{Kind: EventServerJoined, Server: &view})
	if added {
		h.broadcast(&Event{Kind: EventMemberJoined, ServerID: info.ID, User: identity})
	}
}

func (h *Hub) createChannel(c *Client, identity string, cmd *Command) {
	if cmd.ServerID == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "server is required"))
		return
	}
	name := strings.TrimSpace(cmd.Name)

	if err := h.servers.CreateChannel(h.ctx, identity, cmd.ServerID, name); err != nil {
		h.fail(c, h.classify(err))
		return
	}

	h.broadcast(&Event{Kind: EventChannelCreated, ServerID: cmd.ServerID, Channel: name, User: identity})
}
