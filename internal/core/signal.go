package core

var signalEvents = map[CommandKind]EventKind{
	CommandCallUser:     EventIncomingCall,
	CommandAnswerCall:   EventCallAnswered,
	CommandIceCandidate: EventIceCandidate,
	CommandEndCall:      EventCallEnded,
}

// relaySignal forwards call signaling to its target untouched. Nothing is
// remembered between signals.
func (h *Hub) relaySignal(c *Client, identity string, cmd *Command) {
	if cmd.To == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "target is required"))
		return
	}

	ev := &Event{Kind: signalEvents[cmd.Kind], User: identity, Payload: cmd.Payload}
	if !h.sendTo(cmd.To, ev) {
		h.fail(c, coreError(ErrCodeUnreachable, "user is not online"))
	}
}
