package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vovakirdan/ghostcord/internal/proto"
)

func TestParseLine(t *testing.T) {
	typ, data, ok := parseLine("hello there")
	assert.True(t, ok)
	assert.Equal(t, proto.InboundTypeGlobalMessage, typ)
	assert.Equal(t, proto.GlobalMessageData{Text: "hello there"}, data)

	typ, data, ok = parseLine("/dm bob see you soon")
	assert.True(t, ok)
	assert.Equal(t, proto.InboundTypeDirectMessage, typ)
	assert.Equal(t, proto.DirectMessageData{To: "bob", Msg: proto.MsgBody{Text: "see you soon"}}, data)

	typ, _, ok = parseLine("/say s1 general hi all")
	assert.True(t, ok)
	assert.Equal(t, proto.InboundTypeChannelMessage, typ)

	_, _, ok = parseLine("/friend")
	assert.False(t, ok)

	typ, _, ok = parseLine("")
	assert.True(t, ok)
	assert.Empty(t, typ)
}
