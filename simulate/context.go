package simulate

import (
	"context"

	"github.com/travisjeffery/pipesim/protocol"
)

// Context carries a decoded request through the handler.
type Context struct {
	context.Context
	Header  *protocol.RequestHeader
	Request protocol.Body
}

func (ctx *Context) String() string {
	return "ctx: " + ctx.Header.String()
}
