package router

import "context"

// requestContext serves cancellation and deadline from the http request while still exposing the
// values injected in the root context of the router (configs, logger, database, ...).
type requestContext struct {
	context.Context
	values context.Context
}

func (c requestContext) Value(key any) any {
	if v := c.Context.Value(key); v != nil {
		return v
	}

	return c.values.Value(key)
}
