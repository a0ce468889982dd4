package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/valyala/fasthttp"

	httpctx "iotsentinel/internal/http/ctx"
)

// RequestLogger returns fasthttp middleware that logs method, path,
// status, duration, and the authenticated user on admin routes.
func RequestLogger(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		actor := ""
		if user, ok := httpctx.UserFromCtx(ctx); ok {
			actor = " user=" + user.Username
		}
		log.Printf("%s %s -> %d (%s) ip=%s%s", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), ctx.RemoteAddr(), actor)
	}
}

func jsonResponse(ctx *fasthttp.RequestCtx, code int, data any) {
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(data)
	ctx.SetBody(body)
}

func jsonError(ctx *fasthttp.RequestCtx, code int, msg string) {
	jsonResponse(ctx, code, map[string]any{"error": msg})
}

func queryLimit(ctx *fasthttp.RequestCtx, def, max int) int {
	limit := def
	if v := ctx.QueryArgs().GetUintOrZero("limit"); v > 0 {
		limit = v
	}
	if limit > max {
		limit = max
	}
	return limit
}
