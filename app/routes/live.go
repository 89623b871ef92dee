package routes

import (
	"github.com/shashiranjanraj/bookstore/app/controllers"
	"github.com/shashiranjanraj/bookstore/pkg/ctx"
	"github.com/shashiranjanraj/bookstore/pkg/router"
	"github.com/shashiranjanraj/bookstore/pkg/ws"
)

// RegisterLive mounts the /ws push endpoint behind mw.
func RegisterLive(r *router.Router, hub *ws.Hub, mw ...router.Middleware) {
	live := controllers.NewLiveController(hub)
	r.Group("/", mw...).Get("/ws", "live", ctx.Wrap(live.Connect))
}
