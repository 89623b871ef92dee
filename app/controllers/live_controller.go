package controllers

import (
	"github.com/shashiranjanraj/bookstore/pkg/ctx"
	"github.com/shashiranjanraj/bookstore/pkg/visitor"
	"github.com/shashiranjanraj/bookstore/pkg/ws"
)

// LiveController upgrades pages to a WebSocket that receives the visitor's
// cart.changed and session.changed events.
type LiveController struct {
	hub *ws.Hub
}

func NewLiveController(hub *ws.Hub) *LiveController { return &LiveController{hub: hub} }

func (lc *LiveController) Connect(c *ctx.Context) {
	ws.Upgrade(c.W, c.R, lc.hub, visitor.ID(c.Context()))
}
