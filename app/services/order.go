package services

import (
	"context"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/guard"
	"github.com/shashiranjanraj/bookstore/pkg/session"
)

type OrderService struct {
	api     *api.Client
	session *session.Session
}

func NewOrderService(c *api.Client, s *session.Session) *OrderService {
	return &OrderService{api: c, session: s}
}

// History lists the signed-in user's orders, newest as the server sends them.
func (s *OrderService) History(ctx context.Context) ([]models.Order, error) {
	if err := guard.Require(s.session); err != nil {
		return nil, err
	}
	orders, err := s.api.Orders(ctx)
	if err != nil {
		return nil, fail(err, "Failed to load orders")
	}
	return orders, nil
}
