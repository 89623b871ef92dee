package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/guard"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/session"
	"github.com/shashiranjanraj/bookstore/pkg/validate"
)

// AdminService backs the admin console. Every call requires the ADMIN role
// locally; the server checks it again.
type AdminService struct {
	api     *api.Client
	session *session.Session
}

func NewAdminService(c *api.Client, s *session.Session) *AdminService {
	return &AdminService{api: c, session: s}
}

func (s *AdminService) Orders(ctx context.Context) ([]models.Order, error) {
	if err := guard.RequireAdmin(s.session); err != nil {
		return nil, err
	}
	orders, err := s.api.AdminOrders(ctx)
	if err != nil {
		return nil, fail(err, "Failed to fetch data")
	}
	return orders, nil
}

func (s *AdminService) Logs(ctx context.Context) ([]models.AuditLog, error) {
	if err := guard.RequireAdmin(s.session); err != nil {
		return nil, err
	}
	logs, err := s.api.AdminLogs(ctx)
	if err != nil {
		return nil, fail(err, "Failed to fetch data")
	}
	return logs, nil
}

// SetStatus moves an order to status, which must be one of the known five.
func (s *AdminService) SetStatus(ctx context.Context, orderID uint, status models.OrderStatus) (string, error) {
	if err := guard.RequireAdmin(s.session); err != nil {
		return "", err
	}
	if !status.Valid() {
		return "", &Failure{Text: fmt.Sprintf("Unknown status %q", string(status))}
	}
	if err := s.api.UpdateOrderStatus(ctx, orderID, status); err != nil {
		logger.WithCtx(ctx).Warn("admin: status update failed", "order_id", orderID, "error", err)
		return "", fail(err, "Failed to save status")
	}
	return "Status updated successfully", nil
}

// SaveBook creates a book when id is 0 and updates it otherwise.
func (s *AdminService) SaveBook(ctx context.Context, id uint, form api.BookForm) (string, error) {
	if err := guard.RequireAdmin(s.session); err != nil {
		return "", err
	}
	if err := validate.Check(form); err != nil {
		return "", invalid(err)
	}

	if id == 0 {
		if err := s.api.CreateBook(ctx, form); err != nil {
			return "", fail(err, "Failed to save book")
		}
		return "Book added successfully", nil
	}
	if err := s.api.UpdateBook(ctx, id, form); err != nil {
		return "", fail(err, "Failed to save book")
	}
	return "Book updated successfully", nil
}

func (s *AdminService) DeleteBook(ctx context.Context, id uint) (string, error) {
	if err := guard.RequireAdmin(s.session); err != nil {
		return "", err
	}
	if err := s.api.DeleteBook(ctx, id); err != nil {
		return "", fail(err, "Failed to delete book")
	}
	return "Book deleted successfully", nil
}
