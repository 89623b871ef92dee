package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/cart"
	"github.com/shashiranjanraj/bookstore/pkg/session"
)

type CatalogService struct {
	api     *api.Client
	session *session.Session
	cart    *cart.Cart
}

func NewCatalogService(c *api.Client, s *session.Session, ct *cart.Cart) *CatalogService {
	return &CatalogService{api: c, session: s, cart: ct}
}

func (s *CatalogService) Books(ctx context.Context) ([]models.Book, error) {
	books, err := s.api.Books(ctx)
	if err != nil {
		return nil, fail(err, "Failed to load books")
	}
	return books, nil
}

// Find loads the catalog and picks one book.
func (s *CatalogService) Find(ctx context.Context, id uint) (models.Book, error) {
	books, err := s.Books(ctx)
	if err != nil {
		return models.Book{}, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Book{}, &Failure{Text: "Book not found"}
}

// AddToCart puts one copy of book in the cart and returns the notice to show.
// Signed-out visitors are refused.
func (s *CatalogService) AddToCart(book models.Book) (string, error) {
	if !s.session.LoggedIn() {
		return "", &Failure{Text: "Please login to add to cart"}
	}
	if !book.InStock() {
		return fmt.Sprintf(`"%s" is out of stock`, book.Title), nil
	}

	before := s.cart.Quantity(book.ID)
	s.cart.Add(book)
	if s.cart.Quantity(book.ID) == before {
		return fmt.Sprintf(`Only %d of "%s" in stock`, book.Stock, book.Title), nil
	}
	return fmt.Sprintf(`Added "%s" to cart`, book.Title), nil
}

// AddToCartByID looks the book up first so stock is current.
func (s *CatalogService) AddToCartByID(ctx context.Context, id uint) (string, error) {
	if !s.session.LoggedIn() {
		return "", &Failure{Text: "Please login to add to cart"}
	}
	book, err := s.Find(ctx, id)
	if err != nil {
		return "", err
	}
	return s.AddToCart(book)
}
