package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
)

// CartService owns each user's cart. Every operation takes the user explicitly.
type CartService struct {
	carts   port.CartRepository
	catalog port.Catalog
	logger  *slog.Logger
}

func NewCartService(carts port.CartRepository, catalog port.Catalog, logger *slog.Logger) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		logger:  logger.With("component", "cart"),
	}
}

// AddItem adds quantity of a product, merging into an existing line for the same product.
func (s *CartService) AddItem(ctx context.Context, userID string, productID uuid.UUID, quantity int) (domain.CartLine, error) {
	if userID == "" {
		return domain.CartLine{}, domain.ErrUnauthenticated
	}

	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartLine{}, err
	}

	if productID == uuid.Nil {
		return domain.CartLine{}, fmt.Errorf("%w: product id is empty", domain.ErrInvalidRequest)
	}

	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return domain.CartLine{}, fmt.Errorf("catalog.GetProduct: %w", err)
	}

	line, err := s.carts.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("carts.AddItem: %w", err)
	}

	s.logger.DebugContext(ctx, "cart item added",
		"user_id", userID, "product_id", productID, "line_id", line.ID, "quantity", line.Quantity)

	return line, nil
}

// SetQuantity replaces a line's quantity. A quantity below 1 removes the line
// and returns a zero CartLine. Either way a line the user does not have is
// ErrNotFound. Quantities are not clamped to available stock.
func (s *CartService) SetQuantity(ctx context.Context, userID string, lineID uuid.UUID, quantity int) (domain.CartLine, error) {
	if userID == "" {
		return domain.CartLine{}, domain.ErrUnauthenticated
	}

	if quantity < 1 {
		return domain.CartLine{}, s.removeExisting(ctx, userID, lineID)
	}

	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartLine{}, err
	}

	line, err := s.carts.UpdateQuantity(ctx, userID, lineID, quantity)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("carts.UpdateQuantity: %w", err)
	}

	return line, nil
}

// RemoveItem is idempotent and reports whether the line existed.
func (s *CartService) RemoveItem(ctx context.Context, userID string, lineID uuid.UUID) (bool, error) {
	if userID == "" {
		return false, domain.ErrUnauthenticated
	}

	found, err := s.carts.DeleteLine(ctx, userID, lineID)
	if err != nil {
		return false, fmt.Errorf("carts.DeleteLine: %w", err)
	}

	return found, nil
}

func (s *CartService) removeExisting(ctx context.Context, userID string, lineID uuid.UUID) error {
	if _, err := s.carts.GetLine(ctx, userID, lineID); err != nil {
		return fmt.Errorf("carts.GetLine: %w", err)
	}

	// a concurrent delete of the same line is fine
	if _, err := s.RemoveItem(ctx, userID, lineID); err != nil {
		return err
	}

	return nil
}

func (s *CartService) Clear(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, domain.ErrUnauthenticated
	}

	removed, err := s.carts.Clear(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("carts.Clear: %w", err)
	}

	return removed, nil
}

// Snapshot reads the cart with live product data, oldest line first.
func (s *CartService) Snapshot(ctx context.Context, userID string) (domain.CartSnapshot, error) {
	if userID == "" {
		return domain.CartSnapshot{}, domain.ErrUnauthenticated
	}

	snapshot, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("carts.Snapshot: %w", err)
	}

	return snapshot, nil
}
