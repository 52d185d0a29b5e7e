package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
	"github.com/samber/lo"
)

// Store keeps products, carts and purchases in memory behind one lock.
// It satisfies every repository port plus the checkout committer.
type Store struct {
	mu        sync.RWMutex
	products  map[uuid.UUID]domain.Product
	lines     map[uuid.UUID]storedLine
	purchases map[uuid.UUID]storedPurchase

	seq int64
	now func() time.Time
}

type storedLine struct {
	domain.CartLine
	seq int64
}

type storedPurchase struct {
	domain.Purchase
	seq int64
}

var (
	_ port.CartRepository     = (*Store)(nil)
	_ port.Catalog            = (*Store)(nil)
	_ port.PurchaseRepository = (*Store)(nil)
	_ port.CheckoutCommitter  = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		products:  make(map[uuid.UUID]domain.Product),
		lines:     make(map[uuid.UUID]storedLine),
		purchases: make(map[uuid.UUID]storedPurchase),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// catalog

func (s *Store) GetProduct(_ context.Context, productID uuid.UUID) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[productID]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}

	return product, nil
}

func (s *Store) DecrementIfAvailable(_ context.Context, productID uuid.UUID, quantity int) (domain.Money, bool, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.Money{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unitPrice, ok := s.decrementLocked(productID, quantity, s.now())
	return unitPrice, ok, nil
}

func (s *Store) decrementLocked(productID uuid.UUID, quantity int, now time.Time) (domain.Money, bool) {
	product, ok := s.products[productID]
	if !ok || product.AvailableQuantity < quantity {
		return domain.Money{}, false
	}

	product.AvailableQuantity -= quantity
	product.UpdatedAt = now
	s.products[productID] = product

	return product.Price, true
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (uuid.UUID, error) {
	if product.Name == "" {
		return uuid.Nil, errors.New("name is empty")
	}

	if product.AvailableQuantity < 0 {
		return uuid.Nil, fmt.Errorf("availableQuantity[%d] is negative", product.AvailableQuantity)
	}

	if product.AvailableQuantity > domain.MaxQuantity {
		return uuid.Nil, fmt.Errorf("%w: availableQuantity[%d] is too large", domain.ErrInvalidRequest, product.AvailableQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = s.now()
	product.UpdatedAt = product.CreatedAt

	s.products[product.ID] = product

	return product.ID, nil
}

func (s *Store) UpdatePrice(_ context.Context, productID uuid.UUID, price domain.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}

	product.Price = price
	product.UpdatedAt = s.now()
	s.products[productID] = product

	return nil
}

func (s *Store) CountProducts(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.products)), nil
}

// cart

func (s *Store) AddItem(_ context.Context, userID string, productID uuid.UUID, quantity int) (domain.CartLine, error) {
	if userID == "" {
		return domain.CartLine{}, errors.New("userID is empty")
	}

	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartLine{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return domain.CartLine{}, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}

	now := s.now()

	for id, line := range s.lines {
		if line.UserID == userID && line.ProductID == productID {
			if err := domain.ValidateQuantity(line.Quantity + quantity); err != nil {
				return domain.CartLine{}, err
			}
			line.Quantity += quantity
			line.UpdatedAt = now
			s.lines[id] = line
			return line.CartLine, nil
		}
	}

	line := storedLine{
		CartLine: domain.CartLine{
			ID:        uuid.New(),
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			CreatedAt: now,
			UpdatedAt: now,
		},
		seq: s.nextSeq(),
	}
	s.lines[line.ID] = line

	return line.CartLine, nil
}

func (s *Store) GetLine(_ context.Context, userID string, lineID uuid.UUID) (domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	line, ok := s.lines[lineID]
	if !ok || line.UserID != userID {
		return domain.CartLine{}, fmt.Errorf("cart line %s: %w", lineID, domain.ErrNotFound)
	}

	return line.CartLine, nil
}

func (s *Store) UpdateQuantity(_ context.Context, userID string, lineID uuid.UUID, quantity int) (domain.CartLine, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartLine{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[lineID]
	if !ok || line.UserID != userID {
		return domain.CartLine{}, fmt.Errorf("cart line %s: %w", lineID, domain.ErrNotFound)
	}

	line.Quantity = quantity
	line.UpdatedAt = s.now()
	s.lines[lineID] = line

	return line.CartLine, nil
}

func (s *Store) DeleteLine(_ context.Context, userID string, lineID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[lineID]
	if !ok || line.UserID != userID {
		return false, nil
	}

	delete(s.lines, lineID)
	return true, nil
}

func (s *Store) Clear(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clearLocked(userID), nil
}

func (s *Store) clearLocked(userID string) int64 {
	var removed int64
	for id, line := range s.lines {
		if line.UserID == userID {
			delete(s.lines, id)
			removed++
		}
	}
	return removed
}

func (s *Store) Snapshot(_ context.Context, userID string) (domain.CartSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := lo.Filter(lo.Values(s.lines), func(l storedLine, _ int) bool {
		return l.UserID == userID
	})

	slices.SortFunc(owned, func(a, b storedLine) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(a.seq - b.seq)
	})

	var lines []domain.SnapshotLine
	for _, l := range owned {
		product, ok := s.products[l.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, domain.SnapshotLine{CartLine: l.CartLine, Product: product})
	}

	return domain.CartSnapshot{
		UserID:     userID,
		Lines:      lines,
		CapturedAt: s.now(),
	}, nil
}

// purchases

func (s *Store) GetPurchase(_ context.Context, purchaseID uuid.UUID) (domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchases[purchaseID]
	if !ok {
		return domain.Purchase{}, fmt.Errorf("purchase %s: %w", purchaseID, domain.ErrNotFound)
	}

	return p.Purchase, nil
}

func (s *Store) ListByUser(_ context.Context, userID string) ([]domain.Purchase, error) {
	if userID == "" {
		return nil, errors.New("userID is empty")
	}

	return s.filterPurchases(func(p domain.Purchase) bool {
		return p.UserID == userID
	}), nil
}

func (s *Store) SearchPurchases(_ context.Context, filter domain.PurchaseFilter) ([]domain.Purchase, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	return s.filterPurchases(func(p domain.Purchase) bool {
		return matchesFilter(filter, p)
	}), nil
}

func matchesFilter(f domain.PurchaseFilter, p domain.Purchase) bool {
	if len(f.IDs) > 0 && !lo.Contains(f.IDs, p.ID) {
		return false
	}
	if len(f.UserIDs) > 0 && !lo.Contains(f.UserIDs, p.UserID) {
		return false
	}
	if len(f.ProductIDs) > 0 && !lo.Contains(f.ProductIDs, p.ProductID) {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, p.Status) {
		return false
	}
	if f.PurchasedAt != nil {
		if f.PurchasedAt.After != nil && p.PurchasedAt.Before(*f.PurchasedAt.After) {
			return false
		}
		if f.PurchasedAt.Before != nil && p.PurchasedAt.After(*f.PurchasedAt.Before) {
			return false
		}
	}
	return true
}

// filterPurchases returns matches newest first.
func (s *Store) filterPurchases(match func(domain.Purchase) bool) []domain.Purchase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := lo.Filter(lo.Values(s.purchases), func(p storedPurchase, _ int) bool {
		return match(p.Purchase)
	})

	slices.SortFunc(matched, func(a, b storedPurchase) int {
		if c := b.PurchasedAt.Compare(a.PurchasedAt); c != 0 {
			return c
		}
		return int(b.seq - a.seq)
	})

	return lo.Map(matched, func(p storedPurchase, _ int) domain.Purchase {
		return p.Purchase
	})
}

func (s *Store) UpdateStatus(_ context.Context, purchaseID uuid.UUID, from, to domain.OrderStatus) (domain.Purchase, error) {
	if purchaseID == uuid.Nil {
		return domain.Purchase{}, errors.New("purchaseID is empty")
	}

	if to == "" {
		return domain.Purchase{}, errors.New("status is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.purchases[purchaseID]
	if !ok {
		return domain.Purchase{}, fmt.Errorf("purchase %s: %w", purchaseID, domain.ErrNotFound)
	}

	if p.Status != from {
		return domain.Purchase{}, fmt.Errorf("purchase %s: %w", purchaseID, port.ErrStatusChanged)
	}

	p.Status = to
	p.UpdatedAt = s.now()
	s.purchases[purchaseID] = p

	return p.Purchase, nil
}

func (s *Store) SetEstimatedDelivery(_ context.Context, purchaseID uuid.UUID, at time.Time) (domain.Purchase, error) {
	if purchaseID == uuid.Nil {
		return domain.Purchase{}, errors.New("purchaseID is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.purchases[purchaseID]
	if !ok {
		return domain.Purchase{}, fmt.Errorf("purchase %s: %w", purchaseID, domain.ErrNotFound)
	}

	if p.Status.IsTerminal() {
		return domain.Purchase{}, &domain.InvalidTransitionError{From: p.Status, To: p.Status}
	}

	p.EstimatedDelivery = lo.ToPtr(at.UTC())
	p.UpdatedAt = s.now()
	s.purchases[purchaseID] = p

	return p.Purchase, nil
}

// checkout

// Commit validates every line against current stock and only then applies
// the decrements, purchases and cart clearing, all under the write lock.
func (s *Store) Commit(_ context.Context, userID string, lines []domain.SnapshotLine, address domain.DeliveryAddress) ([]domain.Purchase, error) {
	if userID == "" {
		return nil, errors.New("userID is empty")
	}

	if len(lines) == 0 {
		return nil, errors.New("no lines to commit")
	}

	address = address.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: every line must be fulfillable, counting repeats of a product
	wanted := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if err := domain.ValidateQuantity(line.Quantity); err != nil {
			return nil, err
		}

		product, ok := s.products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, domain.ErrNotFound)
		}

		wanted[line.ProductID] += line.Quantity
		if wanted[line.ProductID] > product.AvailableQuantity {
			return nil, &domain.InsufficientStockError{
				ProductID: line.ProductID,
				Available: product.AvailableQuantity,
			}
		}
	}

	// Second pass: apply
	now := s.now()
	purchases := make([]domain.Purchase, 0, len(lines))

	for _, line := range lines {
		unitPrice, _ := s.decrementLocked(line.ProductID, line.Quantity, now)

		purchase := domain.Purchase{
			ID:          uuid.New(),
			UserID:      userID,
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			TotalPrice:  unitPrice.Mul(line.Quantity),
			Delivery:    address,
			Status:      domain.OrderStatusPending,
			PurchasedAt: now,
			UpdatedAt:   now,
		}
		s.purchases[purchase.ID] = storedPurchase{Purchase: purchase, seq: s.nextSeq()}

		purchases = append(purchases, purchase)
	}

	s.clearLocked(userID)

	return purchases, nil
}
