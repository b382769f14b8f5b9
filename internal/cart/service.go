package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

var (
	ErrLineNotFound  = errors.New("cart line not found")
	ErrAmbiguousLine = errors.New("cart line reference is ambiguous")
)

// Service owns the cart of each store: it loads it, applies one mutation and saves it back.
type Service struct {
	repo     port.CartRepository
	currency currency.Unit
	logger   *zap.Logger
}

func NewService(repo port.CartRepository, defaultCurrency currency.Unit, logger *zap.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repo:     repo,
		currency: defaultCurrency,
		logger:   logger,
	}, nil
}

func (s *Service) Get(ctx context.Context, ownerID string) (domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("repo.GetCart: %w", err)
	}

	if cart.Currency == (currency.Unit{}) {
		cart.Currency = s.currency
	}

	return cart, nil
}

// Add merges the candidate into the cart and returns the resulting line.
func (s *Service) Add(ctx context.Context, ownerID string, candidate domain.CartItem) (domain.CartItem, domain.Cart, error) {
	cart, err := s.Get(ctx, ownerID)
	if err != nil {
		return domain.CartItem{}, domain.Cart{}, err
	}

	line := cart.AddItem(candidate)

	if err := s.save(ctx, cart); err != nil {
		return domain.CartItem{}, domain.Cart{}, err
	}

	s.logger.Info("cart line added",
		zap.String("owner", ownerID),
		zap.String("key", line.Key),
		zap.String("product", line.ProductID.String()),
		zap.Int("quantity", line.Quantity),
	)

	return line, cart, nil
}

// SetQuantity updates the referenced line; a quantity of zero or less removes it.
func (s *Service) SetQuantity(ctx context.Context, ownerID, ref string, quantity int) (domain.Cart, error) {
	cart, err := s.Get(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, err
	}

	key, err := ResolveLine(cart, ref)
	if err != nil {
		return domain.Cart{}, err
	}

	cart.SetQuantity(key, quantity)

	if err := s.save(ctx, cart); err != nil {
		return domain.Cart{}, err
	}

	s.logger.Info("cart line quantity set",
		zap.String("owner", ownerID),
		zap.String("key", key),
		zap.Int("quantity", quantity),
	)

	return cart, nil
}

// Remove deletes the referenced line. An unknown reference leaves the cart as it is.
func (s *Service) Remove(ctx context.Context, ownerID, ref string) (domain.Cart, bool, error) {
	cart, err := s.Get(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, false, err
	}

	key, err := ResolveLine(cart, ref)
	if errors.Is(err, ErrLineNotFound) {
		return cart, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, err
	}

	removed := cart.RemoveItem(key)

	if err := s.save(ctx, cart); err != nil {
		return domain.Cart{}, false, err
	}

	s.logger.Info("cart line removed", zap.String("owner", ownerID), zap.String("key", key))

	return cart, removed, nil
}

func (s *Service) Clear(ctx context.Context, ownerID string) error {
	cart, err := s.Get(ctx, ownerID)
	if err != nil {
		return err
	}

	cart.Clear()

	if err := s.save(ctx, cart); err != nil {
		return err
	}

	s.logger.Info("cart cleared", zap.String("owner", ownerID))

	return nil
}

func (s *Service) save(ctx context.Context, cart domain.Cart) error {
	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return fmt.Errorf("repo.SaveCart: %w", err)
	}
	return nil
}

// ResolveLine maps a user reference to a line key. The reference is a 1-based position,
// a full key or a unique key prefix.
func ResolveLine(cart domain.Cart, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("line reference is empty")
	}

	if pos, err := strconv.Atoi(ref); err == nil {
		if pos < 1 || pos > len(cart.Items) {
			return "", fmt.Errorf("line %d: %w", pos, ErrLineNotFound)
		}
		return cart.Items[pos-1].Key, nil
	}

	var matches []string
	for _, item := range cart.Items {
		if item.Key == ref {
			return item.Key, nil
		}
		if strings.HasPrefix(item.Key, ref) {
			matches = append(matches, item.Key)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("line %s: %w", ref, ErrLineNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("line %s matches %d lines: %w", ref, len(matches), ErrAmbiguousLine)
	}
}
