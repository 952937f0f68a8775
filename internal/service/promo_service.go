package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"royalpalace/internal/database"
	"royalpalace/internal/domain"
	"royalpalace/internal/metrics"
	"royalpalace/internal/models"
	"royalpalace/internal/pricing"

	"github.com/rs/zerolog"
)

// PromoService validates and manages promo codes. Validation never mutates
// usage counts; a use is consumed only when a booking is finalized.
type PromoService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewPromoService(repo domain.Repository, logger *zerolog.Logger) *PromoService {
	return &PromoService{repo: repo, logger: logger}
}

// Validate checks a code against an order amount and returns the discount
// that would apply. Invalid codes come back with Valid=false and a
// guest-facing message rather than an error.
func (s *PromoService) Validate(ctx context.Context, code string, amount float64) (*models.PromoValidation, error) {
	result := &models.PromoValidation{OriginalAmount: amount, FinalAmount: amount}

	promo, err := s.repo.GetPromoCode(ctx, code)
	if errors.Is(err, database.ErrNotFound) {
		result.Message = "Invalid promo code"
		metrics.PromoValidations.WithLabelValues("not_found").Inc()
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	switch {
	case promo.Status != models.PromoActive:
		result.Message = "This promo code is no longer active"
		metrics.PromoValidations.WithLabelValues("inactive").Inc()
	case today().After(promo.ExpiryDate):
		result.Message = "This promo code has expired"
		metrics.PromoValidations.WithLabelValues("expired").Inc()
	case promo.CurrentUses >= promo.MaxUses:
		result.Message = "This promo code has been fully redeemed"
		metrics.PromoValidations.WithLabelValues("exhausted").Inc()
	default:
		discount, final := pricing.ApplyDiscount(amount, promo.DiscountAmount)
		result.Valid = true
		result.Message = fmt.Sprintf("Promo applied: %.2f off", discount)
		result.DiscountAmount = discount
		result.FinalAmount = final
		metrics.PromoValidations.WithLabelValues("valid").Inc()
	}
	return result, nil
}

// Redeem consumes one use. Callers invoke this only after the discounted
// booking has been persisted.
func (s *PromoService) Redeem(ctx context.Context, code string) error {
	if err := s.repo.RedeemPromoCode(ctx, code); err != nil {
		return err
	}
	s.logger.Info().Str("code", code).Msg("promo code redeemed")
	return nil
}

const promoAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Create stores a new promo code. An empty code gets a random 8-character
// one from an alphabet without lookalike characters.
func (s *PromoService) Create(ctx context.Context, code string, discount float64, expiry time.Time, maxUses int) (*models.PromoCode, error) {
	if discount <= 0 {
		return nil, newValidationError("discount_amount", "discount must be positive")
	}
	if maxUses <= 0 {
		return nil, newValidationError("max_uses", "max uses must be positive")
	}
	if expiry.Before(today()) {
		return nil, newValidationError("expiry_date", "expiry date is in the past")
	}
	if code == "" {
		generated, err := randomPromoCode(8)
		if err != nil {
			return nil, err
		}
		code = generated
	}

	promo := &models.PromoCode{
		Code:           code,
		DiscountAmount: discount,
		ExpiryDate:     expiry,
		MaxUses:        maxUses,
		Status:         models.PromoActive,
	}
	if err := s.repo.CreatePromoCode(ctx, promo); err != nil {
		return nil, err
	}

	s.logger.Info().Str("code", promo.Code).Float64("discount", discount).Msg("promo code created")
	return promo, nil
}

func (s *PromoService) Delete(ctx context.Context, code string) error {
	return s.repo.DeletePromoCode(ctx, code)
}

func (s *PromoService) List(ctx context.Context) ([]*models.PromoCode, error) {
	return s.repo.ListPromoCodes(ctx)
}

func randomPromoCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate promo code: %w", err)
	}
	for i, b := range buf {
		buf[i] = promoAlphabet[int(b)%len(promoAlphabet)]
	}
	return string(buf), nil
}
