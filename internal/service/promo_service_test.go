package service

import (
	"context"
	"testing"

	"royalpalace/internal/database"
	"royalpalace/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPromoService(t *testing.T) (*PromoService, *database.DB) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPromoService(db, &logger), db
}

func TestPromoValidate(t *testing.T) {
	svc, db := setupPromoService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "SAVE200", 200, futureDate(30), 2)
	require.NoError(t, err)

	t.Run("Valid", func(t *testing.T) {
		result, err := svc.Validate(ctx, "SAVE200", 1000)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, 200.0, result.DiscountAmount)
		assert.Equal(t, 800.0, result.FinalAmount)
	})

	t.Run("ClampedToAmount", func(t *testing.T) {
		result, err := svc.Validate(ctx, "SAVE200", 150)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, 150.0, result.DiscountAmount)
		assert.Equal(t, 0.0, result.FinalAmount)
	})

	t.Run("Unknown", func(t *testing.T) {
		result, err := svc.Validate(ctx, "NOPE", 1000)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, 1000.0, result.FinalAmount)
	})

	t.Run("ValidationHasNoSideEffects", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, err := svc.Validate(ctx, "SAVE200", 1000)
			require.NoError(t, err)
		}
		promo, err := db.GetPromoCode(ctx, "SAVE200")
		require.NoError(t, err)
		assert.Equal(t, 0, promo.CurrentUses)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := &models.PromoCode{
			Code: "OLD", DiscountAmount: 100,
			ExpiryDate: futureDate(-2), MaxUses: 5, Status: models.PromoActive,
		}
		require.NoError(t, db.CreatePromoCode(ctx, expired))

		result, err := svc.Validate(ctx, "OLD", 1000)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Contains(t, result.Message, "expired")
	})

	t.Run("Exhausted", func(t *testing.T) {
		require.NoError(t, svc.Redeem(ctx, "SAVE200"))
		require.NoError(t, svc.Redeem(ctx, "SAVE200"))

		result, err := svc.Validate(ctx, "SAVE200", 1000)
		require.NoError(t, err)
		assert.False(t, result.Valid)
	})
}

func TestPromoCreate(t *testing.T) {
	svc, _ := setupPromoService(t)
	ctx := context.Background()

	t.Run("GeneratedCode", func(t *testing.T) {
		promo, err := svc.Create(ctx, "", 300, futureDate(10), 1)
		require.NoError(t, err)
		assert.Len(t, promo.Code, 8)
		for _, c := range promo.Code {
			assert.Contains(t, promoAlphabet, string(c))
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := svc.Create(ctx, "DUP", 100, futureDate(10), 1)
		require.NoError(t, err)
		_, err = svc.Create(ctx, "DUP", 100, futureDate(10), 1)
		assert.ErrorIs(t, err, database.ErrDuplicateCode)
	})

	t.Run("BadInput", func(t *testing.T) {
		_, err := svc.Create(ctx, "X1", 0, futureDate(10), 1)
		assert.True(t, IsValidationError(err))
		_, err = svc.Create(ctx, "X2", 100, futureDate(10), 0)
		assert.True(t, IsValidationError(err))
		_, err = svc.Create(ctx, "X3", 100, futureDate(-1), 1)
		assert.True(t, IsValidationError(err))
	})
}
