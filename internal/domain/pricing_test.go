package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
)

func TestComputePricing_GradeDiscount(t *testing.T) {
	// Услуга 10 000 KRW, 2 человека, базовая ставка 30%, скидка грейда 10%
	pricing := domain.ComputePricing(
		decimal.NewFromInt(10000),
		2,
		decimal.NewFromInt(30),
		decimal.NewFromInt(10),
	)

	assert.True(t, decimal.NewFromInt(20000).Equal(pricing.TotalPrice),
		"total price = %s", pricing.TotalPrice)
	assert.True(t, decimal.NewFromInt(20).Equal(pricing.FinalDepositRate),
		"final rate = %s", pricing.FinalDepositRate)
	assert.True(t, decimal.NewFromInt(4000).Equal(pricing.DepositAmount),
		"deposit = %s", pricing.DepositAmount)
}

func TestComputePricing_DiscountExceedsBaseRate(t *testing.T) {
	// Скидка больше базовой ставки: итоговая ставка не может быть отрицательной
	pricing := domain.ComputePricing(
		decimal.NewFromInt(10000),
		1,
		decimal.NewFromInt(5),
		decimal.NewFromInt(15),
	)

	assert.True(t, pricing.FinalDepositRate.IsZero())
	assert.True(t, pricing.DepositAmount.IsZero())
}

func TestComputePricing_PartySizeBelowOne(t *testing.T) {
	pricing := domain.ComputePricing(
		decimal.NewFromInt(10000),
		0,
		decimal.NewFromInt(30),
		decimal.Zero,
	)

	assert.True(t, decimal.NewFromInt(10000).Equal(pricing.TotalPrice))
	assert.True(t, decimal.NewFromInt(3000).Equal(pricing.DepositAmount))
}

func TestComputePricing_RoundsToTwoDecimals(t *testing.T) {
	// 333.33 * 15% = 49.9995 -> 50.00
	pricing := domain.ComputePricing(
		decimal.RequireFromString("333.33"),
		1,
		decimal.NewFromInt(15),
		decimal.Zero,
	)

	assert.True(t, decimal.RequireFromString("50.00").Equal(pricing.DepositAmount),
		"deposit = %s", pricing.DepositAmount)
}

func TestBalanceAmount(t *testing.T) {
	r := &domain.Reservation{
		TotalPriceAtBooking: decimal.NewFromInt(20000),
		DepositAmount:       decimal.NewFromInt(4000),
	}

	assert.True(t, decimal.NewFromInt(16000).Equal(r.BalanceAmount()))
}

func TestGradeDiscountPercent_NilGrade(t *testing.T) {
	assert.True(t, domain.GradeDiscountPercent(nil).IsZero())

	grade := &domain.UserGrade{DepositDiscountPercent: decimal.NewFromInt(10)}
	assert.True(t, decimal.NewFromInt(10).Equal(domain.GradeDiscountPercent(grade)))
}
