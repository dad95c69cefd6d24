package domain

import "github.com/shopspring/decimal"

// PricingSnapshot набор ценовых полей, фиксируемых на бронировании при создании
type PricingSnapshot struct {
	TotalPrice           decimal.Decimal
	BaseDepositRate      decimal.Decimal
	GradeDiscountPercent decimal.Decimal
	FinalDepositRate     decimal.Decimal
	DepositAmount        decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// ComputePricing вычисляет снимок ценообразования по правилам:
// totalPrice = price * max(1, partySize)
// finalRate  = max(0, baseRate - gradeDiscount)
// deposit    = totalPrice * finalRate / 100, округление до 2 знаков
func ComputePricing(servicePrice decimal.Decimal, partySize int, baseDepositRate, gradeDiscount decimal.Decimal) PricingSnapshot {
	if partySize < 1 {
		partySize = 1
	}

	totalPrice := servicePrice.Mul(decimal.NewFromInt(int64(partySize)))

	finalRate := baseDepositRate.Sub(gradeDiscount)
	if finalRate.IsNegative() {
		finalRate = decimal.Zero
	}

	deposit := totalPrice.Mul(finalRate).Div(oneHundred).Round(2)

	return PricingSnapshot{
		TotalPrice:           totalPrice,
		BaseDepositRate:      baseDepositRate,
		GradeDiscountPercent: gradeDiscount,
		FinalDepositRate:     finalRate,
		DepositAmount:        deposit,
	}
}
