package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyRateEdit_DerivesBuyAmount(t *testing.T) {
	o := Order{QuoteID: "Q1", SellAmount: "1000.00", ExchangeRate: "1.2140", BuyAmount: "1214.02", State: StateNew}

	got := ApplyRateEdit(o, "1.25")

	assert.Equal(t, "1250.00", got.BuyAmount)
	assert.Equal(t, "1.2500", got.ExchangeRate)
	assert.Equal(t, StateWorking, got.State)
	assert.Equal(t, StateNew, o.State, "input is a value copy")
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.25", "1.2500"},
		{"1.38905", "1.3891"},
		{" 0.5 ", "0.5000"},
		{".75", "0.7500"},
		{"1.2abc", "1.2000"},
		{"1e-1", "0.1000"},
		{"", "0.0000"},
		{"abc", "0.0000"},
		{"-", "0.0000"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRate(tt.input))
		})
	}
}

func TestBuyAmount(t *testing.T) {
	tests := []struct {
		sell, rate, want string
	}{
		{"1000.00", "1.2500", "1250.00"},
		{"500.00", "1.3890", "694.50"},
		{"333.33", "1.0005", "333.50"},
		{"", "1.2500", "0.00"},
		{"100", "0.0000", "0.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BuyAmount(tt.sell, tt.rate), "%s x %s", tt.sell, tt.rate)
	}
}

func TestApplyRateEdit_InvalidInputZeroes(t *testing.T) {
	got := ApplyRateEdit(Order{SellAmount: "500.00"}, "not a number")

	assert.Equal(t, "0.0000", got.ExchangeRate)
	assert.Equal(t, "0.00", got.BuyAmount)
	assert.Equal(t, StateWorking, got.State)
}

func TestApplyRateEdit_OutOfRangeInputZeroes(t *testing.T) {
	for _, input := range []string{"1e7000000", "-1e400", "1e309", "9e99999999999"} {
		t.Run(input, func(t *testing.T) {
			start := time.Now()
			got := ApplyRateEdit(Order{SellAmount: "1000.00"}, input)

			assert.Equal(t, "0.0000", got.ExchangeRate)
			assert.Equal(t, "0.00", got.BuyAmount)
			assert.Equal(t, StateWorking, got.State)
			assert.Less(t, time.Since(start), time.Second)
		})
	}
}

func TestParseLenient_Range(t *testing.T) {
	d, _ := ParseLenient("1e-7000000")
	assert.True(t, d.IsZero())

	d, ok := ParseLenient("1.5e2")
	assert.True(t, ok)
	assert.Equal(t, "150", d.String())

	_, ok = ParseLenient("1e400")
	assert.False(t, ok)

	// a huge sell amount from the backend counts as zero too
	assert.Equal(t, "0.00", BuyAmount("1e7000000", "1.2500"))
}
