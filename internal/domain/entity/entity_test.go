package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProductAgeAndLabel(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		bought time.Time
		age    int
		old    bool
	}{
		{now, 0, false},
		{now.Add(-23 * time.Hour), 0, false},
		{now.AddDate(0, 0, -30), 30, false},
		{now.AddDate(0, 0, -31), 31, true},
		{now.Add(24 * time.Hour), 0, false},
	}
	for _, tc := range cases {
		p := Product{BuyingDate: tc.bought}
		assert.Equal(t, tc.age, p.AgeInDays(now))
		assert.Equal(t, tc.old, p.IsOldStock(now, 30))
	}
	assert.Equal(t, "In Stock for a while", StockLabel(true))
	assert.Equal(t, "New Stock", StockLabel(false))
}

func TestProductSizes(t *testing.T) {
	p := Product{Sizes: []SizeStock{{Size: "M", Stock: 3}, {Size: "L", Stock: 0}}}
	assert.True(t, p.HasSizes())
	n, ok := p.SizeStock("M")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = p.SizeStock("XL")
	assert.False(t, ok)
}

func TestProductQuantitySold(t *testing.T) {
	p := Product{Sales: []Sale{{QuantitySold: 2, SellingPrice: 10}, {QuantitySold: 5, SellingPrice: 1.5}}}
	assert.Equal(t, 7, p.QuantitySold())
	assert.Equal(t, 20.0, p.Sales[0].Revenue())
}

func TestResetCodeValid(t *testing.T) {
	now := time.Now()
	exp := now.Add(time.Hour)
	u := User{ResetCode: "123456", ResetCodeExpiresAt: &exp}
	assert.True(t, u.ResetCodeValid("123456", now))
	assert.False(t, u.ResetCodeValid("654321", now))
	assert.False(t, u.ResetCodeValid("123456", now.Add(2*time.Hour)))
	assert.False(t, (&User{}).ResetCodeValid("", now))
}
