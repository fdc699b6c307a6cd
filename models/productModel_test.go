package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	list := decimal.NewFromInt(100)
	discount := decimal.NewFromInt(80)

	p := Product{Price: list}
	assert.True(t, p.EffectivePrice().Equal(list))

	p.DiscountPrice = &discount
	assert.True(t, p.EffectivePrice().Equal(discount))

	// A discount at or above list price is ignored.
	equal := decimal.NewFromInt(100)
	p.DiscountPrice = &equal
	assert.True(t, p.EffectivePrice().Equal(list))
	assert.False(t, p.HasValidDiscount())
}
