package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumeric(t *testing.T) {
	t.Run("should parse fractional value", func(t *testing.T) {
		d, err := ParseNumeric("quantity", "12.5000")

		require.NoError(t, err)
		assert.True(t, d.Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := ParseNumeric("unit_price", "abc")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unit_price")
	})
}

func TestNullableId(t *testing.T) {
	assert.Nil(t, NullableId(0))
	id := NullableId(7)
	require.NotNil(t, id)
	assert.Equal(t, 7, *id)
}
