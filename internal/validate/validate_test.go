package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type card struct {
	Name   string `json:"cardName" validate:"required"`
	Expiry string `json:"expiryDate" validate:"required,expiry"`
}

func TestCheck_Valid(t *testing.T) {
	assert.NoError(t, Check(card{Name: "A Shopper", Expiry: "09/27"}))
}

func TestCheck_UsesJSONFieldNames(t *testing.T) {
	err := Check(card{Expiry: "09/27"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cardName")
}

func TestCheck_Expiry(t *testing.T) {
	for _, bad := range []string{"13/27", "9/27", "0927", "09/2027"} {
		err := Check(card{Name: "A Shopper", Expiry: bad})
		require.Error(t, err, bad)
		assert.Contains(t, err.Error(), "MM/YY")
	}
}
