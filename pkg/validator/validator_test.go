package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type createProductPayload struct {
	Name  string  `json:"name" validate:"required,min=2"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&createProductPayload{Name: "x"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)

	fields := []string{failures[0].Field, failures[1].Field}
	require.Contains(t, fields, "name")
	require.Contains(t, fields, "price")
}

func TestValidateStructPassesValidPayload(t *testing.T) {
	require.NoError(t, ValidateStruct(&createProductPayload{Name: "Walnut desk", Price: 349.99}))
}

type storefrontPayload struct {
	Priority string `json:"priority" validate:"omitempty,priority"`
	Status   string `json:"status" validate:"omitempty,order_status"`
	Slug     string `json:"slug" validate:"omitempty,slug"`
}

func TestPriorityRule(t *testing.T) {
	require.NoError(t, ValidateStruct(&storefrontPayload{Priority: "urgent"}))
	require.Error(t, ValidateStruct(&storefrontPayload{Priority: "critical"}))
}

func TestOrderStatusRule(t *testing.T) {
	require.NoError(t, ValidateStruct(&storefrontPayload{Status: "shipped"}))
	require.Error(t, ValidateStruct(&storefrontPayload{Status: "returned"}))
}

func TestSlugRule(t *testing.T) {
	require.NoError(t, ValidateStruct(&storefrontPayload{Slug: "walnut-standing-desk"}))
	require.NoError(t, ValidateStruct(&storefrontPayload{Slug: "desk2"}))

	for _, bad := range []string{"Walnut-Desk", "-desk", "desk-", "double--hyphen", "spaced slug"} {
		require.Error(t, ValidateStruct(&storefrontPayload{Slug: bad}), bad)
	}
}
