package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusDecodeKnownValues(t *testing.T) {
	var gb GroupBuy
	require.NoError(t, json.Unmarshal([]byte(`{"ID":1,"status":"active"}`), &gb))
	assert.Equal(t, StatusActive, gb.Status)

	require.NoError(t, json.Unmarshal([]byte(`{"ID":1,"status":"Completed"}`), &gb))
	assert.Equal(t, StatusCompleted, gb.Status)
}

func TestStatusDecodeFailsClosed(t *testing.T) {
	// An unrecognized status must not fail the entity decode, and must not
	// land on a joinable state.
	var gb GroupBuy
	require.NoError(t, json.Unmarshal([]byte(`{"ID":3,"status":"archived","participants":4}`), &gb))
	assert.Equal(t, int64(3), gb.ID)
	assert.Equal(t, 4, gb.Participants)
	assert.Equal(t, StatusUnknown, gb.Status)
	assert.False(t, gb.Status.Known())
}

func TestStatusRoundTrip(t *testing.T) {
	out, err := json.Marshal(StatusActive)
	require.NoError(t, err)
	assert.Equal(t, `"active"`, string(out))
}

func TestMoneyFieldsMarshalAsBareNumbers(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"ID":1,"name":"widget","price":19.99}`), &p))
	assert.Equal(t, "19.99", p.Price.String())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"price":19.99`)
}
