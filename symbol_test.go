package taxlot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymbolID(t *testing.T) {
	s, err := ParseSymbolID("VALE.NYSE")
	require.NoError(t, err)
	assert.Equal(t, "VALE", s.Paper)
	assert.Equal(t, "NYSE", s.Exchange)
	assert.Equal(t, "VALE.NYSE", s.String())

	// the split is on the first dot: dotted papers keep their tail in the
	// exchange part and fail the country lookup, never silently misfile
	s, err = ParseSymbolID("BRK.B.NYSE")
	require.NoError(t, err)
	assert.Equal(t, "BRK", s.Paper)
	assert.Equal(t, "B.NYSE", s.Exchange)

	_, err = ParseSymbolID("NODOT")
	var malformed *MalformedTransactionError
	assert.ErrorAs(t, err, &malformed)
}

func TestCountryTable(t *testing.T) {
	s, err := ParseSymbolID("VALE.NYSE")
	require.NoError(t, err)
	c, err := DefaultCountries.Country(s)
	require.NoError(t, err)
	assert.Equal(t, Country{Code: "US", Name: "United States"}, c)

	s, err = ParseSymbolID("7203.TSE")
	require.NoError(t, err)
	c, err = DefaultCountries.Country(s)
	require.NoError(t, err)
	assert.Equal(t, "JP", c.Code)

	s, err = ParseSymbolID("FOO.NOWHERE")
	require.NoError(t, err)
	_, err = DefaultCountries.Country(s)
	var unknown *UnknownExchangeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "NOWHERE", unknown.Suffix)
}
