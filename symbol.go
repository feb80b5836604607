package taxlot

import (
	"fmt"
	"strings"
)

// MalformedTransactionError reports an unparseable or structurally invalid
// input record. Fatal to the run.
type MalformedTransactionError struct {
	Reason string
}

func (e *MalformedTransactionError) Error() string {
	return "malformed transaction: " + e.Reason
}

// UnknownExchangeError reports an exchange suffix with no country mapping.
type UnknownExchangeError struct {
	Suffix string
}

func (e *UnknownExchangeError) Error() string {
	return fmt.Sprintf("no country mapped for exchange %q", e.Suffix)
}

// Country identifies the listing country of an instrument for the
// per-country sub-declaration.
type Country struct {
	Code string
	Name string
}

// CountryTable maps an exchange suffix to its listing country. It is
// static configuration supplied at construction, so jurisdictions can be
// added without touching the aggregator.
type CountryTable map[string]Country

// DefaultCountries covers the exchanges appearing in the broker's reports.
var DefaultCountries = CountryTable{
	"ARCA":   {Code: "US", Name: "United States"},
	"NYSE":   {Code: "US", Name: "United States"},
	"NASDAQ": {Code: "US", Name: "United States"},
	"AMEX":   {Code: "US", Name: "United States"},
	"SOMX":   {Code: "SE", Name: "Sweden"},
	"NOMX":   {Code: "SE", Name: "Sweden"},
	"HKEX":   {Code: "CN", Name: "China"},
	"SGX":    {Code: "SG", Name: "Singapore"},
	"TMX":    {Code: "CA", Name: "Canada"},
	"TSE":    {Code: "JP", Name: "Japan"},
}

// Country resolves the listing country of a symbol's exchange suffix.
func (t CountryTable) Country(s SymbolID) (Country, error) {
	c, ok := t[s.Exchange]
	if !ok {
		return Country{}, &UnknownExchangeError{Suffix: s.Exchange}
	}
	return c, nil
}

// SymbolID is a broker instrument identifier of the form PAPER.EXCHANGE,
// e.g. "VALE.NYSE".
type SymbolID struct {
	Paper    string
	Exchange string
}

// ParseSymbolID splits an instrument identifier on its first dot.
func ParseSymbolID(s string) (SymbolID, error) {
	i := strings.Index(s, ".")
	if i < 0 {
		return SymbolID{}, &MalformedTransactionError{Reason: fmt.Sprintf("symbol %q has no exchange suffix", s)}
	}
	return SymbolID{Paper: s[:i], Exchange: s[i+1:]}, nil
}

func (s SymbolID) String() string { return s.Paper + "." + s.Exchange }
