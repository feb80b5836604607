// Package taxlot reconstructs realized trading results and tax-relevant
// aggregates from a brokerage's raw transaction history and historical
// currency-rate tables.
//
// The pipeline has three stages: a rate repository resolving historical
// conversion rates with carry-back-to-last-trading-day semantics, a FIFO
// position matcher pairing opposing transactions per instrument into
// realized lots, and yearly aggregators converting and summing lots and
// dividend events into a declaration in a single home currency.
//
// Everything is computed on shopspring decimals; floats never enter the
// core. All stages are pure, single-threaded transformations over
// already-parsed inputs: file formats live in impexp.go, presentation in
// the renderer package, and the command line in cmd and tlx.
package taxlot
