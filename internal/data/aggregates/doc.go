// Package aggregates contains infrastructure implementations of domain aggregate contracts.
//
// Implementations compose the table repos from internal/data/repos and own
// the transaction boundary for every write that touches page versions or
// the page tree.
package aggregates
