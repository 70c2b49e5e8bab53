//go:build !piecetable_debug

package piece

// debugCheckInvariants is a no-op in production builds.
func (tb *Table) debugCheckInvariants() {}
