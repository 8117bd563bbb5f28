// Package units provides unit-tagged numeric arrays.
//
// A Quantity couples an Array of float64 values with a Unit. A Unit is a
// Signature, a mapping from a named unit (angstrom, erg, parsec, ...) to its
// power, from which the dimension vector over length, mass, time and angle is
// derived. Arithmetic on quantities computes the resulting unit and rejects
// combinations whose shapes cannot broadcast or whose units cannot be
// converted into each other.
//
// Check verifies that a signature carries a set of required entries. Steps
// call it before they assume specific units on their inputs.
package units
