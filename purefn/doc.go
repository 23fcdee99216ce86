// Package purefn memoizes plain Go functions by approximate argument equality.
//
// Tableize is not just a utility to add memoization.
// Tableize is a tool that *forces the developer to ask*:
//
//	→ "Is this function really pure?"
//	→ "Is an input within 1e-8 of a previous one really the same input?"
//
// The Tableize family wraps functions of one to four inputs and one or two
// outputs. Inputs are compared the way memo compares arguments: text,
// booleans and integers by value, identity-bearing values by identity, and
// numbers, arrays, matrices and structures by shape and element within an
// absolute tolerance. The table is never evicted.
//
// Inputs are named "i1".."i4" unless WithNames says otherwise; names matter
// for WithIgnored and for inspecting the table through an Operation.
//
// WARNING: Do not use Tableize on impure functions (e.g., those depending on time, I/O, etc).
package purefn
