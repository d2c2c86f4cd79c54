// Package domain defines the records of a bill-splitting session (items,
// claims, participants, and the session itself) along with their validation
// and normalization rules.
//
// All proportions are reals in [0, 1]. Session tax is stored as a fraction
// (0.13 for 13%), while participant tip is stored as a percent (20 for 20%);
// the settle package applies each accordingly.
package domain
