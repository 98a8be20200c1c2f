// Package dataset loads the three identity-program extract families from
// disk: enrolment, demographic updates, and biometric updates.
//
// Extracts arrive as directories of CSV files published by different state
// offices, so the loader tolerates what the publishers produce: mixed
// separators, day-first dates with two- or four-digit years, thousands
// separators inside counts, and inconsistent casing of state and district
// names. Rows that cannot be repaired are skipped and counted rather than
// failing the run; a file that yields nothing valid is an error.
package dataset
