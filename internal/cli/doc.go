// Package cli implements keeperctl, the administrative command line for a
// passkeeper database: schema migrations, category and account maintenance,
// and bulk re-encryption of stored passwords.
package cli
