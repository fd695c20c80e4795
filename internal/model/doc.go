// Package model defines the core domain types shared across the
// application: content references resolved from URLs, quality tiers,
// and per-session download statistics.
package model
