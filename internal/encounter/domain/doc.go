// Package domain implements the raid encounter engine: immutable encounter
// definitions, the per-encounter state machine and contribution ledger, the
// adversary ability resolution rules, and the loot allocation formulas.
//
// The package is deliberately free of locking and I/O. All methods mutate a
// single *Encounter and expect the caller (the service layer) to serialize
// access per instance; pure calculations take injected clocks and RNGs so
// tests stay deterministic.
package domain
