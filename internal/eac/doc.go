// Package eac implements the per-application handwriting optimization
// model: the configuration record codec, the fixed activity
// configuration builder, and the manager that orchestrates
// enable/disable/query operations against a key-value store.
//
// Records live in the store under "eac_app_" + package name as JSON
// documents owned by the device. This package only ever edits the
// activityConfigMap field; every other field passes through a
// read-modify-write cycle byte-for-byte, in original document order.
//
// An activity counts as optimized when its entry passes the active
// test: noteConfig.enable is true and noteConfig.drawViewKey is
// non-empty. Enabling fully replaces the activity's entry; disabling
// removes it from the map outright, never just toggles a flag.
package eac
