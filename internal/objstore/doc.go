// Package objstore provides the durable key/value layer for Slateview.
//
// # Overview
//
// The package centers around [Store], a small uninterpreted byte store
// (key -> blob) with prefix listing and prefix deletion. Keys are
// "/"-separated paths; every other storage component builds its layout on
// top of them. Two backends are provided: [FSStore] for local disk and
// [NATSStore] for a NATS JetStream ObjectStore bucket.
//
// # Consistency
//
// There is no atomicity across calls: each Read/Write/Delete is an
// independent, eventually-durable operation. Higher layers that need
// read-modify-write semantics (index maintenance in particular) accept the
// resulting lost-update race; see the infra package.
//
// # JSON helpers
//
// [GetJSON], [PutJSON] and [ListJSON] wrap the byte-level Store with the
// document semantics used throughout the system: an absent key reads as nil
// rather than an error, and bulk listings skip entries that fail to parse
// instead of aborting.
package objstore
