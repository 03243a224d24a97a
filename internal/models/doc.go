// Package models defines the core domain models for settleup.
//
// An Event owns its SettlementBuckets and, transitively, its Participants.
// Buckets and participants are joined by BucketLink rows, each carrying its
// own settled flag. Nothing is shared across events.
//
// Design principles:
//
//  1. ID strings (UUID format) instead of pointers for relationships, to
//     avoid circular references.
//  2. Unix timestamps throughout.
//  3. The Event's DisplayManager/DisplayAccount fields are denormalized
//     copies of the primary bucket's fields, maintained by the storage
//     layer for cheap listing.
package models
