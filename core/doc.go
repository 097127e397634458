// Package core contains the shared value and domain types used by every
// membox package: validated configuration primitives (APIKey, BaseURL,
// Namespace) that fail fast at construction, and the wire-level records
// (Memory, SearchMatch, Connection, Settings, Document) exchanged with the
// MemBox API.
package core
