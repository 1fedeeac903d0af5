// Package snapshot persists the keyspace to timestamped snapshot files in
// one directory and restores the newest valid one at startup (§4.7).
//
// A snapshot file is self-describing:
//
//	snapshot-<timestamp>[-<sequence>].snap
//	[magic:8 "SEDRISDB"][version:1]
//	[encrypted:1][salt?][algorithm?]
//	[numDB:1]
//	[bodyLen:4][body:bodyLen]   (per-db, per-entry records; optionally encrypted)
//	[checksum:8 CRC-64/ISO over every preceding byte]
//
// Load tries the most recent file first, falling back to progressively
// older ones if a candidate's checksum or header fails validation — it
// never returns a partially restored keyspace.
package snapshot
