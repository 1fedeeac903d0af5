// Package adaptive implements a cipher abstraction that automatically
// selects the best available encryption algorithm based on hardware
// capabilities and security requirements.
//
// Supported Algorithms:
//
//   - AES-256-GCM: Preferred when hardware AES support is available
//   - ChaCha20-Poly1305: Fallback for systems without AES-NI
//
// Features:
//
//   - Automatic selection by target architecture (AES-GCM on amd64 and
//     arm64, ChaCha20-Poly1305 elsewhere); CPU features are not probed
//   - AEAD: Authenticated encryption with associated data
//   - Thread Safety: All cipher operations are thread-safe
//
// The package takes a ready key; it does no key derivation from passwords.
//
// Usage:
//
//	cipher, err := adaptive.New(key)
//	encrypted, err := cipher.Encrypt(plaintext, aad)
//	plaintext, err := cipher.Decrypt(encrypted, aad)
//
// internal/storage/snapshot's NewCipherFromConfig is the one caller in this
// module: it uses New's hardware-based selection when a snapshot's
// encryption config leaves Algorithm unset, and NewWithType when an
// operator has pinned one explicitly. Either way the cipher's own Type()
// is what gets persisted in the snapshot header, so Load always rederives
// the matching cipher regardless of which path picked it.
package adaptive
