// Package ir is the content-addressing layer: a small sealed value model,
// RFC 8785 canonical JSON over it, and domain separated SHA-256 hashes for
// modules and terms.
//
// ir imports nothing internal. Packages that want a stable identity for
// their data convert it to a Value and hash it here.
//
// Constraints:
//   - no floats and no null in hashed values
//   - object keys ordered by UTF-16 code units
//   - strings NFC normalized at the serialization boundary
package ir
