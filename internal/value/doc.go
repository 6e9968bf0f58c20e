// Package value defines the structured payload and key types stored by
// multikeydb, and their canonical JSON encoding.
//
// Value is a sealed interface implemented by Null, Bool, Int, Float, String,
// Array and Object. Key is the subset usable as a table key column value:
// Int and String only.
//
// Encoding rules:
//   - Object keys are written in UTF-16 code unit order (RFC 8785)
//   - No HTML escaping; U+2028 and U+2029 are written literally
//   - Floats always carry a fraction or exponent so they decode as Float
//   - NaN and infinities cannot be encoded
//
// Decode is the inverse of Encode: Decode(Encode(v)) is Equal to v.
//
// This package imports nothing internal.
package value
