// Package ir provides the generic value tree used for loosely structured
// upstream records.
//
// Raw orders arrive as arbitrary JSON documents whose branches may be missing
// at any depth. Instead of decoding them into rigid structs, they are decoded
// into a sealed IRValue tree and read through the safe traversal helpers in
// path.go, which never fail and fall back to a default on any absent segment.
//
// This package imports nothing internal. All other internal packages may
// import ir; ir imports none of them.
//
// Key design constraints:
//   - Numbers are never parsed to float. Integers become IRInt, everything
//     else is kept as its literal text in IRNumber so rendering is lossless.
//   - JSON null decodes to IRNull, never to a Go nil.
//   - Composite values are rendered with MarshalCanonical (RFC 8785 key
//     ordering, NFC strings) so the same record always yields the same text.
package ir
