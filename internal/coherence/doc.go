// Package coherence checks that the `unsafe` qualifier on every impl agrees
// with the trait it implements and with the impl's polarity.
//
// The rules live in a fully keyed table indexed by
// (trait state, impl unsafety, impl polarity). Array sizes are tied to the
// enum sizes, so a new Unsafety or Polarity value breaks the build until the
// table is revisited, and an unfilled cell is rejected at init.
//
// Codes:
//
//	COH0197  unsafe inherent impl
//	COH0198  unsafe negative impl of an unsafe trait
//	COH0199  unsafe impl of a safe trait
//	COH0200  safe positive impl of an unsafe trait
package coherence
