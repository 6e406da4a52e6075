// Package selection picks words from a level pool for mailing.
//
// Two policies are supported. Random draws distinct entries without
// replacement from an injected *rand.Rand. Sequential takes a contiguous
// slice starting at a cursor persisted in seq_state.json; the cursor is
// advanced before the selection it governs and wraps to zero once the
// advanced value reaches the pool size.
package selection
