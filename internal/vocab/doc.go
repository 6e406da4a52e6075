// Package vocab persists the word collections vocamail works from: the
// per-level pools, the learned collection, the mailed staging files, and the
// pipe-delimited working vocabulary text file.
//
// Every mutation is a whole-collection read-modify-write; writes go through
// fileutil.WriteFileAtomic so a crash never leaves a truncated file. Words are
// compared with Unicode case folding.
package vocab
