// Package corpus holds the sequence-labelled corpus model and the
// token-per-line reader that produces it.
//
// A Corpus is an ordered list of sentences. Every token carries a global
// index that is contiguous across the whole corpus and a sentence id that is
// strictly increasing between sentences; the rest of the pipeline aligns
// feature rows, probability rows, and issue records on the global index.
//
// The reader accepts CoNLL-style input: one token per line, fields separated
// by whitespace, first field the surface text, last field the label, and a
// blank line between sentences. Malformed lines are skipped and counted, not
// fatal.
package corpus
