// Package report turns flagged indices into reviewable issue records.
//
// Each record carries the decoded gold and suggested labels, the
// self-confidence, and a window of surrounding (token, label) pairs from the
// token's sentence. Token positions are resolved by a Locator; the default
// chain tries exact index arithmetic first and falls back to a case-folded
// text match. Every fallback is logged and counted in Stats so a corpus with
// inconsistent indices never degrades silently.
package report
