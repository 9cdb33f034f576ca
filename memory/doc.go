// Package memory implements the layered conversational memory for the
// shopping copilot: a bounded short-term window with topic tracking, and a
// semantic store that recalls prior utterances by vector similarity.
//
// Architecture:
//   - ShortTermWindow: FIFO of the last N raw utterances plus a single
//     "current topic" string updated by keyword-triggered topic changes
//   - SemanticStore: embeds utterances and recalls the most similar ones
//     via cosine similarity over a Store backend
//   - Store: vector backend (VectorIndex in-process, chromem-go embedded DB)
//   - Embedder: text-to-vector conversion (ONNX all-MiniLM-L6-v2 locally,
//     mock embedder for tests, ristretto-cached decorator for either)
//   - Session: one per logical conversation, owning both memories behind a
//     mutex so concurrent turns cannot corrupt the window or topic
//
// Failure policy: embedding errors and malformed vectors drop the affected
// item and log; recall degrades to empty rather than failing the turn.
// Nothing in this package is fatal to the caller.
package memory
