// Package rescore recomputes benchmark scores from recorded model outputs.
//
// Rescoring never queries the model. It reads the gold and model outputs of
// a report file or a stored run, scores them again in parallel and
// re-aggregates the summary. Embedding calls are retried with exponential
// backoff since a rescore pass typically issues many of them in a burst.
package rescore
