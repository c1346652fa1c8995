// Package bench runs a benchmark dataset through the assistant under
// evaluation and scores every answer against its gold output.
//
// A run moves through LOAD_DATASET, then QUERY, VALIDATE, PARSE, SCORE and
// RECORD per entry, then AGGREGATE and PERSIST. Entries are processed
// strictly in order with a configurable pause between queries. Query,
// validation and parse failures never abort a run; they are recorded as
// fallbacks on the entry. Cancelling the context stops the run after the
// current step and the completed entries are persisted as a partial report.
package bench
