// Package exitdetect classifies whether a user input signals the intent to
// leave the current workflow: explicit exit phrases, completion phrases,
// model-judged topic changes and stagnation/frustration heuristics. The
// sticky routing policy consumes the combined signal.
package exitdetect
