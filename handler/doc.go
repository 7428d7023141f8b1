// Package handler provides the built-in conversation handlers and the shared
// BaseHandler scaffolding for writing new ones.
//
// Three handlers ship with the module:
//
//   - Booking: a staged travel booking workflow that locks routing during its
//     confirmation step and raises ownership claims while work is in flight.
//   - Support: problem troubleshooting with an escalation level that grows its
//     ownership priority the longer a case stays open.
//   - Query: a generalist question answerer that serves as the fallback
//     destination and never claims ownership.
//
// BaseHandler implements the common suitability scoring: cheap keyword
// matching first, an optional completion-service rating for ambiguous inputs,
// and a neutral fallback score when the service fails.
package handler
