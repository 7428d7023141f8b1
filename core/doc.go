// Package core defines the shared domain model of the routing layer: the
// per-session ConversationState with its turn history, the Handler and Policy
// contracts, and the ephemeral decision types (RoutingDecision,
// OwnershipClaim, ExitSignal) exchanged between policies and the
// orchestrator. It has no dependencies on concrete policies, handlers or
// stores so every other package can import it freely.
package core
