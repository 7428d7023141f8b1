// Package model abstracts the external text-completion service behind the
// Completer interface so routing policies, exit detection and handlers never
// depend on a concrete provider. Subpackages adapt the official OpenAI and
// Anthropic SDKs; MockCompleter serves tests and examples.
package model
