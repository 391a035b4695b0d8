// Package domain contains core concepts of the shelter chat system.
// No runtime, network, or UI logic should be added here.
package domain

// Identity is the authenticated user behind a connection, as resolved by
// the credential verifier. It is immutable for the life of a connection
// and never persisted by the hub; the user store owns it.
type Identity struct {
	ID    string
	Name  string
	Email string
}
