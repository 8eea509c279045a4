// Package user defines the account record used throughout the application,
// particularly for authentication and profile management.
package user

// User represents a registered account.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string

	// Name is the display name provided at registration.
	Name string

	// Email is the unique login identifier.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	// It must never leave the server in a response body.
	PasswordHash string

	// MobileNo is a 10-digit mobile number string.
	MobileNo string
}
