package domain

// User is the identity returned by the mock credential exchange.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
