package models

// User is an account in the flat users file. Password holds a bcrypt hash,
// or plaintext for entries written before hashing was introduced.
type User struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PublicUser is the shape returned to clients
type PublicUser struct {
	Email string `json:"email"`
}
