package models

// User represents a row in the users table.
type User struct {
	ID       int64  `json:"id"       bson:"_id"`
	Username string `json:"username" bson:"username"`
	Password string `json:"-"        bson:"password"` // bcrypt hash, never serialize
}

// RegisterRequest is the JSON body for POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login. The user id is the only
// thing a client carries between requests.
type LoginResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}
