package auth

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultAvatar is assigned to users who never uploaded one.
const DefaultAvatar = "https://res.cloudinary.com/demo/image/upload/v1312461204/sample.jpg"

var emailRX = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)

// User represents a registered user
type User struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	Avatar    string    `json:"avatar"`
}

// AnonymousUser represents an unauthenticated request
var AnonymousUser = &User{}

// IsAnonymous checks if the user is anonymous
func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

// Profile is the user shape returned to clients, without credentials.
type Profile struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile returns the client-facing view of the user
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// Password represents a hashed password
type Password struct {
	plaintext *string
	hash      []byte
}

// Set hashes and stores a plaintext password
func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), 12)
	if err != nil {
		return err
	}

	p.plaintext = &plaintextPassword
	p.hash = hash
	return nil
}

// Matches checks if a plaintext password matches the hash
func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(plaintextPassword))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}

// ValidateRegistration checks registration input and returns any problems found
func ValidateRegistration(name, email, password string) []string {
	var problems []string

	if strings.TrimSpace(name) == "" {
		problems = append(problems, "Name is required")
	} else if len(name) > 50 {
		problems = append(problems, "Name cannot exceed 50 characters")
	}

	problems = append(problems, validateEmail(email)...)

	if len(password) < 6 {
		problems = append(problems, "Password must be at least 6 characters")
	}

	return problems
}

// ValidateLogin checks login input and returns any problems found
func ValidateLogin(email, password string) []string {
	var problems []string

	problems = append(problems, validateEmail(email)...)

	if password == "" {
		problems = append(problems, "Password is required")
	}

	return problems
}

func validateEmail(email string) []string {
	if strings.TrimSpace(email) == "" {
		return []string{"Email is required"}
	}
	if !emailRX.MatchString(email) {
		return []string{"Please enter a valid email"}
	}
	return nil
}
