package auth

import (
	"fmt"
	"strings"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Account is a user of the fixed user set together with its clear-text password.
type Account struct {
	User     domain.User
	Password string
}

// DemoAccounts is the storefront's built-in user set.
func DemoAccounts() []Account {
	return []Account{
		{
			User: domain.User{
				ID:    "1",
				Name:  "Admin User",
				Email: "admin@example.com",
				Role:  domain.RoleAdmin,
			},
			Password: "admin123",
		},
		{
			User: domain.User{
				ID:    "2",
				Name:  "Customer User",
				Email: "customer@example.com",
				Role:  domain.RoleCustomer,
			},
			Password: "customer123",
		},
	}
}

type record struct {
	user domain.User
	hash []byte
}

// Directory validates credentials against a fixed set of users. Passwords are
// kept only as bcrypt hashes.
type Directory struct {
	records []record
}

func NewDirectory(accounts []Account, cost int) (*Directory, error) {
	d := &Directory{records: make([]record, 0, len(accounts))}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", a.User.Email, err)
		}
		d.records = append(d.records, record{user: a.User, hash: hash})
	}
	return d, nil
}

// Authenticate matches email case-insensitively and password exactly.
func (d *Directory) Authenticate(email, password string) (domain.User, error) {
	for _, r := range d.records {
		if !strings.EqualFold(r.user.Email, email) {
			continue
		}
		if bcrypt.CompareHashAndPassword(r.hash, []byte(password)) != nil {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return r.user, nil
	}
	return domain.User{}, domain.ErrInvalidCredentials
}
