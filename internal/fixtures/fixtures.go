// Package fixtures loads the static input data scenarios are parameterized with.
package fixtures

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

//go:embed data/*.json
var embedded embed.FS

// UsersFixture is the name of the credentials fixture
const UsersFixture = "users"

// ErrNotFound is returned when a named fixture does not exist
var ErrNotFound = errors.New("fixture not found")

// Credential is an email/password pair
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// String masks the password so credentials are safe to log
func (c Credential) String() string {
	return fmt.Sprintf("%s/%s", c.Email, strings.Repeat("*", len(c.Password)))
}

// Users is the credential fixture shared by the auth suites
type Users struct {
	ValidUser        Credential `json:"validUser"`
	NewUser          Credential `json:"newUser"`
	InvalidEmails    []string   `json:"invalidEmails"`
	InvalidPasswords []string   `json:"invalidPasswords"`
}

// Validate checks the fixture is usable by the suites
func (u *Users) Validate() error {
	if u.ValidUser.Email == "" || u.ValidUser.Password == "" {
		return fmt.Errorf("validUser requires email and password")
	}
	if u.NewUser.Email == "" || u.NewUser.Password == "" {
		return fmt.Errorf("newUser requires email and password")
	}
	if len(u.InvalidEmails) == 0 {
		return fmt.Errorf("invalidEmails must not be empty")
	}
	if len(u.InvalidPasswords) == 0 {
		return fmt.Errorf("invalidPasswords must not be empty")
	}
	if dup, ok := firstDuplicate(u.InvalidEmails); ok {
		return fmt.Errorf("invalidEmails contains duplicate %q", dup)
	}
	if dup, ok := firstDuplicate(u.InvalidPasswords); ok {
		return fmt.Errorf("invalidPasswords contains duplicate %q", dup)
	}
	return nil
}

func firstDuplicate(values []string) (string, bool) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return v, true
		}
		seen[v] = struct{}{}
	}
	return "", false
}

// Store resolves named fixtures from a filesystem
type Store struct {
	fsys fs.FS
}

// NewStore creates a store over the given filesystem
func NewStore(fsys fs.FS) *Store {
	return &Store{fsys: fsys}
}

// Default returns a store over the fixtures compiled into the binary
func Default() *Store {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		// data/ is part of the embed pattern; Sub cannot fail here
		panic(err)
	}
	return NewStore(sub)
}

// Open returns the directory store when dir is set and the embedded store otherwise
func Open(dir string) (*Store, error) {
	if dir == "" {
		return Default(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixtures path %s is not a directory", dir)
	}
	return NewStore(os.DirFS(dir)), nil
}

// Load decodes the fixture called name into v
func (s *Store) Load(name string, v any) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid fixture name %q", name)
	}

	data, err := fs.ReadFile(s.fsys, path.Clean(name+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", name, err)
	}
	return nil
}

// Users loads and validates the credential fixture
func (s *Store) Users() (*Users, error) {
	var users Users
	if err := s.Load(UsersFixture, &users); err != nil {
		return nil, err
	}
	if err := users.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s fixture: %w", UsersFixture, err)
	}
	return &users, nil
}
