// Package credential provides a password value type that can only be set and verified.
package credential

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmpty is returned when setting an empty password.
	ErrEmpty = errors.New("password must not be empty")
	// ErrTooLong is returned for passwords bcrypt cannot hash.
	ErrTooLong = errors.New("password is longer than 72 bytes")
	// ErrNotSet is returned when persisting a credential that was never set.
	ErrNotSet = errors.New("credential is not set")
)

// Cost is the bcrypt work factor used by Set.
var Cost = bcrypt.DefaultCost

// Credential holds a one-way password hash. The plaintext cannot be read back.
type Credential struct {
	hash []byte
}

// Set replaces the stored hash with a hash of plaintext.
func (c *Credential) Set(plaintext string) error {
	if plaintext == "" {
		return ErrEmpty
	}
	if len(plaintext) > 72 {
		return ErrTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	c.hash = hash
	return nil
}

// Verify reports whether plaintext matches the stored hash.
func (c Credential) Verify(plaintext string) bool {
	if len(c.hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(c.hash, []byte(plaintext)) == nil
}

// IsSet reports whether a hash is present.
func (c Credential) IsSet() bool {
	return len(c.hash) > 0
}

// String never reveals the hash.
func (c Credential) String() string {
	return "[redacted]"
}

// GoString never reveals the hash.
func (c Credential) GoString() string {
	return "credential.Credential{[redacted]}"
}

// Scan implements sql.Scanner.
func (c *Credential) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		c.hash = nil
	case string:
		c.hash = []byte(v)
	case []byte:
		c.hash = append([]byte(nil), v...)
	default:
		return fmt.Errorf("credential: unsupported scan type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (c Credential) Value() (driver.Value, error) {
	if len(c.hash) == 0 {
		return nil, ErrNotSet
	}
	return string(c.hash), nil
}

// GormDataType maps the credential to a text column.
func (Credential) GormDataType() string {
	return "varchar(255)"
}
