// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth verifies the single administrator identity configured for
// the site.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login, whichever part
// was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the username does not match so a
// failed login always pays for one bcrypt evaluation.
var dummyHash = mustHash("not-the-admin-password")

// Credentials is the configured admin identity.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Verify checks a login attempt. bcrypt runs on every call regardless of
// whether the username matched.
func (c Credentials) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1

	hash := []byte(c.PasswordHash)
	if !userOK || c.PasswordHash == "" {
		hash = dummyHash
	}
	passErr := bcrypt.CompareHashAndPassword(hash, []byte(password))

	if !userOK || c.PasswordHash == "" || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}
