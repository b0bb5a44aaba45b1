// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Roles known to the authorization policy.
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
	RoleViewer  = "viewer"
)

// ErrInvalidCredentials is returned for an unknown user or wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// bcryptCost is lowered in tests.
var bcryptCost = 12

// dummyHash keeps failed lookups as slow as failed password checks.
var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

type account struct {
	username     string
	passwordHash []byte
	role         string
}

// Credentials verifies username/password logins against bcrypt hashes.
type Credentials struct {
	mu       sync.RWMutex
	accounts map[string]account
}

// NewCredentials returns an empty credential set.
func NewCredentials() *Credentials {
	return &Credentials{accounts: make(map[string]account)}
}

// Add hashes password and registers the account. Passwords shorter than
// 12 characters or longer than bcrypt's 72-byte limit are rejected.
func (c *Credentials) Add(username, password, role string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(password) < 12 {
		return fmt.Errorf("password must be at least 12 characters")
	}
	if len(password) > 72 {
		return fmt.Errorf("password must be at most 72 bytes")
	}
	if role == "" {
		role = RoleViewer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	c.mu.Lock()
	c.accounts[username] = account{username: username, passwordHash: hash, role: role}
	c.mu.Unlock()
	return nil
}

// Verify returns the role of a valid login.
func (c *Credentials) Verify(username, password string) (string, error) {
	c.mu.RLock()
	acct, ok := c.accounts[username]
	c.mu.RUnlock()

	if !ok {
		dummyHashOnce.Do(func() {
			dummyHash, _ = bcrypt.GenerateFromPassword([]byte("campaignwatch-dummy-password"), bcryptCost)
		})
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", ErrInvalidCredentials
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(acct.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) == nil
	if !usernameMatch || !passwordMatch {
		return "", ErrInvalidCredentials
	}
	return acct.role, nil
}

// Usernames returns the registered usernames, sorted.
func (c *Credentials) Usernames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.accounts))
	for u := range c.accounts {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
