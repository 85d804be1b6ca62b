package store

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrDuplicateAccount = errors.New("email already registered")
	ErrAccountNotFound  = errors.New("no account found")
)

// AccountStore keeps user accounts in users.json, keyed by lower-cased email.
type AccountStore struct {
	file *jsonFile[map[string]*User]
}

func NewAccountStore(dataDir string, logger *zap.Logger) *AccountStore {
	return &AccountStore{
		file: newJSONFile(filepath.Join(dataDir, "users.json"), func() map[string]*User {
			return map[string]*User{}
		}, logger),
	}
}

// UserKey is the primary key of an account.
func UserKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts u under its email key. It fails with ErrDuplicateAccount,
// leaving the store untouched, when the key is taken.
func (s *AccountStore) Create(u User) error {
	key := UserKey(u.Email)
	return s.file.update(func(users map[string]*User) (map[string]*User, error) {
		if _, exists := users[key]; exists {
			return nil, ErrDuplicateAccount
		}
		users[key] = &u
		return users, nil
	})
}

// Get returns a copy of the account, or nil when there is none.
func (s *AccountStore) Get(email string) *User {
	var out *User
	s.file.view(func(users map[string]*User) {
		if u, ok := users[UserKey(email)]; ok && u != nil {
			cp := *u
			out = &cp
		}
	})
	return out
}

// Update applies fn to the stored account and persists the whole file.
func (s *AccountStore) Update(email string, fn func(*User) error) error {
	key := UserKey(email)
	return s.file.update(func(users map[string]*User) (map[string]*User, error) {
		u, ok := users[key]
		if !ok || u == nil {
			return nil, ErrAccountNotFound
		}
		if err := fn(u); err != nil {
			return nil, err
		}
		return users, nil
	})
}

// UpdatePair applies fn to two accounts in one write.
func (s *AccountStore) UpdatePair(first, second string, fn func(a, b *User) error) error {
	k1, k2 := UserKey(first), UserKey(second)
	return s.file.update(func(users map[string]*User) (map[string]*User, error) {
		a, ok1 := users[k1]
		b, ok2 := users[k2]
		if !ok1 || !ok2 || a == nil || b == nil {
			return nil, ErrAccountNotFound
		}
		if err := fn(a, b); err != nil {
			return nil, err
		}
		return users, nil
	})
}

// All returns every account sorted by key.
func (s *AccountStore) All() []User {
	var out []User
	s.file.view(func(users map[string]*User) {
		keys := make([]string, 0, len(users))
		for k := range users {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if u := users[k]; u != nil {
				out = append(out, *u)
			}
		}
	})
	return out
}
