package core

import (
	"errors"
	"strings"
	"time"

	"assistive.app/buttons/internal/auth"
	"assistive.app/buttons/internal/store"
	"go.uber.org/zap"
)

const defaultTheme = "light"

var SecurityQuestions = []string{
	"What is your pet's name?",
	"What city were you born in?",
	"What is your mother's maiden name?",
	"What was your first car?",
	"What is your favorite book?",
	"What school did you attend?",
	"What was your childhood nickname?",
	"What is your favorite color?",
}

// DefaultMedicines is offered to accounts that have not set their own list.
var DefaultMedicines = []store.Medicine{
	{Name: "Aspirin", Dosage: "500mg"},
	{Name: "Ibuprofen", Dosage: "200mg"},
	{Name: "Paracetamol", Dosage: "500mg"},
	{Name: "Vitamin C", Dosage: "1000mg"},
	{Name: "Blood Pressure Med", Dosage: "As prescribed"},
	{Name: "Insulin", Dosage: "As prescribed"},
}

// Result reports an expected domain outcome. Only storage faults surface as
// errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SignupInput struct {
	Email            string
	Password         string
	Primary          bool
	FullName         string
	Phone            string
	SecurityQuestion string
	SecurityAnswer   string
}

type LoginResult struct {
	Result
	UserID string      `json:"user_id,omitempty"`
	User   *store.User `json:"-"`
}

type Profile struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AccountType string `json:"account_type"`
	Theme       string `json:"theme"`
}

type AccessibleAccount struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type AccountService struct {
	accounts *store.AccountStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewAccountService(accounts *store.AccountStore, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{accounts: accounts, logger: logger, now: time.Now}
}

func (s *AccountService) Signup(in SignupInput) (Result, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return Result{Message: "Email and password are required"}, nil
	}

	pwHash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Result{}, err
	}

	accountType := store.AccountCaretaker
	if in.Primary {
		accountType = store.AccountPrimary
	}
	created := s.now().UTC()

	err = s.accounts.Create(store.User{
		Email:              email,
		FullName:           in.FullName,
		Phone:              in.Phone,
		SecurityQuestion:   in.SecurityQuestion,
		SecurityAnswerHash: auth.HashSecurityAnswer(in.SecurityAnswer),
		PasswordHash:       pwHash,
		AccountType:        accountType,
		CreatedAt:          &created,
		Caretakers:         []string{},
		Medicines:          []store.Medicine{},
		Theme:              defaultTheme,
	})
	if errors.Is(err, store.ErrDuplicateAccount) {
		return Result{Message: "Email already registered"}, nil
	}
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("Account created", zap.String("user_id", store.UserKey(email)), zap.String("account_type", accountType))
	return Result{Success: true, Message: "Account created successfully"}, nil
}

func (s *AccountService) Login(email, password string) LoginResult {
	u := s.accounts.Get(email)
	if u == nil {
		return LoginResult{Result: Result{Message: "No account found for this email"}}
	}
	if !auth.CheckPasswordHash(password, u.PasswordHash) {
		return LoginResult{Result: Result{Message: "Incorrect password"}}
	}
	return LoginResult{
		Result: Result{Success: true, Message: "Login successful"},
		UserID: store.UserKey(email),
		User:   u,
	}
}

// SecurityQuestion returns the question chosen at signup, if any.
func (s *AccountService) SecurityQuestion(email string) (string, bool) {
	u := s.accounts.Get(email)
	if u == nil || u.SecurityQuestion == "" {
		return "", false
	}
	return u.SecurityQuestion, true
}

func (s *AccountService) VerifySecurityAnswer(email, answer string) bool {
	u := s.accounts.Get(email)
	if u == nil {
		return false
	}
	return auth.CheckSecurityAnswer(answer, u.SecurityAnswerHash)
}

func (s *AccountService) ResetPassword(email, newPassword string) (Result, error) {
	if newPassword == "" {
		return Result{Message: "Password is required"}, nil
	}
	pwHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return Result{}, err
	}

	err = s.accounts.Update(email, func(u *store.User) error {
		u.PasswordHash = pwHash
		return nil
	})
	if errors.Is(err, store.ErrAccountNotFound) {
		return Result{Message: "No account found"}, nil
	}
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("Password reset", zap.String("user_id", store.UserKey(email)))
	return Result{Success: true, Message: "Password reset successfully"}, nil
}

func (s *AccountService) Profile(email string) (Profile, bool) {
	u := s.accounts.Get(email)
	if u == nil {
		return Profile{}, false
	}
	theme := u.Theme
	if theme == "" {
		theme = defaultTheme
	}
	return Profile{
		FullName:    u.FullName,
		Email:       u.Email,
		Phone:       u.Phone,
		AccountType: u.AccountType,
		Theme:       theme,
	}, true
}

// UpdateProfile changes the contact fields that are non-empty.
func (s *AccountService) UpdateProfile(email, fullName, phone string) error {
	return s.accounts.Update(email, func(u *store.User) error {
		if fullName != "" {
			u.FullName = fullName
		}
		if phone != "" {
			u.Phone = phone
		}
		return nil
	})
}

func (s *AccountService) SetTheme(email, theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != "light" && theme != "dark" {
		return ErrInvalidTheme
	}
	return s.accounts.Update(email, func(u *store.User) error {
		u.Theme = theme
		return nil
	})
}

// Medicines returns the account's list, or the default list when it is empty
// or the account is unknown.
func (s *AccountService) Medicines(email string) []store.Medicine {
	if u := s.accounts.Get(email); u != nil && len(u.Medicines) > 0 {
		return u.Medicines
	}
	out := make([]store.Medicine, len(DefaultMedicines))
	copy(out, DefaultMedicines)
	return out
}

func (s *AccountService) SetMedicines(email string, medicines []store.Medicine) error {
	if medicines == nil {
		medicines = []store.Medicine{}
	}
	return s.accounts.Update(email, func(u *store.User) error {
		u.Medicines = medicines
		return nil
	})
}

// AddCaretaker grants caretakerEmail access to primaryEmail. Both accounts
// must exist; adding the same caretaker twice is a no-op.
func (s *AccountService) AddCaretaker(primaryEmail, caretakerEmail string) error {
	caretakerKey := store.UserKey(caretakerEmail)
	if caretakerKey == store.UserKey(primaryEmail) {
		return ErrSelfCaretaker
	}
	return s.accounts.UpdatePair(primaryEmail, caretakerEmail, func(primary, _ *store.User) error {
		for _, c := range primary.Caretakers {
			if c == caretakerKey {
				return nil
			}
		}
		primary.Caretakers = append(primary.Caretakers, caretakerKey)
		return nil
	})
}

// AccessibleAccounts lists the accounts that name email as a caretaker.
func (s *AccountService) AccessibleAccounts(email string) []AccessibleAccount {
	key := store.UserKey(email)
	out := []AccessibleAccount{}
	for _, u := range s.accounts.All() {
		for _, c := range u.Caretakers {
			if c == key {
				out = append(out, AccessibleAccount{Email: u.Email, FullName: u.FullName})
				break
			}
		}
	}
	return out
}
