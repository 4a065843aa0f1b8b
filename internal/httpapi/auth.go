package httpapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bakeshop/backend/internal/domain"
)

// UserStore is the slice of the repository the auth layer needs.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}

var errBadCredentials = errors.New("invalid credentials")

// AuthManager issues and validates access tokens, checks the manager PIN,
// and manages cashier accounts. It keeps a credential cache that is
// refreshed from the user store on login and on cashier admin calls, so
// accounts seeded or edited outside this process are picked up.
type AuthManager struct {
	mu       sync.RWMutex
	secret   []byte
	tokenTTL time.Duration
	pinHash  string
	store    UserStore
	accounts map[string]account
}

type account struct {
	passwordHash string
	role         string
	active       bool
	createdAt    time.Time
}

type accessClaims struct {
	jwtlib.RegisteredClaims
	Role string `json:"role"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, managerPIN string, store UserStore) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}

	m := &AuthManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		store:    store,
		accounts: make(map[string]account),
	}

	// The PIN is only ever held hashed. An empty PIN disables the
	// void/refund approval path entirely.
	if pin := strings.TrimSpace(managerPIN); pin != "" {
		if hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost); err == nil {
			m.pinHash = string(hash)
		}
	}

	// Startup runs before any request context exists.
	m.syncFromStore(context.Background())
	return m
}

func (m *AuthManager) Login(req domain.LoginRequest) (domain.LoginResponse, error) {
	m.syncFromStore(context.Background())

	username := strings.TrimSpace(req.Username)
	m.mu.RLock()
	acct, known := m.accounts[username]
	m.mu.RUnlock()

	if !known || !checkPassword(acct.passwordHash, req.Password) {
		return domain.LoginResponse{}, errBadCredentials
	}
	if !acct.active {
		return domain.LoginResponse{}, errors.New("account is inactive")
	}

	expiresAt := time.Now().UTC().Add(m.tokenTTL)
	claims := accessClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   username,
			Issuer:    "bakeshop",
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		},
		Role: acct.role,
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		AccessToken: token,
		Role:        acct.role,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

func (m *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &accessClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	return domain.Actor{Username: sub, Role: claims.Role}, nil
}

// ValidateManagerPIN checks the supervisor PIN required for void and
// refund approval. Always false when no PIN was configured.
func (m *AuthManager) ValidateManagerPIN(pin string) bool {
	pin = strings.TrimSpace(pin)
	if pin == "" || m.pinHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(m.pinHash), []byte(pin)) == nil
}

func (m *AuthManager) CreateCashier(req domain.CashierCreateRequest) (domain.CashierUser, error) {
	m.syncFromStore(context.Background())

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if err := validateCashierRequest(username, req.Password); err != nil {
		return domain.CashierUser{}, err
	}

	m.mu.RLock()
	_, taken := m.accounts[username]
	m.mu.RUnlock()
	if taken {
		return domain.CashierUser{}, fmt.Errorf("username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.CashierUser{}, fmt.Errorf("failed to hash password")
	}

	now := time.Now().UTC()
	if m.store != nil {
		err := m.store.CreateUser(context.Background(), domain.UserAccount{
			Username:  username,
			Password:  string(hash),
			Role:      "cashier",
			Active:    true,
			CreatedAt: now,
		})
		if err != nil {
			return domain.CashierUser{}, err
		}
	}

	m.mu.Lock()
	m.accounts[username] = account{
		passwordHash: string(hash),
		role:         "cashier",
		active:       true,
		createdAt:    now,
	}
	m.mu.Unlock()

	return domain.CashierUser{Username: username, Role: "cashier", Active: true, CreatedAt: now}, nil
}

func (m *AuthManager) ListCashiers() []domain.CashierUser {
	m.syncFromStore(context.Background())

	m.mu.RLock()
	out := make([]domain.CashierUser, 0, len(m.accounts))
	for username, acct := range m.accounts {
		if acct.role != "cashier" {
			continue
		}
		out = append(out, domain.CashierUser{
			Username:  username,
			Role:      acct.role,
			Active:    acct.active,
			CreatedAt: acct.createdAt,
		})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func validateCashierRequest(username, password string) error {
	if len(username) < 4 {
		return fmt.Errorf("username must be at least 4 characters")
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return fmt.Errorf("username must not contain spaces")
	}
	if strings.TrimSpace(password) == "" || len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

// syncFromStore refreshes the credential cache. Any legacy plain-text
// password found in the store is rehashed and written back.
func (m *AuthManager) syncFromStore(ctx context.Context) {
	if m.store == nil {
		return
	}
	users, err := m.store.ListUsers(ctx)
	if err != nil || len(users) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range users {
		username := strings.ToLower(strings.TrimSpace(u.Username))
		if username == "" {
			continue
		}
		hash := u.Password
		if !looksLikeBcrypt(hash) {
			if rehashed, err := bcrypt.GenerateFromPassword([]byte(hash), bcrypt.DefaultCost); err == nil {
				hash = string(rehashed)
				_ = m.store.UpdateUserPassword(ctx, username, hash)
			}
		}
		m.accounts[username] = account{
			passwordHash: hash,
			role:         u.Role,
			active:       u.Active,
			createdAt:    u.CreatedAt,
		}
	}
}

func checkPassword(storedHash, input string) bool {
	if storedHash == "" || strings.TrimSpace(input) == "" || !looksLikeBcrypt(storedHash) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(input)) == nil
}

func looksLikeBcrypt(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
