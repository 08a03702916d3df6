package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username must be 3-24 characters")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

// User is one registered player.
type User struct {
	PlayerID     string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Registry holds registered users in memory, keyed by lowercase username.
type Registry struct {
	mu         sync.RWMutex
	byUsername map[string]*User
	cost       int
	logger     *zap.Logger
}

// NewRegistry creates an empty registry hashing passwords at the given
// bcrypt cost.
func NewRegistry(bcryptCost int, logger *zap.Logger) *Registry {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Registry{
		byUsername: make(map[string]*User),
		cost:       bcryptCost,
		logger:     logger,
	}
}

// Register creates a new user. The username is case-insensitive unique.
func (r *Registry) Register(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 24 {
		return nil, ErrInvalidUsername
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return nil, err
	}

	key := strings.ToLower(username)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byUsername[key]; taken {
		return nil, ErrUserExists
	}
	user := &User{
		PlayerID:     uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	r.byUsername[key] = user

	r.logger.Info("user registered",
		zap.String("player_id", user.PlayerID),
		zap.String("username", user.Username),
	)
	return user, nil
}

// Authenticate checks the credentials and returns the user on success.
func (r *Registry) Authenticate(username, password string) (*User, error) {
	r.mu.RLock()
	user := r.byUsername[strings.ToLower(strings.TrimSpace(username))]
	r.mu.RUnlock()

	if user == nil {
		// Burn a comparison anyway so missing users cost the same as wrong
		// passwords.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Lookup returns the user for a player id, or nil.
func (r *Registry) Lookup(playerID string) *User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.byUsername {
		if user.PlayerID == playerID {
			return user
		}
	}
	return nil
}

// dummyHash is a valid bcrypt hash of an unguessable value, used to equalize
// timing for unknown usernames.
var dummyHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}()
