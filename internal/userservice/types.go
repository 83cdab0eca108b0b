package userservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sushihentaime/inkpost/internal/common"
)

const (
	// AccessTokenTime is how long an issued bearer token stays valid.
	AccessTokenTime time.Duration = time.Hour
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m      *DBModel
	tokens *TokenManager
	mb     common.MessageProducer
	logger *slog.Logger
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Password never leaves the service in plain text. Only hash is persisted.
type Password struct {
	Plain string `json:"-"`
	hash  []byte
}

type Token struct {
	Plain  string    `json:"token"`
	Expiry time.Time `json:"expiry"`
}

type SignUpRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}
