package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const tokenAudience = "userauth-actor"

var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenSignature = errors.New("signature is invalid")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrNoActor        = errors.New("token carries no actor id")
)

// ActorClaims — claims токена, которым подписываются административные вызовы.
// Автор операции берется из actor_id, а если его нет — из sub.
type ActorClaims struct {
	ActorID uint `json:"actor_id,omitempty"`
	jwt.RegisteredClaims
}

// Actor возвращает id автора операции
func (c *ActorClaims) Actor() (uint, error) {
	if c.ActorID != 0 {
		return c.ActorID, nil
	}
	if c.Subject == "" {
		return 0, ErrNoActor
	}
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrNoActor
	}
	return uint(id), nil
}

// JWTService выпускает и проверяет HS256 токены
type JWTService struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewJWTService создает сервис; пустой секрет не допускается
func NewJWTService(secret string, expiration time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &JWTService{secret: []byte(secret), expiration: expiration, now: time.Now}, nil
}

// GenerateToken выпускает токен для actorID
func (s *JWTService) GenerateToken(actorID uint) (string, error) {
	if actorID == 0 {
		return "", ErrNoActor
	}
	now := s.now()
	claims := ActorClaims{
		ActorID: actorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(actorID), 10),
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken проверяет подпись и срок действия и возвращает claims
func (s *JWTService) ParseToken(tokenString string) (*ActorClaims, error) {
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, ErrTokenMalformed
			case ve.Errors&jwt.ValidationErrorExpired != 0:
				return nil, ErrTokenExpired
			case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				return nil, ErrTokenSignature
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if !claims.VerifyAudience(tokenAudience, false) {
		return nil, fmt.Errorf("%w: wrong audience", ErrTokenInvalid)
	}
	return claims, nil
}
