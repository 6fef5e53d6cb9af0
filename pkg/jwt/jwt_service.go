package jwt

import (
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v4"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/utils"
	"strings"
	"time"
)

const tokenTTL = 24 * time.Hour

var ErrEmptySecret = errors.New("JWT_SECRET is not configured")

type (
	JWTService interface {
		GenerateTokenUser(userId, username, role string) (string, error)
		ValidateTokenUser(token string) (*jwt.Token, error)
		GetUserByToken(token string) (Claims, error)
	}

	// Claims is the identity carried by a user token.
	Claims struct {
		UserID   string
		Username string
		Role     string
	}

	jwtUserClaim struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		Role     string `json:"role"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
		now       func() time.Time
	}
)

func getSecretKey() string {
	return utils.GetConfig("JWT_SECRET")
}

// NewJWTService refuses to start without a secret: HMAC accepts an empty
// key, which would let anyone sign tokens.
func NewJWTService() (JWTService, error) {
	secret := getSecretKey()
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	return NewJWTServiceWithSecret(secret), nil
}

func NewJWTServiceWithSecret(secret string) JWTService {
	return &jwtService{
		secretKey: secret,
		issuer:    "PRICECROWD",
		now:       time.Now,
	}
}

func (j *jwtService) GenerateTokenUser(userId, username, role string) (string, error) {
	if j.secretKey == "" {
		return "", ErrEmptySecret
	}
	now := j.now()
	claims := jwtUserClaim{
		userId,
		username,
		role,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	if j.secretKey == "" {
		return nil, ErrEmptySecret
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ValidateTokenUser(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &jwtUserClaim{}, j.parseToken)
}

func (j *jwtService) GetUserByToken(token string) (Claims, error) {
	t_Token, err := j.ValidateTokenUser(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, domain.ErrTokenExpired
		}
		return Claims{}, domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return Claims{}, domain.ErrTokenInvalid
	}

	claims, ok := t_Token.Claims.(*jwtUserClaim)
	if !ok || claims.Issuer != j.issuer {
		return Claims{}, domain.ErrTokenInvalid
	}
	return Claims{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, nil
}
