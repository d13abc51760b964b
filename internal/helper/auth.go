package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Auth struct {
	Secret string
	TTL    time.Duration
}

func SetupAuth(s string, ttl time.Duration) Auth {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return Auth{
		Secret: s,
		TTL:    ttl,
	}
}

type TokenClaims struct {
	MemberID  string
	Email     string
	Role      string
	SessionID string
}

// GenerateToken signs an HS256 token bound to a server-side session id.
func (a Auth) GenerateToken(c TokenClaims) (string, time.Time, error) {
	if c.MemberID == "" || c.Email == "" || c.SessionID == "" {
		return "", time.Time{}, errors.New("required inputs are missing to generate token")
	}

	now := time.Now()
	exp := now.Add(a.TTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"member_id": c.MemberID,
		"email":     c.Email,
		"role":      c.Role,
		"sid":       c.SessionID,
		"iat":       now.Unix(),
		"exp":       exp.Unix(),
	})

	tokenStr, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", time.Time{}, errors.New("unable to sign the token")
	}

	return tokenStr, exp, nil
}

func (a Auth) VerifyToken(tokenString string) (dto.AuthResponse, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return dto.AuthResponse{}, errors.New("missing token")
	}

	// "Bearer <token>" or a bare token
	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		parts := strings.SplitN(tokenString, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return dto.AuthResponse{}, errors.New("invalid token format")
		}
		tokenString = strings.TrimSpace(parts[1])
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dto.AuthResponse{}, errors.New("token expired")
		}
		return dto.AuthResponse{}, errors.New("token parse error")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return dto.AuthResponse{}, errors.New("invalid token claims")
	}

	expFloat, ok := claims["exp"].(float64)
	if !ok {
		return dto.AuthResponse{}, errors.New("missing expiry")
	}
	if float64(time.Now().Unix()) > expFloat {
		return dto.AuthResponse{}, errors.New("token expired")
	}

	memberID, _ := claims["member_id"].(string)
	email, _ := claims["email"].(string)
	sid, _ := claims["sid"].(string)
	if memberID == "" || sid == "" {
		return dto.AuthResponse{}, errors.New("invalid token claims")
	}
	role, _ := claims["role"].(string)
	iat, _ := claims["iat"].(float64)

	return dto.AuthResponse{
		MemberID:  memberID,
		Email:     email,
		Role:      role,
		SessionID: sid,
		Expiry:    expFloat,
		Iat:       iat,
	}, nil
}

// UserLocal is the fiber local the auth middleware stores claims under.
const UserLocal = "user"

var ErrNoCurrentUser = errors.New("missing auth user in context")

// CurrentUser returns the claims of an authenticated request.
func CurrentUser(ctx *fiber.Ctx) (dto.AuthResponse, error) {
	claims, ok := ctx.Locals(UserLocal).(dto.AuthResponse)
	if !ok || claims.MemberID == "" {
		return dto.AuthResponse{}, ErrNoCurrentUser
	}
	return claims, nil
}

func (a Auth) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (a Auth) VerifyPassword(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword(
		[]byte(hashed),
		[]byte(plain),
	); err != nil {
		return errors.New("invalid email or password")
	}
	return nil
}
