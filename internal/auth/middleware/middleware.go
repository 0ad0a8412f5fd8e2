package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-gradescale/internal/rbac"
)

type AuthService struct {
	hmac []byte
	ttl  time.Duration
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{hmac: []byte(secret), ttl: 8 * time.Hour}
}

type Claims struct {
	Sub     string   `json:"sub"`
	Role    string   `json:"role"` // "admin", "teacher" or "student"
	Courses []string `json:"courses,omitempty"`
	jwt.RegisteredClaims
}

// IssueJWT signs a token for sub. Courses, when given, limit the token to
// those courses.
func (a *AuthService) IssueJWT(sub, role string, courses ...string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:     sub,
		Role:    role,
		Courses: courses,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mindengage-gradescale",
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

// Login decides who may sign in locally.
type Login struct {
	AdminUser     string
	AdminPassHash string // bcrypt
	// AllowDev accepts username == password for teacher and student roles.
	AllowDev bool
}

// POST /auth/login  { "username": "...", "password": "...", "role": "teacher|student", "courses": ["..."] }
func LoginHandler(a *AuthService, l Login) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string   `json:"role"`
			Courses  []string `json:"courses"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		role := ""
		var courses []string
		switch {
		case l.AdminUser != "" && req.Username == l.AdminUser:
			if bcrypt.CompareHashAndPassword([]byte(l.AdminPassHash), []byte(req.Password)) == nil {
				role = string(rbac.RoleAdmin)
			}
		case l.AllowDev && req.Username != "" && req.Username == req.Password &&
			(req.Role == string(rbac.RoleTeacher) || req.Role == string(rbac.RoleStudent)):
			role, courses = req.Role, req.Courses
		}
		if role == "" {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(req.Username, role, courses...)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": role})
	}
}

// JWTMiddleware verifies the bearer token and puts the caller in the request
// context as an rbac.Principal.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := rbac.WithPrincipal(r.Context(), rbac.Principal{
				Subject: c.Sub,
				Role:    rbac.Role(c.Role),
				Courses: c.Courses,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
