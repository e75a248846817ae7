package helpers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingSecret   = errors.New("jwt signing secret is not configured")
	ErrMissingSubject  = errors.New("token has no subject")
	ErrUnsupportedAlgo = errors.New("unsupported signing algorithm")
)

// reserved claims are owned by the manager and cannot be overridden by extra claims
var reservedClaims = map[string]struct{}{"sub": {}, "iat": {}, "exp": {}, "nbf": {}}

// JWTManager issues and verifies HMAC-signed access tokens.
// It is built once at startup and shared read-only by every request.
type JWTManager struct {
	Secret []byte
	Method jwt.SigningMethod
	TTL    time.Duration
	Logger *logrus.Logger
	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewJWTManager(secret, algorithm string, ttl time.Duration, logger *logrus.Logger) (*JWTManager, error) {
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgo, algorithm)
	}
	return &JWTManager{
		Secret: []byte(secret),
		Method: method,
		TTL:    ttl,
		Logger: logger,
		Now:    time.Now,
	}, nil
}

// VerifiedToken is what a successfully verified token carries.
type VerifiedToken struct {
	Subject   string
	Claims    jwt.MapClaims
	ExpiresAt time.Time
}

// UserID returns the auxiliary user_id claim when present.
func (v VerifiedToken) UserID() (int64, bool) {
	switch id := v.Claims["user_id"].(type) {
	case float64:
		return int64(id), true
	case int64:
		return id, true
	default:
		return 0, false
	}
}

func (m *JWTManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Issue signs a token for subject that expires ttl from now. Extra claims are
// embedded as-is except for the registered names the manager controls.
func (m *JWTManager) Issue(subject string, extra map[string]any, ttl time.Duration) (string, time.Time, error) {
	if len(m.Secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, ErrMissingSubject
	}
	now := m.now()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{}
	for k, v := range extra {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(exp)

	s, err := jwt.NewWithClaims(m.Method, claims).SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// IssueAccessToken issues a token with the configured default TTL.
func (m *JWTManager) IssueAccessToken(subject string, extra map[string]any) (string, time.Time, error) {
	return m.Issue(subject, extra, m.TTL)
}

// Verify checks signature, algorithm and expiry (now < exp). Every failure
// reason is logged and collapses into ok=false.
func (m *JWTManager) Verify(tokenStr string) (VerifiedToken, bool) {
	vt, err := m.parse(tokenStr)
	if err != nil {
		if m.Logger != nil {
			m.Logger.WithField("reason", failureReason(err)).WithError(err).Warn("token verification failed")
		}
		return VerifiedToken{}, false
	}
	return vt, true
}

func (m *JWTManager) parse(tokenStr string) (VerifiedToken, error) {
	if len(m.Secret) == 0 {
		return VerifiedToken{}, ErrMissingSecret
	}
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{m.Method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return VerifiedToken{}, err
	}
	if !tkn.Valid {
		return VerifiedToken{}, errors.New("invalid token")
	}
	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return VerifiedToken{}, ErrMissingSubject
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return VerifiedToken{}, jwt.ErrTokenRequiredClaimMissing
	}
	return VerifiedToken{Subject: sub, Claims: claims, ExpiresAt: exp.Time}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	case errors.Is(err, ErrMissingSubject):
		return "missing_subject"
	case errors.Is(err, ErrMissingSecret):
		return "missing_secret"
	default:
		return "invalid"
	}
}
