package utils

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// SignupToken is a short-lived HS256 JWT issued when an email address has
// been verified.  It entitles its holder to complete registration for that
// address and nothing else.
type SignupToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// ErrInvalidSignupToken is returned for tokens that are expired, tampered
// with, signed differently, or missing the email claim.
var ErrInvalidSignupToken = errors.New("invalid signup token")

// NewSignupToken builds and signs a signup JWT bound to an email address.
// Claims are the verified email, expiration and issued-at.
func NewSignupToken(secret, email string, ttlMin int) (SignupToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "email": email,
        "exp":   exp.Unix(),
        "iat":   time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SignupToken{}, err
    }
    return SignupToken{Token: signed, Exp: exp}, nil
}

// ParseSignupToken validates a signup JWT and returns the verified email
// address it was bound to.  Any failure collapses to ErrInvalidSignupToken.
func ParseSignupToken(secret, raw string) (string, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything but HMAC.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidSignupToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return "", ErrInvalidSignupToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return "", ErrInvalidSignupToken
    }
    email, ok := claims["email"].(string)
    if !ok || email == "" {
        return "", ErrInvalidSignupToken
    }
    return email, nil
}
