package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 7 * 24 * time.Hour

type JWT struct {
	secret []byte
	now    func() time.Time
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

// Principal is the verified caller attached to a request.
type Principal struct {
	ProfileID uuid.UUID
	Role      Role
}

func (p Principal) IsModerator() bool { return p.Role == RoleModerator }

func (j *JWT) Sign(profileID uuid.UUID, role Role) (string, error) {
	now := j.now()
	claims := jwt.MapClaims{
		"sub":  profileID.String(),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

func (j *JWT) Verify(tokenStr string) (Principal, error) {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil || !t.Valid {
		return Principal{}, errors.New("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("invalid claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Principal{}, errors.New("missing sub")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return Principal{}, errors.New("invalid sub")
	}

	roleStr, _ := claims["role"].(string)
	role, err := ParseRole(roleStr)
	if err != nil {
		return Principal{}, errors.New("invalid role")
	}
	return Principal{ProfileID: id, Role: role}, nil
}
