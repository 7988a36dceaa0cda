package jwttoken

import (
	authmw "procurement/pkg/platform/middleware/auth"
)

// JWTServiceAdapter narrows JWTService to the claims the caller middleware
// reads: the subject principal and the token id for log correlation.
type JWTServiceAdapter struct {
	service *JWTService
}

var _ authmw.JWTValidator = (*JWTServiceAdapter)(nil)

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{Principal: claims.Subject, JTI: claims.ID}, nil
}
