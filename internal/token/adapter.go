package token

// ValidatorAdapter exposes the token service through the middleware's
// validator interface.
type ValidatorAdapter struct {
	service *Service
}

func NewValidatorAdapter(service *Service) *ValidatorAdapter {
	return &ValidatorAdapter{service: service}
}

// ValidateToken verifies the token and returns the caller ID it carries.
func (a *ValidatorAdapter) ValidateToken(tokenString string) (string, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return "", err
	}
	return claims.CallerID, nil
}
