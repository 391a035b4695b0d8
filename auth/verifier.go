package auth

import (
	"fmt"

	"shelter-chat/domain"
	"shelter-chat/errors"
)

// Verifier validates bearer credentials and resolves them to identities.
// It is stateless: rejecting a credential leaves no trace anywhere.
type Verifier struct {
	key []byte
}

func NewVerifier(key []byte) *Verifier {
	return &Verifier{key: key}
}

// Verify returns the identity carried by the credential. An absent
// credential is its own rejection; anonymous access is not permitted.
func (v *Verifier) Verify(credential string) (domain.Identity, error) {
	if credential == "" {
		return domain.Identity{}, errors.ErrMissingCredential
	}

	claims, err := ValidateToken(v.key, credential)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidCredential, err)
	}

	return domain.Identity{
		ID:    claims.UserID,
		Name:  claims.Username,
		Email: claims.Email,
	}, nil
}
