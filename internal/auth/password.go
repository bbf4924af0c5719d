package auth

import "golang.org/x/crypto/bcrypt"

func clampCost(cost int) int {
	switch {
	case cost < bcrypt.MinCost:
		return bcrypt.DefaultCost
	case cost > bcrypt.MaxCost:
		return bcrypt.MaxCost
	}
	return cost
}

// HashPassword hashes a plaintext password. Costs outside bcrypt's range fall back to the default.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), clampCost(cost))
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// NeedsRehash reports whether hashed was produced with a cost other than the configured one.
func NeedsRehash(hashed string, cost int) bool {
	current, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		return true
	}
	return current != clampCost(cost)
}
