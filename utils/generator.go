package utils

import (
	"fmt"
	"strings"

	"github.com/vibralabs/vibra_backend/models"
	"gorm.io/gorm"
)

const usernameBaseLength = 10

// PairKey builds the canonical "min:max" key identifying an unordered pair of
// users. Both orderings of the same pair produce the same key.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// SlugifyUsername lowercases a display name and strips everything outside
// [a-z0-9], truncated to the base length. Falls back to "user" when nothing
// survives.
func SlugifyUsername(displayName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(displayName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() >= usernameBaseLength {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

// GenerateUniqueUsername derives a username from the display name, appending a
// numeric suffix until it is free.
func GenerateUniqueUsername(tx *gorm.DB, displayName string) (string, error) {
	base := SlugifyUsername(displayName)
	username := base

	for suffix := 0; ; suffix++ {
		if suffix > 0 {
			username = fmt.Sprintf("%s%d", base, suffix)
		}
		var user models.User
		err := tx.Where("username = ?", username).First(&user).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return username, nil
			}
			return "", err
		}
	}
}
