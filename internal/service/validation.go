package service

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"showdown-vote/internal/constants"
	"showdown-vote/internal/domain"

	"github.com/google/uuid"
)

// Upstream record ids are 15 or 18 alphanumerics; fixtures and newer relays
// also send slugs and UUIDs.
var externalIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func ValidExternalID(id string) bool {
	return len(id) <= constants.ExternalIDMaxLength && externalIDPattern.MatchString(id)
}

func validUserID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(name, email string) (string, string, *DomainError) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > constants.NameMaxLength {
		return "", "", InvalidInput("name must be between 1 and 100 characters")
	}

	email = normalizeEmail(email)
	if email == "" || len(email) > constants.EmailMaxLength {
		return "", "", InvalidInput("email must be between 1 and 254 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", "", InvalidInput("email is not a valid address")
	}
	return name, email, nil
}

func parseChoice(raw string) (domain.Choice, bool) {
	c := domain.Choice(raw)
	return c, c.Valid()
}
