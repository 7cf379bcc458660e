// Package validation guards the storage key space. Usernames and document
// identifiers become "{username}:{document}" keys, so the separator must be
// rejected before anything reaches the store — the store itself performs no
// escaping.
package validation

import (
	"fmt"
	"strings"
)

const (
	// MaxUsernameLen caps usernames at a sane key size
	MaxUsernameLen = 128
	// MaxDocumentLen caps document identifiers; readers send hashes or
	// filenames, both well under this
	MaxDocumentLen = 512
)

// ValidateUsername checks that a username is usable as a storage key part
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if strings.ContainsRune(username, ':') {
		return fmt.Errorf("username must not contain ':'")
	}

	return nil
}

// ValidateDocument checks that a document identifier is usable as a storage
// key part
func ValidateDocument(document string) error {
	if document == "" {
		return fmt.Errorf("document cannot be empty")
	}

	if len(document) > MaxDocumentLen {
		return fmt.Errorf("document must not exceed %d characters", MaxDocumentLen)
	}

	if strings.ContainsRune(document, ':') {
		return fmt.Errorf("document must not contain ':'")
	}

	return nil
}
