package models

import "strings"

// Identity is the resolved signed-in publisher as issued by the identity provider.
// It is always passed explicitly; nothing in the core reads it from ambient state.
type Identity struct {
	OwnerKey    string `json:"owner_key"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Email       string `json:"email"`
}

// EmailDomain returns the lower-cased domain part of the identity's email.
func (i *Identity) EmailDomain() string {
	if i == nil {
		return ""
	}
	at := strings.LastIndex(i.Email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(i.Email[at+1:])
}

// Resolved reports whether the identity carries a usable owner key.
func (i *Identity) Resolved() bool {
	return i != nil && strings.TrimSpace(i.OwnerKey) != ""
}
