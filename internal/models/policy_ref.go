package models

import "strings"

// PolicyRef is the policy-number string a Claim uses to point at its Policy.
// References compare by trimmed equality.
type PolicyRef string

func NewPolicyRef(s *string) PolicyRef {
	if s == nil {
		return ""
	}
	return PolicyRef(strings.TrimSpace(*s))
}

func (r PolicyRef) String() string {
	return strings.TrimSpace(string(r))
}

func (r PolicyRef) IsZero() bool {
	return r.String() == ""
}

// Matches reports whether the reference points at the given policy number
func (r PolicyRef) Matches(policyNumber *string) bool {
	if r.IsZero() || policyNumber == nil {
		return false
	}
	return r.String() == strings.TrimSpace(*policyNumber)
}

// Ptr returns the normalized reference as a nullable column value
func (r PolicyRef) Ptr() *string {
	if r.IsZero() {
		return nil
	}
	s := r.String()
	return &s
}
