package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/silverbackhw/portal-sync/internal/models"
	"github.com/silverbackhw/portal-sync/internal/repository"
)

// CustomerLookup answers whether an email owns policies as a customer
type CustomerLookup interface {
	ExistsByCustomerEmail(ctx context.Context, email string) (bool, error)
}

// UserTagger tags portal users that are RE Pros. A user that also holds
// policies as a customer is tagged Combo.
type UserTagger struct {
	users    UserRepository
	policies CustomerLookup
}

func NewUserTagger(users UserRepository, policies CustomerLookup) *UserTagger {
	return &UserTagger{
		users:    users,
		policies: policies,
	}
}

// Tag retags the users matching the given RE Pro emails.
// Emails without a user are skipped; failures are reported per email.
func (t *UserTagger) Tag(ctx context.Context, emails []string) (int, []RecordError) {
	var (
		tagged int
		errs   []RecordError
		seen   = make(map[string]bool)
	)

	for _, email := range emails {
		key := strings.ToLower(strings.TrimSpace(email))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		changed, err := t.tagOne(ctx, email)
		if err != nil {
			log.Printf("[tagger] Failed to tag user %s: %v", email, err)
			errs = append(errs, RecordError{Identifier: email, Error: err.Error()})
			continue
		}
		if changed {
			tagged++
		}
	}

	if tagged > 0 {
		log.Printf("[tagger] Retagged %d users", tagged)
	}
	return tagged, errs
}

func (t *UserTagger) tagOne(ctx context.Context, email string) (bool, error) {
	user, err := t.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	hasPolicies, err := t.policies.ExistsByCustomerEmail(ctx, email)
	if err != nil {
		return false, err
	}

	customerType := models.CustomerTypeREPro
	if hasPolicies {
		customerType = models.CustomerTypeCombo
	}

	if user.CustomerType != nil && *user.CustomerType == customerType {
		return false, nil
	}

	if err := t.users.UpdateCustomerType(ctx, user.ID, customerType); err != nil {
		return false, err
	}

	log.Printf("[tagger] Tagged %s as %s", email, customerType)
	return true, nil
}
