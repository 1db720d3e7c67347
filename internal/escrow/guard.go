package escrow

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
)

// onlyOwner refuses every caller but the owner. The owner is never the zero
// address, so a zero caller is refused here too.
func (a *Account) onlyOwner(caller common.Address) error {
	if caller != a.owner {
		return domain.ErrOnlyOwner
	}
	return nil
}

// IsOwner reports whether caller administers the account.
func (a *Account) IsOwner(caller common.Address) bool {
	return caller == a.owner
}

// transferError keeps ledger failures classified. Unclassified ledger errors
// (a dropped database connection, a cancelled context) become
// ErrTransferFailed.
func transferError(err error) error {
	var e *domain.Error
	if errors.As(err, &e) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
}
