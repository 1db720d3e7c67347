package token

import (
	"context"
	"math"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
	"opencure/internal/infra"
	"opencure/internal/sqlinline"
)

// Postgres keeps balances and allowances in token_balances and
// token_allowances. Every transfer runs in one transaction, so a failed
// debit leaves allowances untouched.
type Postgres struct {
	sql infra.TxExecutor
}

func NewPostgres(sql infra.TxExecutor) *Postgres {
	return &Postgres{sql: sql}
}

func (p *Postgres) BalanceOf(ctx context.Context, addr common.Address) (uint64, error) {
	return scanAmount(p.sql.QueryRow(ctx, sqlinline.QSelectTokenBalance, addr.Hex()))
}

func (p *Postgres) Allowance(ctx context.Context, owner, spender common.Address) (uint64, error) {
	return scanAmount(p.sql.QueryRow(ctx, sqlinline.QSelectTokenAllowance, owner.Hex(), spender.Hex()))
}

func (p *Postgres) Approve(ctx context.Context, owner, spender common.Address, amount uint64) error {
	if amount > math.MaxInt64 {
		return domain.ErrAmountOverflow
	}
	_, err := p.sql.Exec(ctx, sqlinline.QUpsertTokenAllowance, owner.Hex(), spender.Hex(), int64(amount))
	return err
}

func (p *Postgres) Mint(ctx context.Context, to common.Address, amount uint64) error {
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	n, err := toStorage(amount)
	if err != nil {
		return err
	}
	_, err = p.sql.Exec(ctx, sqlinline.QCreditTokenBalance, to.Hex(), n)
	return err
}

func (p *Postgres) Transfer(ctx context.Context, from, to common.Address, amount uint64) error {
	n, err := toStorage(amount)
	if err != nil {
		return err
	}
	return p.sql.InTx(ctx, func(tx infra.SQLExecutor) error {
		return move(ctx, tx, from, to, n)
	})
}

func (p *Postgres) TransferFrom(ctx context.Context, spender, from, to common.Address, amount uint64) error {
	n, err := toStorage(amount)
	if err != nil {
		return err
	}
	return p.sql.InTx(ctx, func(tx infra.SQLExecutor) error {
		tag, err := tx.Exec(ctx, sqlinline.QSpendTokenAllowance, from.Hex(), spender.Hex(), n)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrInsufficientAllowance
		}
		return move(ctx, tx, from, to, n)
	})
}

func move(ctx context.Context, tx infra.SQLExecutor, from, to common.Address, n int64) error {
	tag, err := tx.Exec(ctx, sqlinline.QDebitTokenBalance, from.Hex(), n)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientBalance
	}
	_, err = tx.Exec(ctx, sqlinline.QCreditTokenBalance, to.Hex(), n)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAmount(row rowScanner) (uint64, error) {
	var n int64
	if err := row.Scan(&n); err != nil {
		if infra.IsNoRows(err) {
			return 0, nil
		}
		return 0, err
	}
	if n < 0 {
		return 0, nil
	}
	return uint64(n), nil
}

// toStorage guards the bigint columns.
func toStorage(amount uint64) (int64, error) {
	if amount == 0 {
		return 0, domain.ErrInvalidAmount
	}
	if amount > math.MaxInt64 {
		return 0, domain.ErrAmountOverflow
	}
	return int64(amount), nil
}
