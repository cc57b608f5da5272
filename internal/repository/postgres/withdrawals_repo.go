package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/enaya12q/smartlabs/internal/models"
	"github.com/enaya12q/smartlabs/internal/repository"
)

const withdrawalCols = `w.id, w.user_id, u.username, w.amount, w.ton_wallet_address, w.status, w.created_at`

type withdrawalsRepo struct{ pool Querier }

func scanWithdrawal(row pgx.Row) (models.Withdrawal, error) {
	var w models.Withdrawal
	err := row.Scan(&w.ID, &w.UserID, &w.Username, &w.Amount, &w.TonWalletAddress, &w.Status, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Withdrawal{}, repository.ErrNotFound
	}
	return w, err
}

func (r *withdrawalsRepo) CreateFromBalance(ctx context.Context, userID, wallet string) (models.Withdrawal, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return models.Withdrawal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var amount decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT earnings FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Withdrawal{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Withdrawal{}, err
	}
	if !amount.IsPositive() {
		return models.Withdrawal{}, repository.ErrNothingToWithdraw
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET earnings = 0, updated_at = now() WHERE id=$1`, userID); err != nil {
		return models.Withdrawal{}, err
	}

	id := uuid.NewString()
	row := tx.QueryRow(ctx,
		`INSERT INTO withdrawals(id, user_id, amount, ton_wallet_address, status)
		 VALUES($1,$2,$3,$4,'pending')
		 RETURNING id, user_id, '' AS username, amount, ton_wallet_address, status, created_at`,
		id, userID, amount, wallet,
	)
	w, err := scanWithdrawal(row)
	if err != nil {
		return models.Withdrawal{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Withdrawal{}, err
	}
	return w, nil
}

func (r *withdrawalsRepo) GetByID(ctx context.Context, id string) (models.Withdrawal, error) {
	return scanWithdrawal(r.pool.QueryRow(ctx,
		`SELECT `+withdrawalCols+`
		   FROM withdrawals w JOIN users u ON u.id = w.user_id
		  WHERE w.id=$1`, id))
}

func (r *withdrawalsRepo) SetStatus(ctx context.Context, id string, status models.WithdrawalStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE withdrawals SET status=$2 WHERE id=$1 AND status='pending'`,
		id, status,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *withdrawalsRepo) Search(ctx context.Context, term string) ([]models.Withdrawal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+withdrawalCols+`
		   FROM withdrawals w JOIN users u ON u.id = w.user_id
		  WHERE u.username ILIKE $1 OR w.ton_wallet_address ILIKE $1 OR w.status::text = $2
		  ORDER BY w.created_at DESC LIMIT 200`,
		"%"+term+"%", term,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		if err := rows.Scan(&w.ID, &w.UserID, &w.Username, &w.Amount, &w.TonWalletAddress, &w.Status, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
