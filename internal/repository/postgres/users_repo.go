package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/enaya12q/smartlabs/internal/models"
	"github.com/enaya12q/smartlabs/internal/repository"
)

const userCols = `id, telegram_id, first_name, last_name, username, photo_url,
	auth_date, earnings, ads_viewed, referral_code, referrer_id, created_at, updated_at`

type usersRepo struct{ pool Querier }

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.LastName, &u.Username,
		&u.PhotoURL, &u.AuthDate, &u.Earnings, &u.AdsViewed, &u.ReferralCode,
		&u.ReferrerID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, repository.ErrNotFound
	}
	return u, err
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.ReferralCode == "" {
		u.ReferralCode = models.ReferralCodeFor(u.TelegramID)
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users(id, telegram_id, first_name, last_name, username, photo_url,
		        auth_date, referral_code, referrer_id)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING `+userCols,
		u.ID, u.TelegramID, u.FirstName, u.LastName, u.Username, u.PhotoURL,
		u.AuthDate, u.ReferralCode, u.ReferrerID,
	)
	return scanUser(row)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *usersRepo) GetByTelegramID(ctx context.Context, telegramID int64) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE telegram_id=$1`, telegramID))
}

func (r *usersRepo) GetByReferralCode(ctx context.Context, code string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE referral_code=$1`, code))
}

func (r *usersRepo) UpdateIdentity(ctx context.Context, u models.User) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET first_name=$2, last_name=$3, username=$4, photo_url=$5,
		        auth_date=$6, updated_at=now()
		  WHERE id=$1`,
		u.ID, u.FirstName, u.LastName, u.Username, u.PhotoURL, u.AuthDate,
	)
	return err
}

func (r *usersRepo) RecordAdView(ctx context.Context, userID string, reward, bonus decimal.Decimal, bonusEvery int64) (models.User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users
		    SET ads_viewed = ads_viewed + 1,
		        earnings = earnings + $2
		            + CASE WHEN (ads_viewed + 1) % $4 = 0 THEN $3 ELSE 0 END,
		        updated_at = now()
		  WHERE id = $1
		  RETURNING `+userCols,
		userID, reward, bonus, bonusEvery,
	)
	return scanUser(row)
}

func (r *usersRepo) CreditEarnings(ctx context.Context, userID string, amount decimal.Decimal) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET earnings = earnings + $2, updated_at = now() WHERE id = $1`,
		userID, amount,
	)
	return err
}

func (r *usersRepo) Search(ctx context.Context, term string) ([]models.User, error) {
	pattern := "%" + term + "%"
	args := []any{pattern}
	q := `SELECT ` + userCols + ` FROM users
	       WHERE username ILIKE $1 OR first_name ILIKE $1`
	if _, err := strconv.ParseInt(term, 10, 64); err == nil {
		q += ` OR telegram_id::text LIKE $1`
	}
	q += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.LastName, &u.Username,
			&u.PhotoURL, &u.AuthDate, &u.Earnings, &u.AdsViewed, &u.ReferralCode,
			&u.ReferrerID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
