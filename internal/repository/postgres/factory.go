package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enaya12q/smartlabs/internal/repository"
)

// Querier is the slice of pgxpool.Pool the repositories use. pgxmock's pool
// interface satisfies it too, which is what the repo tests run against.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ Querier = (*pgxpool.Pool)(nil)

type Repositories struct {
	Users       repository.Users
	Withdrawals repository.Withdrawals
	AuditLogs   repository.AuditLogs
}

func NewRepositories(pool Querier) Repositories {
	return Repositories{
		Users:       &usersRepo{pool},
		Withdrawals: &withdrawalsRepo{pool},
		AuditLogs:   &auditLogsRepo{pool},
	}
}
