package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"agroplan.io/agroplan/internal/domain"
)

const accountColumns = `id, phone, name, role, password_hash, created_at`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var (
		a    domain.Account
		role string
		hash pgtype.Text
	)
	if err := row.Scan(&a.ID, &a.Phone, &a.Name, &role, &hash, &a.CreatedAt); err != nil {
		return domain.Account{}, err
	}
	a.Role = domain.Role(role)
	a.PasswordHash = hash.String
	return a, nil
}

const getAccount = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

func (q *Queries) GetAccount(ctx context.Context, id int64) (domain.Account, error) {
	return scanAccount(q.db.QueryRow(ctx, getAccount, id))
}

const getAccountByPhone = `SELECT ` + accountColumns + ` FROM accounts WHERE phone = $1`

func (q *Queries) GetAccountByPhone(ctx context.Context, phone string) (domain.Account, error) {
	return scanAccount(q.db.QueryRow(ctx, getAccountByPhone, phone))
}

const upsertAccount = `
INSERT INTO accounts (phone, name, role, password_hash)
VALUES ($1, $2, $3, NULLIF($4, ''))
ON CONFLICT (phone) DO UPDATE
   SET name = EXCLUDED.name,
       role = EXCLUDED.role,
       password_hash = COALESCE(EXCLUDED.password_hash, accounts.password_hash)
RETURNING ` + accountColumns

// UpsertAccount creates the account for phone or refreshes its name, role
// and password hash. An empty hash keeps the stored one.
func (q *Queries) UpsertAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	return scanAccount(q.db.QueryRow(ctx, upsertAccount, a.Phone, a.Name, string(a.Role), a.PasswordHash))
}

const countAccountsByRole = `SELECT count(*) FROM accounts WHERE role = $1`

func (q *Queries) CountAccountsByRole(ctx context.Context, role domain.Role) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countAccountsByRole, string(role)).Scan(&n)
	return n, err
}
