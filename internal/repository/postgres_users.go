package repository

import (
	"context"
	"fmt"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

const userColumns = `id, first_name, last_name, email, password_hash, address, country, role, blocked, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Address, &u.Country, &u.Role, &u.Blocked, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (q *pgQueries) CreateUser(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (first_name, last_name, email, password_hash, address, country, role, blocked)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	err := q.db.QueryRowContext(ctx, query,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Address, u.Country, u.Role, u.Blocked,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return mapWriteError(err, "insert user")
	}
	return nil
}

func (q *pgQueries) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return u, nil
}

func (q *pgQueries) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return users, nil
}

func (q *pgQueries) UpdateUser(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET first_name = $2, last_name = $3, email = $4, address = $5, country = $6, role = $7
	          WHERE id = $1`
	res, err := q.db.ExecContext(ctx, query, u.ID, u.FirstName, u.LastName, u.Email, u.Address, u.Country, u.Role)
	if err != nil {
		return mapWriteError(err, "update user")
	}
	return expectAffected(res, "user", u.ID)
}

func (q *pgQueries) SetUserBlocked(ctx context.Context, id int64, blocked bool) error {
	res, err := q.db.ExecContext(ctx, `UPDATE users SET blocked = $2 WHERE id = $1`, id, blocked)
	if err != nil {
		return fmt.Errorf("update user blocked: %w", err)
	}
	return expectAffected(res, "user", id)
}

func (q *pgQueries) DeleteUser(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected(res, "user", id)
}
