package sqlite

import (
	"context"
	"time"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, firstname, lastname, password_hash, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	if u.Roles, err = r.roleNames(ctx, u.ID); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	if u.Roles, err = r.roleNames(ctx, u.ID); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, firstname, lastname, password_hash)
		 VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Firstname, u.Lastname, u.PasswordHash)
	return mapConstraint(err)
}

func (r *usersRepo) AttachRole(ctx context.Context, userID, roleID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users_roles (user_id, role_id) VALUES (?, ?)`,
		userID, roleID)
	return mapConstraint(err)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

// roleNames loads the names of every role attached to the user, in stable
// name order.
func (r *usersRepo) roleNames(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ro.name
		 FROM roles ro
		 JOIN users_roles ur ON ur.role_id = ro.id
		 WHERE ur.user_id = ?
		 ORDER BY ro.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&u.ID, &u.Email, &u.Firstname, &u.Lastname, &u.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = createdAt
	u.UpdatedAt = updatedAt
	return u, nil
}
