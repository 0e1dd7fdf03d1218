package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/pkg/apperrors"
	"github.com/yigit/internflow/internal/pkg/dberrors"
)

var userColumns = []string{"u.id", "u.email", "u.password", "u.first_name", "u.last_name", "u.is_active", "u.created_at"}

// UserRepository handles database operations for users and their roles
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser retrieves a user and the roles they hold right now
func (r *UserRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, squirrel.Eq{"u.id": id})
}

// GetUserByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, squirrel.Expr("lower(u.email) = lower(?)", email))
}

func (r *UserRepository) getBy(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users u").Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storageError("failed to get user", err)
	}

	if user.Roles, err = r.rolesOf(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) rolesOf(ctx context.Context, userID int64) ([]models.Role, error) {
	sql, args, err := psql.Select("role").
		From("user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("role").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, storageError("failed to load user roles", err)
	}
	defer rows.Close()

	roles := make([]models.Role, 0, 1)
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role); err != nil {
			return nil, storageError("failed to scan user role", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to load user roles", err)
	}
	return roles, nil
}

// CreateUser inserts a user and its roles atomically
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return insertUser(ctx, tx, user)
	})
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func insertUser(ctx context.Context, q DBTX, user *models.User) error {
	sql, args, err := psql.Insert("users").
		Columns("email", "password", "first_name", "last_name", "is_active").
		Values(user.Email, user.Password, user.FirstName, user.LastName, user.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return err
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") ||
			dberrors.IsDuplicateConstraintError(err, "users_email_lower_key") {
			return apperrors.NewConflictError("email already registered")
		}
		return storageError("failed to create user", err)
	}

	if len(user.Roles) == 0 {
		return nil
	}
	insert := psql.Insert("user_roles").Columns("user_id", "role")
	for _, role := range user.Roles {
		insert = insert.Values(user.ID, role)
	}
	sql, args, err = insert.ToSql()
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return storageError("failed to assign user roles", err)
	}
	return nil
}

// ListUsersByRole returns active users currently holding role
func (r *UserRepository) ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	sql, args, err := psql.Select(userColumns...).
		From("users u").
		Join("user_roles ur ON ur.user_id = u.id").
		Where(squirrel.Eq{"ur.role": role, "u.is_active": true}).
		OrderBy("u.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, storageError("failed to list users", err)
	}

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, storageError("failed to scan user", err)
		}
		users = append(users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to list users", err)
	}

	// roles are loaded after the cursor is closed; a pgx connection runs one query at a time
	for _, u := range users {
		if u.Roles, err = r.rolesOf(ctx, u.ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}
