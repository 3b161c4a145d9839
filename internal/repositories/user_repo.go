package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"circuitweb/internal/common"
	"circuitweb/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
}

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, firebase_uid, email, display_name, photo_url, phone_number, provider, created_at, updated_at, last_login_at`

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (firebase_uid, email, display_name, photo_url, phone_number, provider, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, user.UID, user.Email, user.DisplayName, user.PhotoURL, user.PhoneNumber,
		user.Provider, user.CreatedAt, user.UpdatedAt, user.LastLoginAt).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to insert user %s: %w", user.UID, err)
	}
	return nil
}

func (r *userRepo) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE firebase_uid = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, uid))
	if err != nil {
		return nil, notFoundOr(err, "user", uid)
	}
	return user, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	query := `
		UPDATE users
		SET email = $1, display_name = $2, photo_url = $3, phone_number = $4, provider = $5, updated_at = $6
		WHERE id = $7
	`
	tag, err := r.db.Exec(ctx, query, user.Email, user.DisplayName, user.PhotoURL, user.PhoneNumber, user.Provider, now, user.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("user", strconv.FormatInt(user.ID, 10))
	}
	user.UpdatedAt = &now
	return nil
}

// UpdateLastLogin only touches last_login_at; updated_at is left as is.
func (r *userRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("user", strconv.FormatInt(id, 10))
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.UID, &user.Email, &user.DisplayName, &user.PhotoURL, &user.PhoneNumber,
		&user.Provider, &user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}
