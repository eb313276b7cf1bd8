package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/Spok95/school-discipline/internal/models"
)

// Arrays are read back as a comma list: the same SELECT then works with both pgx and lib/pq.
const userCols = `id, display_name, email, role, array_to_string(assigned_classes, ','), password_hash, is_active, created_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	var classes string
	err := row.Scan(&u.ID, &u.DisplayName, &u.Email, &u.Role, &classes,
		&u.PasswordHash, &u.IsActive, &u.CreatedAt)
	u.AssignedClasses = splitList(classes)
	return u, err
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// CreateUser stores the profile and its initial claims together.
func (s *Store) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.AssignedClasses == nil {
		u.AssignedClasses = []string{}
	}
	var out models.User
	err := WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		out, err = scanUser(tx.QueryRowContext(ctx, `
			INSERT INTO users (id, display_name, email, role, assigned_classes, password_hash, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE)
			RETURNING `+userCols,
			u.ID, u.DisplayName, u.Email, string(u.Role), pq.Array(u.AssignedClasses), u.PasswordHash))
		if err != nil {
			return mapErr(err, "user", u.Email)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_claims (user_id, role, assigned_classes) VALUES ($1, $2, $3)`,
			u.ID, string(u.Role), pq.Array(u.AssignedClasses))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "user", id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, mapErr(err, "user", email)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) GetClaims(ctx context.Context, userID string) (*models.UserClaims, error) {
	var c models.UserClaims
	var classes string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, role, array_to_string(assigned_classes, ','), updated_at
		FROM user_claims WHERE user_id = $1`, userID,
	).Scan(&c.UserID, &c.Role, &classes, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err, "claims", userID)
	}
	c.AssignedClasses = splitList(classes)
	return &c, nil
}

// SetClaims replaces the authoritative claims and mirrors role/classes into the profile
// for display.
func (s *Store) SetClaims(ctx context.Context, c models.UserClaims) error {
	if c.AssignedClasses == nil {
		c.AssignedClasses = []string{}
	}
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE users SET role = $2, assigned_classes = $3 WHERE id = $1`,
			c.UserID, string(c.Role), pq.Array(c.AssignedClasses))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return mapErr(sql.ErrNoRows, "user", c.UserID)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_claims (user_id, role, assigned_classes, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (user_id) DO UPDATE
			SET role = EXCLUDED.role, assigned_classes = EXCLUDED.assigned_classes, updated_at = now()`,
			c.UserID, string(c.Role), pq.Array(c.AssignedClasses))
		return err
	})
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
