package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/database"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/models"
	"github.com/feedbackdesk/feedbackdesk-backend/pkg/utils"
)

const userColumns = "id, name, email, password_hash, role, created_at"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser registers a new account. Role defaults to "user" when empty.
func CreateUser(ctx context.Context, name, email, password, role string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, validationErrorf("Please add all fields")
	}
	if role == "" {
		role = models.RoleUser
	}
	switch role {
	case models.RoleUser, models.RoleDeveloper, models.RoleAdmin:
	default:
		return nil, validationErrorf("Invalid role %q", role)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	row := database.PostgresDB.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, LOWER($2), $3, $4)
		RETURNING `+userColumns,
		name, strings.TrimSpace(email), hash, role)

	u, err := scanUser(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, validationErrorf("User already exists")
		}
		return nil, err
	}
	return u, nil
}

// AuthenticateUser verifies email/password and returns the account.
func AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	u, err := GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrNotAuthorized
	}
	ok, err := utils.VerifyPassword(password, u.PasswordHash)
	if err != nil || !ok {
		return nil, ErrNotAuthorized
	}
	return u, nil
}

// GetUserByID looks up a single account by id.
func GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := database.PostgresDB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// GetUserByEmail looks up a single account by email (case-insensitive).
func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := database.PostgresDB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = LOWER($1)", strings.TrimSpace(email))
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// ListUsersByRole returns all accounts with the given role, for the
// assignment roster.
func ListUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	return queryUsers(ctx, "SELECT "+userColumns+" FROM users WHERE role = $1 ORDER BY name", role)
}

// ListUsers returns every account, admin overview only.
func ListUsers(ctx context.Context) ([]models.User, error) {
	return queryUsers(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
}

func queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ResolveUserRefs batch-expands user ids to {id, name, email} references.
// Ids that no longer resolve are simply absent from the result.
func ResolveUserRefs(ctx context.Context, ids []string) (map[string]models.UserRef, error) {
	refs := make(map[string]models.UserRef)
	if len(ids) == 0 {
		return refs, nil
	}

	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	rows, err := database.PostgresDB.QueryContext(ctx,
		"SELECT id, name, email FROM users WHERE id = ANY($1::uuid[])", pq.Array(unique))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ref models.UserRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Email); err != nil {
			return nil, err
		}
		refs[ref.ID] = ref
	}
	return refs, rows.Err()
}
