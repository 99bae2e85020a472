package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

// Repository persists profiles in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, name, email, password_hash, phone, created_at`

func (r *Repository) Insert(ctx context.Context, profile Profile) (Profile, error) {
	profile.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx, `INSERT INTO profiles (id, name, email, password_hash, phone, created_at)
VALUES ($1,$2,$3,$4,$5,NOW()) RETURNING created_at`,
		profile.ID, profile.Name, profile.Email, profile.PasswordHash, profile.Phone).Scan(&profile.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
		}
		return Profile{}, err
	}
	return profile, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, id)
	return scanProfile(row)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email=$1`, email)
	return scanProfile(row)
}

func (r *Repository) Update(ctx context.Context, profile Profile) error {
	tag, err := r.pool.Exec(ctx, `UPDATE profiles SET name=$1, phone=$2 WHERE id=$3`, profile.Name, profile.Phone, profile.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: profile", httpx.ErrNotFound)
	}
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var profile Profile
	err := row.Scan(&profile.ID, &profile.Name, &profile.Email, &profile.PasswordHash, &profile.Phone, &profile.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, fmt.Errorf("%w: profile", httpx.ErrNotFound)
	}
	return profile, err
}
