package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"twin-llm/internal/domain"
)

// ErrAvatarLimit indica que el usuario ya alcanzo el tope de avatares.
var ErrAvatarLimit = errors.New("avatar limit reached")

// AvatarRepository define el contrato de persistencia para avatares.
type AvatarRepository interface {
	// Create inserta el avatar solo si el dueno esta por debajo del tope;
	// el chequeo y la insercion son una sola sentencia, sin carrera
	// read-then-write.
	Create(ctx context.Context, avatar domain.Avatar) error
	Update(ctx context.Context, avatar domain.Avatar) error
	UpdatePersonality(ctx context.Context, id string, p domain.Personality) error
	UpdateCompositeImage(ctx context.Context, id, imageURL string) error
	GetByID(ctx context.Context, id string) (domain.Avatar, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.Avatar, error)
}

type PgAvatarRepository struct {
	pool *pgxpool.Pool
}

func NewPgAvatarRepository(pool *pgxpool.Pool) *PgAvatarRepository {
	return &PgAvatarRepository{pool: pool}
}

const avatarColumns = `
	id, user_id, avatar_type, first_name, last_name, gender,
	year_of_birth, year_of_death, birth_place, places_lived, ethnicity,
	photos, personality, composite_image, created_at, updated_at
`

func (r *PgAvatarRepository) Create(ctx context.Context, avatar domain.Avatar) error {
	const query = `
		INSERT INTO avatars (
			id, user_id, avatar_type, first_name, last_name, gender,
			year_of_birth, year_of_death, birth_place, places_lived, ethnicity,
			photos, personality, composite_image, created_at, updated_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		WHERE (SELECT COUNT(*) FROM avatars WHERE user_id = $2) < $17
	`

	personality, err := marshalPersonality(avatar.Personality)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, query,
		avatar.ID,
		avatar.UserID,
		avatar.AvatarType,
		avatar.FirstName,
		avatar.LastName,
		avatar.Gender,
		avatar.YearOfBirth,
		avatar.YearOfDeath,
		avatar.BirthPlace,
		avatar.PlacesLived,
		avatar.Ethnicity,
		avatar.Photos,
		personality,
		avatar.CompositeImage,
		avatar.CreatedAt,
		avatar.UpdatedAt,
		domain.MaxAvatarsPerUser,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAvatarLimit
	}
	return nil
}

func (r *PgAvatarRepository) Update(ctx context.Context, avatar domain.Avatar) error {
	const query = `
		UPDATE avatars
		SET avatar_type = $2, first_name = $3, last_name = $4, gender = $5,
		    year_of_birth = $6, year_of_death = $7, birth_place = $8,
		    places_lived = $9, ethnicity = $10, photos = $11, updated_at = $12
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		avatar.ID,
		avatar.AvatarType,
		avatar.FirstName,
		avatar.LastName,
		avatar.Gender,
		avatar.YearOfBirth,
		avatar.YearOfDeath,
		avatar.BirthPlace,
		avatar.PlacesLived,
		avatar.Ethnicity,
		avatar.Photos,
		avatar.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAvatarRepository) UpdatePersonality(ctx context.Context, id string, p domain.Personality) error {
	const query = `
		UPDATE avatars SET personality = $2, updated_at = NOW() WHERE id = $1
	`
	personality, err := marshalPersonality(p)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, id, personality)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAvatarRepository) UpdateCompositeImage(ctx context.Context, id, imageURL string) error {
	const query = `
		UPDATE avatars SET composite_image = $2, updated_at = NOW() WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, imageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAvatarRepository) GetByID(ctx context.Context, id string) (domain.Avatar, error) {
	const query = `SELECT ` + avatarColumns + ` FROM avatars WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanAvatar(row)
}

func (r *PgAvatarRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Avatar, error) {
	const query = `
		SELECT ` + avatarColumns + `
		FROM avatars
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var avatars []domain.Avatar
	for rows.Next() {
		avatar, err := scanAvatar(rows)
		if err != nil {
			return nil, err
		}
		avatars = append(avatars, avatar)
	}
	return avatars, rows.Err()
}

func scanAvatar(row pgx.Row) (domain.Avatar, error) {
	var (
		a           domain.Avatar
		personality []byte
	)
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.AvatarType,
		&a.FirstName,
		&a.LastName,
		&a.Gender,
		&a.YearOfBirth,
		&a.YearOfDeath,
		&a.BirthPlace,
		&a.PlacesLived,
		&a.Ethnicity,
		&a.Photos,
		&personality,
		&a.CompositeImage,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Avatar{}, err
	}
	if len(personality) > 0 {
		if err := json.Unmarshal(personality, &a.Personality); err != nil {
			return domain.Avatar{}, err
		}
	}
	return a, nil
}

func marshalPersonality(p domain.Personality) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}
