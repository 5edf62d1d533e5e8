package users

const (
	queryFindByID = `
		SELECT id, email, name, tier, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	queryFindByEmail = `
		SELECT id, email, name, tier, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	queryCreate = `
		INSERT INTO users (id, email, name, tier)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, name, tier, created_at, updated_at
	`
)
