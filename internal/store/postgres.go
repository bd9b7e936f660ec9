package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"challengeTrackerAPI/internal/types/challenge"
	"challengeTrackerAPI/internal/types/participant"
	"challengeTrackerAPI/internal/types/progress"
	"challengeTrackerAPI/internal/types/user"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		password TEXT NOT NULL,
		avatar_color TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS challenges (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		target_value DOUBLE PRECISION NOT NULL,
		unit TEXT NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS participants (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		challenge_id BIGINT NOT NULL REFERENCES challenges(id),
		current_value DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS participants_challenge_id_idx ON participants (challenge_id)`,
	`CREATE TABLE IF NOT EXISTS progress_entries (
		id BIGSERIAL PRIMARY KEY,
		participant_id BIGINT NOT NULL REFERENCES participants(id),
		value DOUBLE PRECISION NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS progress_entries_participant_id_idx ON progress_entries (participant_id)`,
}

// PostgresStore is the Store backed by a pgx connection pool.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: pool}, nil
}

// Migrate creates the tables if they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, password, avatarColor string) (*user.User, error) {
	u := &user.User{Username: username, Password: password, AvatarColor: avatarColor}
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (username, password, avatar_color) VALUES ($1, $2, $3) RETURNING id`,
		username, password, avatarColor,
	).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*user.User, error) {
	return s.queryUser(ctx, `SELECT id, username, password, avatar_color FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.queryUser(ctx, `SELECT id, username, password, avatar_color FROM users WHERE username = $1 ORDER BY id LIMIT 1`, username)
}

func (s *PostgresStore) queryUser(ctx context.Context, query string, arg any) (*user.User, error) {
	var u user.User
	err := s.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Password, &u.AvatarColor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %v: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, limit int) ([]*user.User, error) {
	query := `SELECT id, username, password, avatar_color FROM users ORDER BY id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.AvatarColor); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

const challengeColumns = `id, title, target_value, unit, start_date, end_date, is_completed, created_at`

func scanChallenge(row pgx.Row) (*challenge.Challenge, error) {
	var c challenge.Challenge
	err := row.Scan(&c.ID, &c.Title, &c.TargetValue, &c.Unit, &c.StartDate, &c.EndDate, &c.IsCompleted, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) CreateChallenge(ctx context.Context, title string, targetValue float64, unit string, startDate, endDate time.Time) (*challenge.Challenge, error) {
	c, err := scanChallenge(s.db.QueryRow(ctx, `
		INSERT INTO challenges (title, target_value, unit, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+challengeColumns,
		title, targetValue, unit, startDate, endDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) CreateChallengeWithParticipants(ctx context.Context, title string, targetValue float64, unit string, startDate, endDate time.Time, userIDs []int64) (*challenge.Challenge, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, userID := range userIDs {
		if err := requireRow(ctx, tx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID, "user"); err != nil {
			return nil, err
		}
	}

	c, err := scanChallenge(tx.QueryRow(ctx, `
		INSERT INTO challenges (title, target_value, unit, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+challengeColumns,
		title, targetValue, unit, startDate, endDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	for _, userID := range userIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO participants (user_id, challenge_id) VALUES ($1, $2)`,
			userID, c.ID,
		); err != nil {
			return nil, fmt.Errorf("failed to add participant %d: %w", userID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit challenge: %w", err)
	}
	return c, nil
}

// requireRow runs an EXISTS query for id and maps a false result to ErrNotFound.
func requireRow(ctx context.Context, tx pgx.Tx, query string, id int64, kind string) error {
	var exists bool
	if err := tx.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check %s: %w", kind, err)
	}
	if !exists {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) GetChallenge(ctx context.Context, id int64) (*challenge.Challenge, error) {
	c, err := scanChallenge(s.db.QueryRow(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("challenge %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListChallenges(ctx context.Context) ([]*challenge.Challenge, error) {
	rows, err := s.db.Query(ctx, `SELECT `+challengeColumns+` FROM challenges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	challenges := []*challenge.Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

func (s *PostgresStore) SetChallengeCompletion(ctx context.Context, id int64, completed bool) (*challenge.Challenge, error) {
	c, err := scanChallenge(s.db.QueryRow(ctx,
		`UPDATE challenges SET is_completed = $2 WHERE id = $1 RETURNING `+challengeColumns,
		id, completed,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("challenge %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update challenge status: %w", err)
	}
	return c, nil
}

const participantColumns = `id, user_id, challenge_id, current_value, last_updated`

func scanParticipant(row pgx.Row) (*participant.Participant, error) {
	var p participant.Participant
	if err := row.Scan(&p.ID, &p.UserID, &p.ChallengeID, &p.CurrentValue, &p.LastUpdated); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) AddParticipant(ctx context.Context, userID, challengeID int64) (*participant.Participant, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := requireRow(ctx, tx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID, "user"); err != nil {
		return nil, err
	}
	if err := requireRow(ctx, tx, `SELECT EXISTS (SELECT 1 FROM challenges WHERE id = $1)`, challengeID, "challenge"); err != nil {
		return nil, err
	}

	p, err := scanParticipant(tx.QueryRow(ctx,
		`INSERT INTO participants (user_id, challenge_id) VALUES ($1, $2) RETURNING `+participantColumns,
		userID, challengeID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit participant: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetParticipant(ctx context.Context, id int64) (*participant.Participant, error) {
	p, err := scanParticipant(s.db.QueryRow(ctx, `SELECT `+participantColumns+` FROM participants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("participant %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindParticipant(ctx context.Context, userID, challengeID int64) (*participant.Participant, error) {
	p, err := scanParticipant(s.db.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE user_id = $1 AND challenge_id = $2 ORDER BY id LIMIT 1`,
		userID, challengeID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("participant for user %d in challenge %d: %w", userID, challengeID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

const participantWithUserQuery = `
	SELECT p.id, p.user_id, p.challenge_id, p.current_value, p.last_updated,
	       u.id, u.username, u.password, u.avatar_color
	FROM participants p
	LEFT JOIN users u ON u.id = p.user_id
`

func (s *PostgresStore) ListParticipantsForChallenge(ctx context.Context, challengeID int64) ([]participant.WithUser, error) {
	return s.queryParticipantsWithUser(ctx, participantWithUserQuery+` WHERE p.challenge_id = $1 ORDER BY p.id`, challengeID)
}

func (s *PostgresStore) ListParticipants(ctx context.Context) ([]participant.WithUser, error) {
	return s.queryParticipantsWithUser(ctx, participantWithUserQuery+` ORDER BY p.id`)
}

func (s *PostgresStore) queryParticipantsWithUser(ctx context.Context, query string, args ...any) ([]participant.WithUser, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	joined := []participant.WithUser{}
	for rows.Next() {
		var (
			p           participant.Participant
			userID      *int64
			username    *string
			password    *string
			avatarColor *string
		)
		err := rows.Scan(
			&p.ID, &p.UserID, &p.ChallengeID, &p.CurrentValue, &p.LastUpdated,
			&userID, &username, &password, &avatarColor,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if userID == nil {
			return nil, fmt.Errorf("participant %d references missing user %d: %w", p.ID, p.UserID, ErrInconsistent)
		}
		joined = append(joined, participant.WithUser{
			Participant: p,
			User: user.User{
				ID:          *userID,
				Username:    *username,
				Password:    *password,
				AvatarColor: *avatarColor,
			},
		})
	}
	return joined, rows.Err()
}

func (s *PostgresStore) AccumulateParticipantProgress(ctx context.Context, participantID int64, delta float64) (*participant.Participant, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockTotal(ctx, tx, participantID, delta); err != nil {
		return nil, err
	}
	p, err := addToTotal(ctx, tx, participantID, delta)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit participant progress: %w", err)
	}
	return p, nil
}

// lockTotal locks the participant row for the rest of tx and checks that delta can
// be added to its running total.
func lockTotal(ctx context.Context, tx pgx.Tx, participantID int64, delta float64) error {
	var current float64
	err := tx.QueryRow(ctx, `SELECT current_value FROM participants WHERE id = $1 FOR UPDATE`, participantID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("participant %d: %w", participantID, ErrNotFound)
		}
		return fmt.Errorf("failed to lock participant: %w", err)
	}
	return checkTotal(participantID, current, delta)
}

func addToTotal(ctx context.Context, tx pgx.Tx, participantID int64, delta float64) (*participant.Participant, error) {
	p, err := scanParticipant(tx.QueryRow(ctx, `
		UPDATE participants
		SET current_value = current_value + $2, last_updated = NOW()
		WHERE id = $1
		RETURNING `+participantColumns,
		participantID, delta,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update participant progress: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) AddProgressEntry(ctx context.Context, participantID int64, value float64, date time.Time, notes *string) (*progress.Entry, *participant.Participant, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockTotal(ctx, tx, participantID, value); err != nil {
		return nil, nil, err
	}

	var e progress.Entry
	err = tx.QueryRow(ctx, `
		INSERT INTO progress_entries (participant_id, value, date, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, participant_id, value, date, notes, created_at`,
		participantID, value, date, notes,
	).Scan(&e.ID, &e.ParticipantID, &e.Value, &e.Date, &e.Notes, &e.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert progress entry: %w", err)
	}

	p, err := addToTotal(ctx, tx, participantID, value)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit progress entry: %w", err)
	}
	return &e, p, nil
}

func (s *PostgresStore) ListProgressEntries(ctx context.Context, participantID int64) ([]*progress.Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, participant_id, value, date, notes, created_at
		FROM progress_entries
		WHERE participant_id = $1
		ORDER BY id`,
		participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress entries: %w", err)
	}
	defer rows.Close()

	entries := []*progress.Entry{}
	for rows.Next() {
		var e progress.Entry
		if err := rows.Scan(&e.ID, &e.ParticipantID, &e.Value, &e.Date, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
