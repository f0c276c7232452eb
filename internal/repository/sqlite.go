package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/ogforum/excovote/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for tests)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS eligible_voters (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			member_id TEXT,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS voter_submissions (
			id TEXT PRIMARY KEY,
			voter_name TEXT NOT NULL UNIQUE,
			submitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS nominations (
			id TEXT PRIMARY KEY,
			voter_name TEXT NOT NULL,
			president TEXT NOT NULL,
			tournament_director TEXT NOT NULL,
			hon_legal_adviser TEXT NOT NULL,
			secretary TEXT NOT NULL,
			hon_social_secretary TEXT NOT NULL,
			statement TEXT NOT NULL DEFAULT '',
			submitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			id TEXT PRIMARY KEY,
			canonical_name TEXT NOT NULL,
			position TEXT NOT NULL,
			vote_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(position, canonical_name)
		)`,
		`CREATE TABLE IF NOT EXISTS name_variations (
			id TEXT PRIMARY KEY,
			candidate_id TEXT,
			variation_name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (candidate_id) REFERENCES candidates(id) ON DELETE SET NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_voters_name ON eligible_voters(full_name)`,
		`CREATE INDEX IF NOT EXISTS idx_nominations_voter ON nominations(voter_name)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_position ON candidates(position)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// translateErr maps driver-level constraint violations onto repository
// sentinels so services never import the driver package.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return ErrDuplicate
		}
	}
	return err
}

// IsAccessDenied reports whether err is a storage permission failure,
// which operators remediate differently from connectivity problems.
func IsAccessDenied(err error) bool {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrAuth ||
			sqliteErr.Code == sqlite3.ErrPerm ||
			sqliteErr.Code == sqlite3.ErrReadonly
	}
	return false
}

// IsTransient reports whether err is a retryable storage failure.
func IsTransient(err error) bool {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy ||
			sqliteErr.Code == sqlite3.ErrLocked ||
			sqliteErr.Code == sqlite3.ErrCantOpen
	}
	return false
}

// ==================== Roster Methods ====================

// ListActiveVoters returns active eligible voters ordered by full name
func (r *Repository) ListActiveVoters(ctx context.Context) ([]models.EligibleVoter, error) {
	return r.listVoters(ctx, `
		SELECT id, full_name, member_id, is_active, created_at, updated_at
		FROM eligible_voters WHERE is_active = 1
		ORDER BY full_name
	`)
}

// ListAllVoters returns every roster entry, active or not, ordered by name
func (r *Repository) ListAllVoters(ctx context.Context) ([]models.EligibleVoter, error) {
	return r.listVoters(ctx, `
		SELECT id, full_name, member_id, is_active, created_at, updated_at
		FROM eligible_voters
		ORDER BY full_name
	`)
}

func (r *Repository) listVoters(ctx context.Context, query string) ([]models.EligibleVoter, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var voters []models.EligibleVoter
	for rows.Next() {
		var v models.EligibleVoter
		var memberID sql.NullString
		if err := rows.Scan(&v.ID, &v.FullName, &memberID, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		v.MemberID = memberID.String
		voters = append(voters, v)
	}
	return voters, rows.Err()
}

// CreateEligibleVoter adds a roster entry and returns its id
func (r *Repository) CreateEligibleVoter(ctx context.Context, fullName, memberID string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	var member sql.NullString
	if memberID != "" {
		member = sql.NullString{String: memberID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO eligible_voters (id, full_name, member_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
	`, id, fullName, member, now, now)
	if err != nil {
		return "", translateErr(err)
	}
	return id, nil
}

// SetVoterActive activates or deactivates a roster entry
func (r *Repository) SetVoterActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE eligible_voters SET is_active = ?, updated_at = ? WHERE id = ?
	`, active, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEligibleVoter permanently removes a roster entry
func (r *Repository) DeleteEligibleVoter(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM eligible_voters WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// VoterOnActiveRoster reports whether fullName matches an active roster
// entry. The match is exact and case-sensitive: the stored full name is
// the voting identity.
func (r *Repository) VoterOnActiveRoster(ctx context.Context, fullName string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM eligible_voters WHERE full_name = ? AND is_active = 1)`,
		fullName).Scan(&exists)
	return exists, err
}

// CountActiveVoters returns the number of active roster entries
func (r *Repository) CountActiveVoters(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM eligible_voters WHERE is_active = 1`).Scan(&count)
	return count, err
}

// ==================== Submission Methods ====================

// HasSubmission reports whether a submission row exists for voterName.
// A missing row is a normal negative answer, not an error.
func (r *Repository) HasSubmission(ctx context.Context, voterName string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM voter_submissions WHERE voter_name = ?`, voterName).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateSubmission records that voterName has submitted. Returns
// ErrDuplicate when a row already exists for that name.
func (r *Repository) CreateSubmission(ctx context.Context, voterName string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO voter_submissions (id, voter_name, submitted_at) VALUES (?, ?, ?)
	`, id, voterName, time.Now().UTC())
	if err != nil {
		return "", translateErr(err)
	}
	return id, nil
}

// ListSubmissions returns all submission records, newest first
func (r *Repository) ListSubmissions(ctx context.Context) ([]models.VoterSubmission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, voter_name, submitted_at FROM voter_submissions
		ORDER BY submitted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.VoterSubmission
	for rows.Next() {
		var s models.VoterSubmission
		if err := rows.Scan(&s.ID, &s.VoterName, &s.SubmittedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// CountSubmissions returns the number of submission records
func (r *Repository) CountSubmissions(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM voter_submissions`).Scan(&count)
	return count, err
}

// DeleteOrphanSubmissions removes submission rows older than the cutoff
// that have no matching nomination row. These are the leftovers of a
// submit that failed between its two writes; clearing them lets the
// affected voter retry. Returns the number of rows removed.
func (r *Repository) DeleteOrphanSubmissions(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM voter_submissions
		WHERE submitted_at < ?
		  AND voter_name NOT IN (SELECT voter_name FROM nominations)
	`, olderThan)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ==================== Nomination Methods ====================

// CreateNomination persists a complete nomination as one wide row
func (r *Repository) CreateNomination(ctx context.Context, sub models.NominationSubmission) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO nominations
			(id, voter_name, president, tournament_director, hon_legal_adviser,
			 secretary, hon_social_secretary, statement, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, sub.VoterName, sub.President, sub.TournamentDirector, sub.HonLegalAdviser,
		sub.Secretary, sub.HonSocialSecretary, sub.Statement, time.Now().UTC())
	if err != nil {
		return "", translateErr(err)
	}
	return id, nil
}

// ListNominations returns all nomination rows, newest first
func (r *Repository) ListNominations(ctx context.Context) ([]models.Nomination, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, voter_name, president, tournament_director, hon_legal_adviser,
		       secretary, hon_social_secretary, statement, submitted_at
		FROM nominations
		ORDER BY submitted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var noms []models.Nomination
	for rows.Next() {
		var n models.Nomination
		if err := rows.Scan(&n.ID, &n.VoterName, &n.President, &n.TournamentDirector,
			&n.HonLegalAdviser, &n.Secretary, &n.HonSocialSecretary, &n.Statement, &n.SubmittedAt); err != nil {
			return nil, err
		}
		noms = append(noms, n)
	}
	return noms, rows.Err()
}

// CountNominations returns the number of nomination rows
func (r *Repository) CountNominations(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nominations`).Scan(&count)
	return count, err
}

// ==================== Candidate Methods ====================

// GetCandidate retrieves a candidate by position and canonical name
func (r *Repository) GetCandidate(ctx context.Context, position, canonicalName string) (*models.Candidate, error) {
	var c models.Candidate
	err := r.db.QueryRowContext(ctx, `
		SELECT id, canonical_name, position, vote_count, created_at, updated_at
		FROM candidates WHERE position = ? AND canonical_name = ?
	`, position, canonicalName).Scan(&c.ID, &c.CanonicalName, &c.Position, &c.VoteCount, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCandidate adds a new candidate with a zero vote count
func (r *Repository) CreateCandidate(ctx context.Context, position, canonicalName string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO candidates (id, canonical_name, position, vote_count, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
	`, id, canonicalName, position, now, now)
	if err != nil {
		return "", translateErr(err)
	}
	return id, nil
}

// IncrementCandidateVotes adds one to a candidate's vote count
func (r *Repository) IncrementCandidateVotes(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE candidates SET vote_count = vote_count + 1, updated_at = ? WHERE id = ?
	`, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCandidates returns all candidates ordered by vote count descending,
// then name, for stable dashboard display
func (r *Repository) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, canonical_name, position, vote_count, created_at, updated_at
		FROM candidates
		ORDER BY vote_count DESC, canonical_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.CanonicalName, &c.Position, &c.VoteCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// ListCandidateNames returns canonical name to id for every candidate
// in a position. Used by the in-process name matcher.
func (r *Repository) ListCandidateNames(ctx context.Context, position string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT canonical_name, id FROM candidates WHERE position = ?`, position)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		names[name] = id
	}
	return names, rows.Err()
}

// AddNameVariation records a merged spelling for a candidate
func (r *Repository) AddNameVariation(ctx context.Context, candidateID, variationName string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO name_variations (id, candidate_id, variation_name, created_at)
		VALUES (?, ?, ?, ?)
	`, uuid.NewString(), candidateID, variationName, time.Now().UTC())
	return err
}
