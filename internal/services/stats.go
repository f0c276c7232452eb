package services

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"sort"
	"time"

	"github.com/ogforum/excovote/internal/logger"
	"github.com/ogforum/excovote/internal/models"
)

// DefaultTopN is how many nominees the cross-position ranking returns
const DefaultTopN = 9

// StatsServiceRepository defines the repository methods needed by StatsService
type StatsServiceRepository interface {
	CountActiveVoters(ctx context.Context) (int, error)
	CountSubmissions(ctx context.Context) (int, error)
	CountNominations(ctx context.Context) (int, error)
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	ListNominations(ctx context.Context) ([]models.Nomination, error)
	DeleteOrphanSubmissions(ctx context.Context, olderThan time.Time) (int, error)
}

// StatsService produces turnout numbers, per-position tallies and the
// cross-position ranking for the admin dashboard
type StatsService struct {
	log  logger.Logger
	repo StatsServiceRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(log logger.Logger, repo StatsServiceRepository) *StatsService {
	return &StatsService{log: log, repo: repo}
}

// NominationStats is the dashboard turnout summary
type NominationStats struct {
	EligibleVoters    int `json:"eligible_voters"`
	Submissions       int `json:"submissions"`
	Nominations       int `json:"nominations"`
	ParticipationRate int `json:"participation_rate"`
}

// ComputeParticipationRate returns the whole-percent turnout, rounded
// half up. An empty roster yields zero rather than dividing by it.
func ComputeParticipationRate(eligible, submitted int) int {
	if eligible <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(submitted) / float64(eligible)))
}

// GetStats returns the turnout summary
func (s *StatsService) GetStats(ctx context.Context) (*NominationStats, error) {
	eligible, err := s.repo.CountActiveVoters(ctx)
	if err != nil {
		return nil, mapStorageErr(err, "read the roster")
	}
	submissions, err := s.repo.CountSubmissions(ctx)
	if err != nil {
		return nil, mapStorageErr(err, "read submissions")
	}
	nominations, err := s.repo.CountNominations(ctx)
	if err != nil {
		return nil, mapStorageErr(err, "read nominations")
	}

	return &NominationStats{
		EligibleVoters:    eligible,
		Submissions:       submissions,
		Nominations:       nominations,
		ParticipationRate: ComputeParticipationRate(eligible, submissions),
	}, nil
}

// PositionTally is the ranked candidate list for one position
type PositionTally struct {
	Position   string             `json:"position"`
	Label      string             `json:"label"`
	Candidates []models.Candidate `json:"candidates"`
}

// RankCandidates orders candidates by vote count descending, breaking
// ties alphabetically by canonical name so repeated calls agree.
func RankCandidates(candidates []models.Candidate) []models.Candidate {
	ranked := make([]models.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].VoteCount != ranked[j].VoteCount {
			return ranked[i].VoteCount > ranked[j].VoteCount
		}
		return ranked[i].CanonicalName < ranked[j].CanonicalName
	})
	return ranked
}

// GetTallies returns the ranked candidates for every position, in
// ballot order. Positions with no candidates yet appear with an empty
// list.
func (s *StatsService) GetTallies(ctx context.Context) ([]PositionTally, error) {
	candidates, err := s.repo.ListCandidates(ctx)
	if err != nil {
		return nil, mapStorageErr(err, "read the candidate tallies")
	}

	byPosition := make(map[string][]models.Candidate)
	for _, c := range candidates {
		byPosition[c.Position] = append(byPosition[c.Position], c)
	}

	tallies := make([]PositionTally, 0, len(models.Positions))
	for _, pos := range models.Positions {
		tallies = append(tallies, PositionTally{
			Position:   pos.Key,
			Label:      pos.Label,
			Candidates: RankCandidates(byPosition[pos.Key]),
		})
	}
	return tallies, nil
}

// TopNominee is one entry in the cross-position ranking
type TopNominee struct {
	CanonicalName string `json:"canonical_name"`
	VoteCount     int    `json:"vote_count"`
}

// TopNominees returns the n most-nominated names across all positions,
// by total vote count descending then name. A name nominated for
// several positions counts once with its votes summed; the ranking
// deliberately cannot tell two people who share a spelling apart.
// n of zero or less uses the default of nine.
func (s *StatsService) TopNominees(ctx context.Context, n int) ([]TopNominee, error) {
	if n <= 0 {
		n = DefaultTopN
	}

	candidates, err := s.repo.ListCandidates(ctx)
	if err != nil {
		return nil, mapStorageErr(err, "read the candidate tallies")
	}

	totals := make(map[string]int)
	for _, c := range candidates {
		totals[c.CanonicalName] += c.VoteCount
	}

	top := make([]TopNominee, 0, len(totals))
	for name, votes := range totals {
		top = append(top, TopNominee{CanonicalName: name, VoteCount: votes})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].VoteCount != top[j].VoteCount {
			return top[i].VoteCount > top[j].VoteCount
		}
		return top[i].CanonicalName < top[j].CanonicalName
	})

	if len(top) > n {
		top = top[:n]
	}
	return top, nil
}

// ExportCSV writes every nomination as one CSV row: voter name, the
// five picks in ballot order, then the submission time
func (s *StatsService) ExportCSV(ctx context.Context, w io.Writer) error {
	nominations, err := s.repo.ListNominations(ctx)
	if err != nil {
		return mapStorageErr(err, "read nominations")
	}

	cw := csv.NewWriter(w)

	header := []string{"Voter Name"}
	for _, pos := range models.Positions {
		header = append(header, pos.Label)
	}
	header = append(header, "Submitted At")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, nom := range nominations {
		row := []string{nom.VoterName}
		for _, pos := range models.Positions {
			row = append(row, nom.Nominee(pos.Key))
		}
		row = append(row, nom.SubmittedAt.UTC().Format(time.RFC3339))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Reconcile removes submission markers older than maxAge that never got
// their nomination row, so the affected voters can submit again
func (s *StatsService) Reconcile(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	removed, err := s.repo.DeleteOrphanSubmissions(ctx, cutoff)
	if err != nil {
		return 0, mapStorageErr(err, "clear orphaned submissions")
	}
	if removed > 0 {
		s.log.Info("Cleared orphaned submission markers", "count", removed)
	}
	return removed, nil
}
