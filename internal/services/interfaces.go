package services

import (
	"context"
	"io"
	"time"

	"github.com/ogforum/excovote/internal/models"
)

// RosterServicer defines the interface for roster operations
type RosterServicer interface {
	ListVoterNames(ctx context.Context) ([]string, error)
	GetVoterStatus(ctx context.Context, fullName string) (*VoterStatus, error)
	ListAllVoters(ctx context.Context) ([]models.EligibleVoter, error)
	AddVoter(ctx context.Context, fullName, memberID string) (string, error)
	SetVoterActive(ctx context.Context, id string, active bool) error
	RemoveVoter(ctx context.Context, id string) error
}

// NominationServicer defines the interface for nomination operations
type NominationServicer interface {
	Submit(ctx context.Context, sub models.NominationSubmission) (*SubmitResult, error)
	Resolve(ctx context.Context, sub models.NominationSubmission, decisions map[string]*Decision) (*SubmitResult, error)
	ListNominations(ctx context.Context) ([]models.Nomination, error)
	SetBroadcaster(b Broadcaster)
}

// StatsServicer defines the interface for tally and reporting operations
type StatsServicer interface {
	GetStats(ctx context.Context) (*NominationStats, error)
	GetTallies(ctx context.Context) ([]PositionTally, error)
	TopNominees(ctx context.Context, n int) ([]TopNominee, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	Reconcile(ctx context.Context, maxAge time.Duration) (int, error)
}
