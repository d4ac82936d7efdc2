package review

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/muhammedshamil8/CivicGuard/internal/features/reports"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/anchoring"
	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

const DefaultReward = 10.0

// Anchorer forwards a confirmed report to the anchoring service and returns
// the endpoint path it used.
type Anchorer interface {
	Forward(ctx context.Context, description, imageURL string) (string, error)
}

type AnchorOutcome struct {
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	Path      string `json:"path,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

type ConfirmResult struct {
	Report *reports.Report `json:"report"`
	Anchor AnchorOutcome   `json:"anchor"`
}

type Stats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Confirmed   int `json:"confirmed"`
	Rejected    int `json:"rejected"`
	Blacklisted int `json:"blacklisted"`
}

type Service struct {
	store  reports.Store
	anchor Anchorer
	log    logrus.FieldLogger

	mu       sync.Mutex
	inFlight map[primitive.ObjectID]struct{}
}

func NewService(store reports.Store, anchor Anchorer, log logrus.FieldLogger) *Service {
	return &Service{
		store:    store,
		anchor:   anchor,
		log:      log,
		inFlight: make(map[primitive.ObjectID]struct{}),
	}
}

// ParseStatusFilter accepts "", "all" or a concrete status.
func ParseStatusFilter(raw string) (reports.Status, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return "", nil
	}
	status := reports.Status(raw)
	if !status.Valid() {
		return "", apperrors.Validation("status must be one of all, pending, confirmed, rejected")
	}
	return status, nil
}

// List returns reports newest first, optionally narrowed by status and by a
// case-insensitive search over wallet, description and location.
func (s *Service) List(ctx context.Context, status, search string) ([]reports.Report, error) {
	filterStatus, err := ParseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	list, err := s.store.List(ctx, reports.ListFilter{Status: filterStatus})
	if err != nil {
		return nil, reports.WrapStoreError("Failed to fetch reports", err)
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return list, nil
	}
	out := make([]reports.Report, 0, len(list))
	for _, r := range list {
		if strings.Contains(strings.ToLower(r.WalletAddress), needle) ||
			strings.Contains(strings.ToLower(r.Description), needle) ||
			strings.Contains(strings.ToLower(r.Location), needle) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*reports.Report, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	report, err := s.store.Get(ctx, oid)
	if err != nil {
		return nil, reports.WrapStoreError("Failed to fetch report", err)
	}
	return report, nil
}

// Confirm marks the report confirmed with a positive reward, then forwards it
// for anchoring. An anchoring failure is returned together with the result;
// the confirmation is kept.
func (s *Service) Confirm(ctx context.Context, id string, rewardAmount *float64) (*ConfirmResult, error) {
	amount := DefaultReward
	if rewardAmount != nil {
		amount = *rewardAmount
	}
	if amount < 0 {
		return nil, apperrors.Validation("reward_amount must not be negative")
	}

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	release, err := s.acquire(oid)
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.store.Get(ctx, oid)
	if err != nil {
		return nil, reports.WrapStoreError("Failed to fetch report", err)
	}
	if current.Status == reports.StatusRejected {
		return nil, apperrors.Conflict("INVALID_TRANSITION", "A rejected report cannot be confirmed")
	}

	status := reports.StatusConfirmed
	rewardType := reports.RewardPositive
	updated, err := s.store.Update(ctx, oid, reports.Patch{
		Status:       &status,
		RewardType:   &rewardType,
		RewardAmount: &amount,
	})
	if err != nil {
		return nil, reports.WrapStoreError("Failed to confirm report", err)
	}

	log := s.log.WithFields(logrus.Fields{"report_id": oid.Hex(), "reward_amount": amount})
	log.Info("report confirmed")

	result := &ConfirmResult{Report: updated}
	if s.anchor == nil {
		result.Anchor.Detail = "anchoring not configured"
		return result, nil
	}

	path, err := s.anchor.Forward(ctx, updated.Description, updated.ImageURL)
	result.Anchor.Path = path
	switch {
	case errors.Is(err, anchoring.ErrNotConfigured):
		result.Anchor.Detail = "anchoring not configured"
		log.Warn("anchoring skipped, no endpoint configured")
	case err != nil:
		result.Anchor.Attempted = true
		result.Anchor.Detail = err.Error()
		log.WithError(err).Error("anchoring failed, report stays confirmed")
		if apperrors.KindOf(err) == "" {
			err = apperrors.Anchor("Anchoring failed", err)
		}
		return result, err
	default:
		result.Anchor.Attempted = true
		result.Anchor.OK = true
	}
	return result, nil
}

// Reject marks the report rejected with a zero negative reward.
func (s *Service) Reject(ctx context.Context, id string) (*reports.Report, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	release, err := s.acquire(oid)
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.store.Get(ctx, oid)
	if err != nil {
		return nil, reports.WrapStoreError("Failed to fetch report", err)
	}
	if current.Status == reports.StatusConfirmed {
		return nil, apperrors.Conflict("INVALID_TRANSITION", "A confirmed report cannot be rejected")
	}

	status := reports.StatusRejected
	rewardType := reports.RewardNegative
	zero := 0.0
	updated, err := s.store.Update(ctx, oid, reports.Patch{
		Status:       &status,
		RewardType:   &rewardType,
		RewardAmount: &zero,
	})
	if err != nil {
		return nil, reports.WrapStoreError("Failed to reject report", err)
	}
	s.log.WithField("report_id", oid.Hex()).Info("report rejected")
	return updated, nil
}

// Blacklist flags the report. Status and rewards are left as they are.
func (s *Service) Blacklist(ctx context.Context, id string) (*reports.Report, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	release, err := s.acquire(oid)
	if err != nil {
		return nil, err
	}
	defer release()

	flag := true
	updated, err := s.store.Update(ctx, oid, reports.Patch{IsBlacklisted: &flag})
	if err != nil {
		return nil, reports.WrapStoreError("Failed to blacklist report", err)
	}
	s.log.WithField("report_id", oid.Hex()).Info("report blacklisted")
	return updated, nil
}

// Blacklisted returns flagged reports, newest first.
func (s *Service) Blacklisted(ctx context.Context) ([]reports.Report, error) {
	flag := true
	list, err := s.store.List(ctx, reports.ListFilter{Blacklisted: &flag})
	if err != nil {
		return nil, reports.WrapStoreError("Failed to fetch blacklist", err)
	}
	return list, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	list, err := s.store.List(ctx, reports.ListFilter{})
	if err != nil {
		return nil, reports.WrapStoreError("Failed to fetch reports", err)
	}
	stats := &Stats{Total: len(list)}
	for _, r := range list {
		switch r.Status {
		case reports.StatusPending:
			stats.Pending++
		case reports.StatusConfirmed:
			stats.Confirmed++
		case reports.StatusRejected:
			stats.Rejected++
		}
		if r.IsBlacklisted {
			stats.Blacklisted++
		}
	}
	return stats, nil
}

// acquire marks id as being processed. Only one mutation per id may run at a
// time within this process.
func (s *Service) acquire(id primitive.ObjectID) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return nil, apperrors.Conflict("REPORT_BUSY", "Report is already being processed")
	}
	s.inFlight[id] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inFlight, id)
		s.mu.Unlock()
	}, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("Invalid report ID")
	}
	return oid, nil
}
