package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/matching"
	"github.com/gdugdh24/bookswap-backend/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const generationLockKey = "match-generation"

// GenerationRecorder receives the outcome of each generation run.
type GenerationRecorder interface {
	RecordGeneration(result string, userMatches, standMatches int)
}

type MatchUseCase struct {
	matchRepo     repository.MatchRepository
	inventoryRepo repository.InventoryRepository
	orderRepo     repository.OrderRepository
	locker        repository.Locker
	metrics       GenerationRecorder
	log           *logrus.Logger
	lockTTL       time.Duration
	// defaultMeeting fills in a request without a meeting duration.
	defaultMeeting time.Duration

	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

func NewMatchUseCase(
	matchRepo repository.MatchRepository,
	inventoryRepo repository.InventoryRepository,
	orderRepo repository.OrderRepository,
	locker repository.Locker,
	metrics GenerationRecorder,
	log *logrus.Logger,
	lockTTL time.Duration,
	defaultMeeting time.Duration,
) *MatchUseCase {
	uc := &MatchUseCase{
		matchRepo:      matchRepo,
		inventoryRepo:  inventoryRepo,
		orderRepo:      orderRepo,
		locker:         locker,
		metrics:        metrics,
		log:            log,
		lockTTL:        lockTTL,
		defaultMeeting: defaultMeeting,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	uc.validate = newValidator(func() time.Time { return uc.now() })
	return uc
}

// Validate checks a generation request without touching any store.
func (uc *MatchUseCase) Validate(req *GenerateRequest) error {
	return validateWith(uc.validate, req)
}

func validateWith(v *validator.Validate, req *GenerateRequest) error {
	if req == nil {
		return domain.NewValidationError(domain.CodeInvalidSpec, "specification is required")
	}
	if err := v.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

// ValidateRequest checks req against now without a use case instance.
func ValidateRequest(req *GenerateRequest, now time.Time) error {
	return validateWith(newValidator(func() time.Time { return now }), req)
}

// Plan runs the finder and the scheduler over already loaded pools.
func Plan(senders, receivers []domain.MatchableUser, req *GenerateRequest) ([]domain.CandidateWithMeeting, error) {
	candidates := matching.FindCandidates(senders, receivers)
	if len(candidates) == 0 {
		return nil, domain.NewConflictError(domain.CodeNothingMatched, "no matches generated")
	}

	scheduled, err := matching.AssignMeetingInfo(
		candidates, req.StandLocation, req.UserMatchLocations, req.StartTime, req.MeetingDuration(),
	)
	if err != nil {
		if errors.Is(err, domain.ErrNoMeetingLocations) {
			return nil, &domain.AppError{
				Kind:    domain.KindConflict,
				Code:    domain.CodeConfiguration,
				Message: "user matches were found but no meeting locations are configured",
				Err:     err,
			}
		}
		return nil, domain.WrapUnknown("failed to schedule meetings", err)
	}
	return scheduled, nil
}

// Generate runs one full generation: load pools, pair, schedule, persist.
// Only one run may be in flight at a time.
func (uc *MatchUseCase) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if req != nil && req.MatchMeetingDurationInMS == 0 {
		req.MatchMeetingDurationInMS = uc.defaultMeeting.Milliseconds()
	}
	if err := uc.Validate(req); err != nil {
		uc.recordGeneration("invalid", 0, 0)
		return nil, err
	}

	release, err := uc.locker.Acquire(ctx, generationLockKey, uc.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockNotAcquired) {
			uc.recordGeneration("busy", 0, 0)
			return nil, domain.NewConflictError(domain.CodeBusy, "another generation run is in progress")
		}
		return nil, domain.WrapUnknown("failed to acquire generation lock", err)
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			uc.log.WithError(err).Warn("failed to release generation lock")
		}
	}()

	senders, err := uc.inventoryRepo.GetSenderPool(ctx, repository.SenderPoolQuery{
		BranchIDs:               req.SenderBranches,
		DeadlineBefore:          req.DeadlineBefore,
		DeadlineOverrides:       req.DeadlineOverrides,
		IncludeOtherBranchItems: req.IncludeSenderItemsFromOtherBranches,
	})
	if err != nil {
		return nil, domain.WrapUnknown("failed to load senders", err)
	}

	receivers, err := uc.orderRepo.GetReceiverPool(ctx, repository.ReceiverPoolQuery{
		BranchIDs:       req.ReceiverBranches,
		AdditionalItems: req.AdditionalReceiverItems,
	})
	if err != nil {
		return nil, domain.WrapUnknown("failed to load receivers", err)
	}

	if len(senders) == 0 && len(receivers) == 0 {
		uc.recordGeneration("empty", 0, 0)
		return nil, domain.NewConflictError(domain.CodeNoParticipants, "no senders or receivers in the selected branches")
	}

	scheduled, err := Plan(senders, receivers, req)
	if err != nil {
		uc.recordGeneration(domain.CodeOf(err), 0, 0)
		return nil, err
	}

	now := uc.now()
	result := &GenerateResult{Matches: make([]*domain.Match, 0, len(scheduled))}
	for _, c := range scheduled {
		m := domain.NewMatchFromCandidate(uc.newID(), c, now)
		if m.Kind == domain.MatchKindUser {
			result.UserMatches++
		} else {
			result.StandMatches++
		}
		result.Matches = append(result.Matches, m)
	}

	if err := uc.matchRepo.CreateMany(ctx, result.Matches); err != nil {
		uc.recordGeneration("failed", 0, 0)
		return nil, domain.WrapUnknown("failed to store generated matches", err)
	}

	uc.recordGeneration("ok", result.UserMatches, result.StandMatches)
	uc.log.WithFields(logrus.Fields{
		"senders":       len(senders),
		"receivers":     len(receivers),
		"user_matches":  result.UserMatches,
		"stand_matches": result.StandMatches,
	}).Info("match generation finished")

	return result, nil
}

// UpdateReceived records that receiverID got items and stores the match.
func (uc *MatchUseCase) UpdateReceived(ctx context.Context, match *domain.Match, receiverID string, items []domain.ReceivedItem) (*domain.Match, error) {
	match.RecordReceived(receiverID, items, uc.now())
	if err := uc.matchRepo.Update(ctx, match); err != nil {
		return nil, updateError(match.ID, err)
	}
	return match, nil
}

// UpdateDelivered records that the sender handed over one copy of itemID.
func (uc *MatchUseCase) UpdateDelivered(ctx context.Context, match *domain.Match, itemID, blid, inventoryID string) (*domain.Match, error) {
	match.RecordDelivered(itemID, blid, inventoryID, uc.now())
	if err := uc.matchRepo.Update(ctx, match); err != nil {
		return nil, updateError(match.ID, err)
	}
	return match, nil
}

func (uc *MatchUseCase) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	m, err := uc.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			return nil, domain.NewNotFoundError(domain.CodeMatchNotFound, fmt.Sprintf("match %s not found", id))
		}
		return nil, domain.WrapUnknown("failed to load match", err)
	}
	return m, nil
}

// GetForUser lists every live match the user takes part in.
func (uc *MatchUseCase) GetForUser(ctx context.Context, userID string) ([]*domain.Match, error) {
	matches, err := uc.matchRepo.GetAllForUser(ctx, userID)
	if err != nil {
		return nil, domain.WrapUnknown("failed to load matches", err)
	}
	return matches, nil
}

func (uc *MatchUseCase) recordGeneration(result string, userMatches, standMatches int) {
	if uc.metrics != nil {
		uc.metrics.RecordGeneration(result, userMatches, standMatches)
	}
}

func updateError(matchID string, err error) error {
	switch {
	case errors.Is(err, domain.ErrMatchVersionConflict):
		return &domain.AppError{
			Kind:    domain.KindConflict,
			Code:    domain.CodeStaleMatch,
			Message: fmt.Sprintf("match %s changed while it was being updated", matchID),
			Err:     err,
		}
	case errors.Is(err, domain.ErrMatchNotFound):
		return domain.NewNotFoundError(domain.CodeMatchNotFound, fmt.Sprintf("match %s not found", matchID))
	default:
		return domain.WrapUnknown("failed to store match", err)
	}
}
