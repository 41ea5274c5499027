package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// maxTargetAttempts bounds how often a scan re-picks its match after losing a race.
const maxTargetAttempts = 3

const (
	feedbackUnplannedSender = "This book was not planned to come from its previous holder. " +
		"The exchange is recorded anyway."
	feedbackOtherSender = "You received this book from someone other than your planned match. " +
		"The exchange is recorded anyway, but your planned match may still have a copy for you."
)

// MatchUpdater is the only writer of match state.
type MatchUpdater interface {
	UpdateReceived(ctx context.Context, match *domain.Match, receiverID string, items []domain.ReceivedItem) (*domain.Match, error)
	UpdateDelivered(ctx context.Context, match *domain.Match, itemID, blid, inventoryID string) (*domain.Match, error)
}

// TransferRecorder counts transfer outcomes.
type TransferRecorder interface {
	RecordTransfer(outcome string)
}

// Step names one write of the transfer saga.
type Step string

const (
	StepRecordReceived  Step = "record-received"
	StepRecordDelivered Step = "record-delivered"
	StepReceiverOrder   Step = "receiver-order"
	StepSenderOrder     Step = "sender-order"
	StepReturnInventory Step = "return-inventory"
	StepCloseBacklog    Step = "close-backlog"
	StepCreateInventory Step = "create-inventory"
)

// TransferStepError reports which saga step failed and which writes already
// committed before it. Nothing is compensated.
type TransferStepError struct {
	Step      Step
	Completed []Step
	Err       error
}

func (e *TransferStepError) Error() string {
	completed := make([]string, 0, len(e.Completed))
	for _, s := range e.Completed {
		completed = append(completed, string(s))
	}
	return fmt.Sprintf("transfer step %s failed after [%s]: %v", e.Step, strings.Join(completed, ", "), e.Err)
}

func (e *TransferStepError) Unwrap() error {
	return e.Err
}

// TransferResult describes everything a successful scan wrote.
type TransferResult struct {
	ReceiverMatch *domain.Match             `json:"receiverMatch"`
	SenderMatch   *domain.Match             `json:"senderMatch,omitempty"`
	ReceiverOrder *domain.Order             `json:"receiverOrder"`
	SenderOrder   *domain.Order             `json:"senderOrder,omitempty"`
	Inventory     []*domain.InventoryRecord `json:"inventory"`
	Feedback      string                    `json:"feedback,omitempty"`
}

type TransferUseCase struct {
	matches       MatchUpdater
	matchRepo     repository.MatchRepository
	inventoryRepo repository.InventoryRepository
	orderRepo     repository.OrderRepository
	locker        repository.Locker
	metrics       TransferRecorder
	log           *logrus.Logger
	lockTTL       time.Duration
	now           func() time.Time
}

func NewTransferUseCase(
	matches MatchUpdater,
	matchRepo repository.MatchRepository,
	inventoryRepo repository.InventoryRepository,
	orderRepo repository.OrderRepository,
	locker repository.Locker,
	metrics TransferRecorder,
	log *logrus.Logger,
	lockTTL time.Duration,
) *TransferUseCase {
	return &TransferUseCase{
		matches:       matches,
		matchRepo:     matchRepo,
		inventoryRepo: inventoryRepo,
		orderRepo:     orderRepo,
		locker:        locker,
		metrics:       metrics,
		log:           log,
		lockTTL:       lockTTL,
		now:           time.Now,
	}
}

// Transfer handles a receiver scanning a copy they were handed. It checks
// the code against the receiver's user matches, records the exchange on the
// receiver and sender side and moves the copy's inventory to the receiver.
func (uc *TransferUseCase) Transfer(ctx context.Context, receiverID, blid string) (*TransferResult, error) {
	result, err := uc.transfer(ctx, receiverID, NormalizeScanCode(blid))
	uc.recordOutcome(result, err)
	if err != nil {
		entry := uc.log.WithFields(logrus.Fields{"receiver_id": receiverID, "blid": blid}).WithError(err)
		if domain.KindOf(err) == domain.KindUnknown {
			entry.Error("transfer failed")
		} else {
			entry.Info("transfer rejected")
		}
		return nil, err
	}
	return result, nil
}

func (uc *TransferUseCase) transfer(ctx context.Context, receiverID, blid string) (*TransferResult, error) {
	if !ValidScanCode(blid) {
		return nil, domain.NewValidationError(domain.CodeInvalidFormat, fmt.Sprintf("%q is not a valid book code", blid))
	}

	receiverMatches, err := uc.matchRepo.GetUserMatchesByReceiver(ctx, receiverID)
	if err != nil {
		return nil, domain.WrapUnknown("failed to load receiver matches", err)
	}
	if len(receiverMatches) == 0 {
		return nil, domain.NewNotFoundError(domain.CodeNoMatches, "you have no matches to receive books from")
	}

	records, err := uc.inventoryRepo.GetActiveByBlid(ctx, blid)
	if err != nil {
		return nil, domain.WrapUnknown("failed to look up book", err)
	}
	if len(records) != 1 {
		return nil, domain.NewConflictError(domain.CodeNotActive, "this book is not currently lent out to anyone")
	}
	inventory := records[0]

	target, release, err := uc.lockTarget(ctx, receiverID, blid, inventory.ItemID, receiverMatches)
	if err != nil {
		return nil, err
	}
	defer uc.release(release, target.ID)

	senderMatches, err := uc.matchRepo.GetUserMatchesBySender(ctx, inventory.CustomerID)
	if err != nil {
		return nil, domain.WrapUnknown("failed to load sender matches", err)
	}
	senderMatch := findSenderMatch(senderMatches, target, inventory.ItemID)

	result := &TransferResult{}
	switch {
	case senderMatch == nil:
		result.Feedback = feedbackUnplannedSender
	case senderMatch.ID != target.ID:
		result.Feedback = feedbackOtherSender
	}

	saga := &saga{}

	err = saga.run(StepRecordReceived, func() error {
		m, err := uc.matches.UpdateReceived(ctx, target, receiverID, []domain.ReceivedItem{{ItemID: inventory.ItemID, Blid: blid}})
		result.ReceiverMatch = m
		return err
	})
	if err != nil {
		return nil, err
	}

	if senderMatch != nil {
		if senderMatch.ID == target.ID {
			senderMatch = result.ReceiverMatch
		}
		err = saga.run(StepRecordDelivered, func() error {
			m, err := uc.matches.UpdateDelivered(ctx, senderMatch, inventory.ItemID, blid, inventory.ID)
			result.SenderMatch = m
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	backlog, err := uc.orderRepo.GetPendingLine(ctx, receiverID, inventory.ItemID)
	if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		return nil, saga.fail(StepReceiverOrder, err)
	}
	deadline := inventory.Deadline
	if backlog != nil && backlog.Deadline != nil {
		deadline = *backlog.Deadline
	}

	result.ReceiverOrder = &domain.Order{
		CustomerID: receiverID,
		BranchID:   inventory.BranchID,
		ByCustomer: true,
		Lines: []domain.OrderLine{{
			ItemID:   inventory.ItemID,
			Type:     domain.OrderLineMatchReceive,
			Blid:     &blid,
			Deadline: &deadline,
		}},
	}
	if err := saga.run(StepReceiverOrder, func() error {
		return uc.orderRepo.CreateExchangeOrder(ctx, result.ReceiverOrder)
	}); err != nil {
		return nil, err
	}

	// The holder gets a deliver order even when no match planned the handover.
	inventoryID := inventory.ID
	result.SenderOrder = &domain.Order{
		CustomerID: inventory.CustomerID,
		BranchID:   inventory.BranchID,
		Lines: []domain.OrderLine{{
			ItemID:      inventory.ItemID,
			Type:        domain.OrderLineMatchDeliver,
			Blid:        &blid,
			InventoryID: &inventoryID,
			HandedOut:   true,
		}},
	}
	if err := saga.run(StepSenderOrder, func() error {
		return uc.orderRepo.CreateExchangeOrder(ctx, result.SenderOrder)
	}); err != nil {
		return nil, err
	}

	if err := saga.run(StepReturnInventory, func() error {
		return uc.inventoryRepo.MarkReturned(ctx, inventory.ID, uc.now())
	}); err != nil {
		return nil, err
	}

	if backlog != nil {
		if err := saga.run(StepCloseBacklog, func() error {
			return uc.orderRepo.MarkLineHandedOut(ctx, backlog.ID)
		}); err != nil {
			return nil, err
		}
	}

	if err := saga.run(StepCreateInventory, func() error {
		records, err := uc.inventoryRepo.CreateFromOrder(ctx, result.ReceiverOrder)
		result.Inventory = records
		return err
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// lockTarget locks the receiver match that should take the copy and checks it
// again against the stored version. When a concurrent scan filled that match
// in the meantime the receiver's matches are reloaded and the pick repeated.
func (uc *TransferUseCase) lockTarget(ctx context.Context, receiverID, blid, itemID string, matches []*domain.Match) (*domain.Match, repository.ReleaseFunc, error) {
	for attempt := 1; ; attempt++ {
		target, err := findTarget(matches, blid, itemID)
		if err != nil {
			return nil, nil, err
		}

		release, err := uc.locker.Acquire(ctx, "match:"+target.ID, uc.lockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockNotAcquired) {
				return nil, nil, domain.NewConflictError(domain.CodeBusy, "this match is being updated, try again")
			}
			return nil, nil, domain.WrapUnknown("failed to lock match", err)
		}

		stored, err := uc.matchRepo.GetByID(ctx, target.ID)
		if err != nil {
			uc.release(release, target.ID)
			return nil, nil, domain.WrapUnknown("failed to reload match", err)
		}
		if stored.HasReceivedBlid(blid) {
			uc.release(release, target.ID)
			return nil, nil, domain.NewConflictError(domain.CodeAlreadyReceived, "you have already received this book")
		}
		if stored.ExpectsItem(itemID) {
			return stored, release, nil
		}
		uc.release(release, target.ID)

		if attempt == maxTargetAttempts {
			return nil, nil, domain.NewConflictError(domain.CodeBusy, "your matches are being updated, try again")
		}
		if matches, err = uc.matchRepo.GetUserMatchesByReceiver(ctx, receiverID); err != nil {
			return nil, nil, domain.WrapUnknown("failed to reload receiver matches", err)
		}
	}
}

func (uc *TransferUseCase) release(release repository.ReleaseFunc, matchID string) {
	if err := release(context.Background()); err != nil {
		uc.log.WithError(err).WithField("match_id", matchID).Warn("failed to release match lock")
	}
}

// findTarget picks the receiver's first match still expecting itemID.
// A copy that was already recorded wins over any other outcome.
func findTarget(matches []*domain.Match, blid, itemID string) (*domain.Match, error) {
	for _, m := range matches {
		if m.HasReceivedBlid(blid) {
			return nil, domain.NewConflictError(domain.CodeAlreadyReceived, "you have already received this book")
		}
	}
	for _, m := range matches {
		if m.ExpectsItem(itemID) {
			return m, nil
		}
	}
	return nil, domain.NewConflictError(domain.CodeNotExpected, "none of your matches expects this book")
}

// findSenderMatch prefers the receiver's own match when the holder is its sender.
func findSenderMatch(matches []*domain.Match, target *domain.Match, itemID string) *domain.Match {
	var first *domain.Match
	for _, m := range matches {
		if !m.AwaitsDelivery(itemID) {
			continue
		}
		if m.ID == target.ID {
			return m
		}
		if first == nil {
			first = m
		}
	}
	return first
}

func (uc *TransferUseCase) recordOutcome(result *TransferResult, err error) {
	if uc.metrics == nil {
		return
	}
	switch {
	case err == nil && result.Feedback != "":
		uc.metrics.RecordTransfer("received-with-feedback")
	case err == nil:
		uc.metrics.RecordTransfer("received")
	case domain.CodeOf(err) != "":
		uc.metrics.RecordTransfer(domain.CodeOf(err))
	default:
		uc.metrics.RecordTransfer("failed")
	}
}

type saga struct {
	completed []Step
}

func (s *saga) run(step Step, fn func() error) error {
	if err := fn(); err != nil {
		return s.fail(step, err)
	}
	s.completed = append(s.completed, step)
	return nil
}

func (s *saga) fail(step Step, err error) error {
	completed := make([]Step, len(s.completed))
	copy(completed, s.completed)
	return &TransferStepError{Step: step, Completed: completed, Err: err}
}
