package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUnknownIntent     = errors.New("payment intent not found")
	ErrInvalidTransition = errors.New("invalid payment intent transition")
)

// Store owns all PaymentIntent mutation. Writes go through an optimistic
// version check so a duplicate gateway callback and a concurrent expiry sweep
// cannot both win on the same row.
type Store struct {
	db *gorm.DB

	// beforeTransition, when set, runs between the settlement read and the
	// state transition. Lets tests interleave a concurrent writer into the
	// race window.
	beforeTransition func(tx *gorm.DB)
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindOrCreate returns the existing non-terminal intent for the idempotency
// key, or persists the given one. The unique index on idempotency_key settles
// races: the loser of a concurrent insert re-reads the winner's row, so both
// callers converge on the same intent. The second return value reports whether
// a new row was created.
func (s *Store) FindOrCreate(ctx context.Context, intent *PaymentIntent) (*PaymentIntent, bool, error) {
	existing, err := s.FindActiveByKey(ctx, intent.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	if intent.ID == "" {
		intent.ID = uuid.NewString()
	}
	if intent.State == "" {
		intent.State = StateCreated
	}
	intent.Version = 1

	if err := s.db.WithContext(ctx).Create(intent).Error; err != nil {
		// The unique index rejected the insert, either because a concurrent
		// caller won the race or because the key already belongs to a settled
		// intent. Adopt that row whatever its state; a resubmitted settled
		// checkout is acknowledged, not turned into a server error.
		var winner PaymentIntent
		findErr := s.db.WithContext(ctx).Preload("Lines").
			Where("idempotency_key = ?", intent.IdempotencyKey).
			First(&winner).Error
		if findErr == nil {
			return &winner, false, nil
		}
		return nil, false, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return intent, true, nil
}

// FindActiveByKey returns the non-terminal intent holding the idempotency
// key, or nil when the key is free.
func (s *Store) FindActiveByKey(ctx context.Context, key string) (*PaymentIntent, error) {
	var intent PaymentIntent
	err := s.db.WithContext(ctx).Preload("Lines").
		Where("idempotency_key = ? AND state NOT IN ?", key, terminalStates()).
		First(&intent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return &intent, nil
}

func (s *Store) Get(ctx context.Context, id string) (*PaymentIntent, error) {
	var intent PaymentIntent
	err := s.db.WithContext(ctx).Preload("Lines").Where("id = ?", id).First(&intent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownIntent
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment intent: %w", err)
	}
	return &intent, nil
}

func (s *Store) ListByStudent(ctx context.Context, studentID uint) ([]PaymentIntent, error) {
	var intents []PaymentIntent
	err := s.db.WithContext(ctx).Preload("Lines").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&intents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment intents: %w", err)
	}
	return intents, nil
}

func (s *Store) ListAll(ctx context.Context) ([]PaymentIntent, error) {
	var intents []PaymentIntent
	err := s.db.WithContext(ctx).Preload("Lines").Order("created_at DESC").Find(&intents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment intents: %w", err)
	}
	return intents, nil
}

// Transition moves an intent to the target state with an optimistic version
// check. A repeated transition into the state the intent already occupies is
// a no-op success, so retried gateway callbacks stay harmless.
func (s *Store) Transition(ctx context.Context, id string, target State, proof *string) (*PaymentIntent, error) {
	intent, _, err := s.transition(s.db.WithContext(ctx), id, target, proof)
	return intent, err
}

// transition reports, besides the resulting intent, whether this caller
// actually performed the write. A caller that merely observed someone else's
// identical transition gets performed == false, so settlement side effects
// can stay single-shot.
func (s *Store) transition(db *gorm.DB, id string, target State, proof *string) (*PaymentIntent, bool, error) {
	intent, err := s.getWith(db, id)
	if err != nil {
		return nil, false, err
	}
	if intent.State == target {
		return intent, false, nil
	}
	if !CanTransition(intent.State, target) {
		return nil, false, ErrInvalidTransition
	}

	updates := map[string]interface{}{
		"state":   target,
		"version": gorm.Expr("version + 1"),
	}
	if proof != nil {
		updates["proof"] = *proof
	}
	if target == StateSettled {
		now := time.Now()
		updates["settled_at"] = now
	}

	res := db.Model(&PaymentIntent{}).
		Where("id = ? AND version = ?", id, intent.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to transition payment intent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the version race; re-read and accept if someone else already
		// landed the same state.
		current, err := s.getWith(db, id)
		if err != nil {
			return nil, false, err
		}
		if current.State == target {
			return current, false, nil
		}
		return nil, false, ErrInvalidTransition
	}
	fresh, err := s.getWith(db, id)
	if err != nil {
		return nil, false, err
	}
	return fresh, true, nil
}

func (s *Store) getWith(db *gorm.DB, id string) (*PaymentIntent, error) {
	var intent PaymentIntent
	err := db.Preload("Lines").Where("id = ?", id).First(&intent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownIntent
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment intent: %w", err)
	}
	return &intent, nil
}

// Settle transitions the intent to settled and runs the hook (coupon redeem,
// enrollment activation) inside the same database transaction, so usage is
// never consumed by a payment that fails verification. The hook runs only for
// the caller whose write actually lands the settlement; a duplicate or
// concurrent callback observes the settled intent and skips it.
func (s *Store) Settle(ctx context.Context, id string, proof string, hook func(tx *gorm.DB, intent *PaymentIntent) error) (*PaymentIntent, error) {
	var settled *PaymentIntent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.getWith(tx, id)
		if err != nil {
			return err
		}
		if current.State == StateSettled {
			settled = current
			return nil
		}
		if s.beforeTransition != nil {
			s.beforeTransition(tx)
		}

		intent, performed, err := s.transition(tx, id, StateSettled, &proof)
		if err != nil {
			return err
		}
		if performed && hook != nil {
			if err := hook(tx, intent); err != nil {
				return err
			}
		}
		settled = intent
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// SetGatewayRef records the gateway-side reference for an intent without
// touching its state.
func (s *Store) SetGatewayRef(ctx context.Context, id string, ref string) error {
	res := s.db.WithContext(ctx).Model(&PaymentIntent{}).
		Where("id = ?", id).
		UpdateColumn("gateway_ref", ref)
	if res.Error != nil {
		return fmt.Errorf("failed to set gateway ref: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUnknownIntent
	}
	return nil
}

// ExpireStale cancels non-terminal intents older than ttl. The idempotency
// key is rewritten to a tombstone in the same update, which frees the
// original key for a fresh checkout without weakening the unique index.
func (s *Store) ExpireStale(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	res := s.db.WithContext(ctx).Model(&PaymentIntent{}).
		Where("state IN ? AND created_at < ?", []State{StateCreated, StateInitiated}, cutoff).
		Updates(map[string]interface{}{
			"state":           StateCancelled,
			"idempotency_key": gorm.Expr("'expired:' || id"),
			"version":         gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire stale payment intents: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func terminalStates() []State {
	return []State{StateSettled, StateFailed, StateCancelled}
}
