package service

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/metafield"
	"github.com/FilipposDe/shopify-fields-app/internal/metrics"
	"github.com/FilipposDe/shopify-fields-app/internal/repository"
	"github.com/FilipposDe/shopify-fields-app/internal/shopify"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

type syncService struct {
	repos   *repository.Repositories
	admin   AdminAPIFactory
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewSyncService creates the product metafield submission orchestrator
func NewSyncService(repos *repository.Repositories, admin AdminAPIFactory, m *metrics.Metrics, logger *zap.Logger) *syncService {
	return &syncService{
		repos:    repos,
		admin:    admin,
		metrics:  m,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// submission tracks one run through the sync state machine
type submission struct {
	state domain.SyncState
}

func (s *submission) transition(next domain.SyncState) error {
	if !s.state.CanTransitionTo(next) {
		return &errors.ErrInvalidStateTransition{From: s.state, To: next}
	}
	s.state = next
	return nil
}

func (s *syncService) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *syncService) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

// Submit converges the product's app metafields with values. Batches run in
// order updates, deletes, creates; a failure stops the run and leaves applied
// batches in place. Only one submission per shop and product runs at a time.
func (s *syncService) Submit(ctx context.Context, session *domain.Session, productID string, values domain.FormValues) (*SyncResult, error) {
	productGID, err := shopify.ProductGID(productID)
	if err != nil {
		return nil, &errors.ErrValidation{Message: err.Error()}
	}

	shop, err := resolveShop(ctx, s.repos, session.Shop)
	if err != nil {
		return nil, err
	}
	defs, err := s.repos.Field.ListByShop(ctx, shop.ID)
	if err != nil {
		return nil, err
	}
	if err := validateFormValues(defs, values); err != nil {
		return nil, err
	}

	key := session.Shop + "|" + productGID
	if !s.acquire(key) {
		s.metrics.SyncSubmissions.WithLabelValues("conflict").Inc()
		return nil, &errors.ErrConflict{Message: "A submission for this product is already in progress"}
	}
	defer s.release(key)

	sub := &submission{state: domain.SyncStateIdle}
	if err := sub.transition(domain.SyncStateSubmitting); err != nil {
		return nil, err
	}

	result, runErr := s.run(ctx, s.admin(session), productGID, defs, values)

	outcome := domain.SyncStateSucceeded
	if runErr != nil {
		outcome = domain.SyncStateFailed
	}
	if err := sub.transition(outcome); err != nil {
		return nil, err
	}

	logFields := []zap.Field{
		zap.String("shop", session.Shop),
		zap.String("product_id", productGID),
		zap.String("state", string(sub.state)),
	}
	if runErr != nil {
		s.metrics.SyncSubmissions.WithLabelValues("failed").Inc()
		s.logger.Error("Metafield submission failed", append(logFields, zap.Error(runErr))...)
	} else {
		s.metrics.SyncSubmissions.WithLabelValues("succeeded").Inc()
		s.logger.Info("Metafield submission finished", append(logFields,
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("deleted", result.Deleted),
		)...)
		result.State = sub.state
	}

	if err := sub.transition(domain.SyncStateIdle); err != nil {
		return nil, err
	}
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func (s *syncService) run(ctx context.Context, api AdminAPI, productGID string, defs []*domain.Field, values domain.FormValues) (*SyncResult, error) {
	product, err := api.ProductMetafields(ctx, productGID)
	if err != nil {
		return nil, err
	}

	plan := metafield.Reconcile(defs, product.Metafields, values)
	result := &SyncResult{}

	if len(plan.ToUpdate) > 0 {
		if err := api.UpdateMetafields(ctx, productGID, plan.ToUpdate); err != nil {
			return nil, err
		}
		result.Updated = len(plan.ToUpdate)
		s.metrics.MetafieldOperations.WithLabelValues("update").Add(float64(result.Updated))
	}

	for _, d := range plan.ToDelete {
		if err := api.DeleteMetafield(ctx, d.ID); err != nil {
			return nil, err
		}
		result.Deleted++
		s.metrics.MetafieldOperations.WithLabelValues("delete").Inc()
	}

	if len(plan.ToCreate) > 0 {
		if err := api.CreateMetafields(ctx, productGID, plan.ToCreate); err != nil {
			return nil, err
		}
		result.Created = len(plan.ToCreate)
		s.metrics.MetafieldOperations.WithLabelValues("create").Add(float64(result.Created))
	}

	if plan.IsEmpty() {
		result.Values = metafield.InitialValues(defs, product.Metafields)
		return result, nil
	}

	// remote state is authoritative after any write
	refetched, err := api.ProductMetafields(ctx, productGID)
	if err != nil {
		return nil, err
	}
	result.Values = metafield.InitialValues(defs, refetched.Metafields)
	return result, nil
}

// validateFormValues rejects unknown field names and non-numeric NUMBER values
func validateFormValues(defs []*domain.Field, values domain.FormValues) error {
	types := make(map[string]domain.FieldType, len(defs))
	for _, def := range defs {
		types[def.Name] = def.Type
	}

	problems := map[string]string{}
	for name, value := range values {
		fieldType, ok := types[name]
		if !ok {
			problems[name] = fmt.Sprintf("Unknown field %q", name)
			continue
		}
		if fieldType == domain.FieldTypeNumber && value != "" {
			if !decimalPattern.MatchString(value) {
				problems[name] = "Value must be a number"
			}
		}
	}
	if len(problems) > 0 {
		return &errors.ErrValidation{Message: "invalid values", Fields: problems}
	}
	return nil
}
