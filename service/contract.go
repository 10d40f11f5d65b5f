package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RaghavGalappanavar/Deployment/model"
	"github.com/RaghavGalappanavar/Deployment/pkg/logger"
	"github.com/google/uuid"
)

// ContractService generates contracts: it renders the PDF, stores it, records
// the contract and announces it. It owns the one-contract-per-purchase-request
// guarantee.
type ContractService struct {
	repo           ContractRepository
	artifacts      ArtifactStore
	renderer       Renderer
	publisher      EventPublisher
	publishTimeout time.Duration

	newID func() string
	now   func() time.Time

	inflight sync.WaitGroup
}

type Option func(*ContractService)

// WithIDGenerator overrides how contract ids are assigned
func WithIDGenerator(fn func() string) Option {
	return func(s *ContractService) { s.newID = fn }
}

// WithClock overrides the time source
func WithClock(fn func() time.Time) Option {
	return func(s *ContractService) { s.now = fn }
}

// WithPublishTimeout bounds each asynchronous event publish
func WithPublishTimeout(d time.Duration) Option {
	return func(s *ContractService) { s.publishTimeout = d }
}

func NewContractService(repo ContractRepository, artifacts ArtifactStore, renderer Renderer, publisher EventPublisher, opts ...Option) *ContractService {
	if publisher == nil {
		publisher = LogPublisher{}
	}
	s := &ContractService{
		repo:           repo,
		artifacts:      artifacts,
		renderer:       renderer,
		publisher:      publisher,
		publishTimeout: 5 * time.Second,
		newID:          uuid.NewString,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateContract creates the contract and its PDF. Nothing is persisted
// unless both the artifact and the record were written.
func (s *ContractService) GenerateContract(ctx context.Context, req *model.ContractRequest) (*model.ContractResponse, error) {
	if err := validateContractRequest(req); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByPurchaseRequestID(ctx, req.PurchaseRequestID); err == nil {
		logger.Warn(ctx, "duplicate contract request",
			"purchase_request_id", req.PurchaseRequestID,
			"contract_id", existing.ID,
		)
		return nil, fmt.Errorf("purchase request %s: %w", req.PurchaseRequestID, ErrDuplicateRequest)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing contract: %w", err)
	}

	contract := &model.Contract{
		ID:                s.newID(),
		PurchaseRequestID: req.PurchaseRequestID,
		DealID:            firstNonEmpty(req.DealID, req.DealData.DealID),
		Status:            model.StatusGenerated,
		DealData:          *req.DealData,
		GeneratedAt:       s.now().UTC(),
	}

	pdf, err := s.renderer.Render(contract)
	if err != nil {
		return nil, fmt.Errorf("render contract %s: %w", contract.ID, err)
	}

	location, err := s.artifacts.Put(ctx, contract.ID+".pdf", bytes.NewReader(pdf), int64(len(pdf)))
	if err != nil {
		return nil, fmt.Errorf("store contract pdf %s: %w", contract.ID, err)
	}
	contract.PDFLocation = location

	if err := s.repo.Create(ctx, contract); err != nil {
		if delErr := s.artifacts.Delete(context.WithoutCancel(ctx), location); delErr != nil {
			logger.Error(ctx, "failed to remove orphaned contract pdf",
				"contract_id", contract.ID,
				"location", location,
				"error", delErr,
			)
		}
		if errors.Is(err, ErrDuplicateRequest) {
			return nil, err
		}
		return nil, fmt.Errorf("save contract %s: %w", contract.ID, err)
	}

	logger.Info(ctx, "contract generated",
		"contract_id", contract.ID,
		"purchase_request_id", contract.PurchaseRequestID,
		"pdf_bytes", len(pdf),
	)

	s.publishCreated(ctx, contract)

	return contract.Response(), nil
}

func (s *ContractService) GetContractByID(ctx context.Context, contractID string) (*model.ContractDetailsResponse, error) {
	contract, err := s.repo.Get(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return contract.Details(), nil
}

// GetContractPDFLocation resolves a contract id to the locator of its PDF
func (s *ContractService) GetContractPDFLocation(ctx context.Context, contractID string) (string, error) {
	contract, err := s.repo.Get(ctx, contractID)
	if err != nil {
		return "", err
	}
	if contract.PDFLocation == "" {
		return "", fmt.Errorf("contract %s has no pdf: %w", contractID, ErrNotFound)
	}
	return contract.PDFLocation, nil
}

// publishCreated sends the event in the background. Delivery failures are
// logged and never reach the caller.
func (s *ContractService) publishCreated(ctx context.Context, contract *model.Contract) {
	event := model.ContractCreatedEvent{
		EventID:           uuid.NewString(),
		EventType:         model.EventContractCreated,
		ContractID:        contract.ID,
		PurchaseRequestID: contract.PurchaseRequestID,
		DealID:            contract.DealID,
		OccurredAt:        s.now().UTC(),
		TraceID:           logger.TraceID(ctx),
	}

	// outlives the request
	bg := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		pubCtx, cancel := context.WithTimeout(bg, s.publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(pubCtx, event); err != nil {
			logger.Error(bg, "failed to publish contract created event",
				"contract_id", event.ContractID,
				"event_id", event.EventID,
				"error", err,
			)
		}
	}()
}

// Wait blocks until all in-flight event publishes have finished
func (s *ContractService) Wait() {
	s.inflight.Wait()
}

func validateContractRequest(req *model.ContractRequest) error {
	if req == nil || req.DealData == nil || req.DealData.Customer == nil {
		return fmt.Errorf("deal data with customer is required: %w", ErrInvalidData)
	}
	if strings.TrimSpace(req.PurchaseRequestID) == "" {
		return fmt.Errorf("purchaseRequestId must not be blank: %w", ErrInvalidData)
	}

	deal := req.DealData
	if req.DealID != "" && deal.DealID != "" && req.DealID != deal.DealID {
		return fmt.Errorf("dealId %q does not match dealData.dealId %q: %w", req.DealID, deal.DealID, ErrInvalidData)
	}
	if fd := deal.CustomerFinanceDetails; fd != nil && fd.DownPayment > fd.TotalPrice {
		return fmt.Errorf("downPayment exceeds totalPrice: %w", ErrInvalidData)
	}
	if strings.EqualFold(deal.Customer.CustomerType, "BUSINESS") && strings.TrimSpace(deal.Customer.CompanyName) == "" {
		return fmt.Errorf("companyName is required for business customers: %w", ErrInvalidData)
	}
	return nil
}
