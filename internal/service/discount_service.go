package service

import (
	"context"
	"errors"
	"time"

	"storefront/internal/discount"

	"github.com/rs/zerolog"
)

// VerificationRecorder receives the outcome of each verification request.
type VerificationRecorder interface {
	ObserveVerification(outcome string, applicable int)
}

// Outcome labels passed to VerificationRecorder.
const (
	outcomeSuccess  = "success"
	outcomeInput    = "input_error"
	outcomeUpstream = "upstream_error"
)

// discountService implements DiscountService.
type discountService struct {
	verifier *discount.Verifier
	source   discount.CatalogSource
	recorder VerificationRecorder
	now      func() time.Time
	logger   zerolog.Logger
}

// NewDiscountService creates a discount service. recorder may be nil.
func NewDiscountService(
	verifier *discount.Verifier,
	source discount.CatalogSource,
	recorder VerificationRecorder,
	logger zerolog.Logger,
) DiscountService {
	return &discountService{
		verifier: verifier,
		source:   source,
		recorder: recorder,
		now:      time.Now,
		logger:   logger.With().Str("service", "discount").Logger(),
	}
}

// Verify validates a batch of codes and selects the applicable set.
func (s *discountService) Verify(ctx context.Context, req discount.Request) (*discount.Report, error) {
	report, err := s.verifier.Verify(ctx, req)
	if err != nil {
		var inputErr *discount.InputError
		if errors.As(err, &inputErr) {
			s.record(outcomeInput, 0)
		} else {
			s.record(outcomeUpstream, 0)
		}
		return nil, err
	}

	s.record(outcomeSuccess, report.Summary.ApplicableCodes)
	return report, nil
}

// Overview lists every active discount with usage status.
func (s *discountService) Overview(ctx context.Context) (*discount.Overview, error) {
	catalog, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch discount catalog")
		return nil, &discount.UpstreamError{Err: err}
	}

	overview := discount.Summarize(catalog, s.now())

	s.logger.Debug().
		Int("total", overview.Summary.Total).
		Int("expired", overview.Summary.Expired).
		Msg("discount overview built")

	return &overview, nil
}

func (s *discountService) record(outcome string, applicable int) {
	if s.recorder != nil {
		s.recorder.ObserveVerification(outcome, applicable)
	}
}
