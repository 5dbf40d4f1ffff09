package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/internal/metrics"
	"github.com/gsdclabs/gsdc-backend/pkg/auth"
	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
	"github.com/gsdclabs/gsdc-backend/pkg/kycstore"
)

// statusResolver is one prioritized source in the status fallback chain.
// It reports (result, true) when it has an authoritative answer and
// (nil, false) to pass to the next source. Resolvers fail soft: they
// never return errors.
type statusResolver struct {
	name    string
	resolve func(ctx context.Context, address string) (*kyc.StatusResult, bool)
}

// Status returns the single status that drives verification gating for an
// address. Sources are consulted in priority order: the database record
// wins because it reflects the latest authoritative decision (including
// pending and rejected states the chain cannot express), then the
// on-chain flag, then the NOT_SUBMITTED default.
//
// Status never returns an error: every failure path, including an invalid
// address or an unreachable chain, degrades to NOT_SUBMITTED.
func (s *kycService) Status(ctx context.Context, address string) (result *kyc.StatusResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Status resolution panicked",
				zap.String("address", address),
				zap.Any("panic", r))
			result = notSubmitted(address)
		}
	}()

	if !auth.ValidateEVMAddress(address) {
		return notSubmitted(address)
	}
	address = strings.ToLower(address)

	for _, resolver := range s.resolvers() {
		if res, ok := resolver.resolve(ctx, address); ok {
			metrics.StatusLookupsTotal.WithLabelValues(res.Source, string(res.Status)).Inc()
			return res
		}
	}

	metrics.StatusLookupsTotal.WithLabelValues("default", string(kyc.StatusNotSubmitted)).Inc()
	return notSubmitted(address)
}

func (s *kycService) resolvers() []statusResolver {
	return []statusResolver{
		{name: "record", resolve: s.resolveFromStore},
		{name: "chain", resolve: s.resolveFromChain},
	}
}

// resolveFromStore returns the status of the newest record for the
// address, across all verification methods.
func (s *kycService) resolveFromStore(ctx context.Context, address string) (*kyc.StatusResult, bool) {
	latest, err := s.store.LatestByAddress(ctx, address)
	if err != nil {
		if !errors.Is(err, kycstore.ErrRequestNotFound) {
			s.logger.Warn("Record lookup failed during status resolution",
				zap.String("address", address),
				zap.Error(err))
		}
		return nil, false
	}

	return &kyc.StatusResult{
		Address: address,
		Status:  latest.Status,
		Source:  "record",
		Request: latest,
	}, true
}

// resolveFromChain falls back to the on-chain verification flag. The read
// is bounded by the chain client's configured timeout; any failure passes
// to the default.
func (s *kycService) resolveFromChain(ctx context.Context, address string) (*kyc.StatusResult, bool) {
	if s.chain == nil {
		return nil, false
	}

	approved, err := s.chain.Approved(ctx, common.HexToAddress(address))
	if err != nil {
		s.logger.Debug("On-chain flag read failed during status resolution",
			zap.String("address", address),
			zap.Error(err))
		return nil, false
	}
	if !approved {
		return nil, false
	}

	return &kyc.StatusResult{
		Address: address,
		Status:  kyc.StatusApproved,
		Source:  "chain",
	}, true
}

func notSubmitted(address string) *kyc.StatusResult {
	return &kyc.StatusResult{
		Address: strings.ToLower(address),
		Status:  kyc.StatusNotSubmitted,
		Source:  "default",
	}
}
