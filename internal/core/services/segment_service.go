package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/utils/accounting"
	"github.com/SscSPs/travel_backoffice/internal/utils/pagination"
)

type segmentService struct {
	BaseService
	segmentRepo   portsrepo.SegmentRepository
	reportingRepo portsrepo.ReportingRepository
	vouchers      portssvc.VoucherPosterSvc
}

// NewSegmentService creates a new segment service.
func NewSegmentService(
	txManager portsrepo.TransactionManager,
	segmentRepo portsrepo.SegmentRepository,
	reportingRepo portsrepo.ReportingRepository,
	auditRepo portsrepo.AuditRepository,
	vouchers portssvc.VoucherPosterSvc,
) portssvc.SegmentSvcFacade {
	return &segmentService{
		BaseService:   BaseService{TxManager: txManager, AuditRepo: auditRepo},
		segmentRepo:   segmentRepo,
		reportingRepo: reportingRepo,
		vouchers:      vouchers,
	}
}

var _ portssvc.SegmentSvcFacade = (*segmentService)(nil)

// ComputeSegment sums the period's live bookings and visas and splits the profit.
func (s *segmentService) ComputeSegment(ctx context.Context, req dto.ComputeSegmentRequest) (*domain.Segment, error) {
	from := domain.DateOnly(req.PeriodFrom)
	to := domain.DateOnly(req.PeriodTo)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: period end is before period start", apperrors.ErrValidation)
	}
	shares := dto.ToPartnerShares(req.Partners)
	if err := accounting.ValidateShares(shares); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(req.CurrencyCode)

	totals, err := s.reportingRepo.SalesTotals(ctx, from, to, currency)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum sales for segment")
		return nil, err
	}
	dist, err := accounting.SplitProfit(totals.Profit(), shares)
	if err != nil {
		return nil, err
	}
	return &domain.Segment{
		PeriodFrom:   from,
		PeriodTo:     to,
		CurrencyCode: currency,
		TotalSales:   totals.Sales,
		TotalCost:    totals.Cost,
		TotalProfit:  dist.Profit,
		AgencyShare:  dist.PrincipalShare,
		Partners:     dist.Partners,
		Status:       domain.SegmentDraft,
		Notes:        req.Notes,
	}, nil
}

func (s *segmentService) CreateSegment(ctx context.Context, req dto.ComputeSegmentRequest, userID string) (*domain.Segment, error) {
	seg, err := s.ComputeSegment(ctx, req)
	if err != nil {
		return nil, err
	}
	seg.SegmentID = uuid.NewString()
	seg.AuditFields = domain.NewAuditFields(userID, s.clock())

	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.segmentRepo.SaveSegment(ctx, *seg); err != nil {
			return fmt.Errorf("failed to save segment: %w", err)
		}
		return s.Audit(ctx, domain.EntitySegment, seg.SegmentID, domain.AuditCreate, userID, seg)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create segment")
		return nil, err
	}
	s.LogInfo(ctx, "Segment created", slog.String("segment_id", seg.SegmentID))
	return seg, nil
}

func (s *segmentService) GetSegment(ctx context.Context, segmentID string) (*domain.Segment, error) {
	return s.segmentRepo.FindSegmentByID(ctx, segmentID)
}

func (s *segmentService) ListSegments(ctx context.Context, params dto.ListParams) ([]domain.Segment, error) {
	segs, err := s.segmentRepo.ListSegments(ctx, pagination.NormalizeLimit(params.Limit, 50, 200), max(params.Offset, 0))
	if err != nil {
		s.LogError(ctx, err, "Failed to list segments")
		return nil, err
	}
	if segs == nil {
		segs = []domain.Segment{}
	}
	return segs, nil
}

// segmentLines moves the partners' shares out of revenue into their partner accounts.
// A losing period moves the shares the other way.
func segmentLines(seg domain.Segment) []domain.VoucherLine {
	lines := make([]domain.VoucherLine, 0, len(seg.Partners)+1)
	net := decimal.Zero
	for _, p := range seg.Partners {
		switch {
		case p.Amount.IsPositive():
			lines = append(lines, domain.VoucherLine{
				AccountKind: domain.AccountPartner, AccountID: p.PartnerName, AccountName: p.PartnerName,
				Credit: p.Amount,
			})
		case p.Amount.IsNegative():
			lines = append(lines, domain.VoucherLine{
				AccountKind: domain.AccountPartner, AccountID: p.PartnerName, AccountName: p.PartnerName,
				Debit: p.Amount.Neg(),
			})
		default:
			continue
		}
		net = net.Add(p.Amount)
	}
	revenue := domain.VoucherLine{
		AccountKind: domain.AccountRevenue, AccountID: domain.LedgerPartnerShares, AccountName: domain.LedgerPartnerShares,
	}
	switch {
	case net.IsPositive():
		revenue.Debit = net
	case net.IsNegative():
		revenue.Credit = net.Neg()
	default:
		return nil
	}
	return append([]domain.VoucherLine{revenue}, lines...)
}

// FinalizeSegment posts the partners' shares and locks the segment.
func (s *segmentService) FinalizeSegment(ctx context.Context, segmentID, userID string) (*domain.Segment, error) {
	seg, err := s.segmentRepo.FindSegmentByID(ctx, segmentID)
	if err != nil {
		return nil, err
	}
	if seg.Status != domain.SegmentDraft {
		return nil, fmt.Errorf("%w: segment is already finalized", apperrors.ErrConflict)
	}
	now := s.clock()

	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if lines := segmentLines(*seg); len(lines) > 0 {
			v, err := s.vouchers.PostVoucher(ctx, domain.Voucher{
				Type: domain.VoucherSegment,
				Date: seg.PeriodTo,
				Description: fmt.Sprintf("Partner shares %s to %s",
					seg.PeriodFrom.Format("2006-01-02"), seg.PeriodTo.Format("2006-01-02")),
				CurrencyCode: seg.CurrencyCode,
				SourceType:   domain.EntitySegment,
				SourceID:     seg.SegmentID,
				Lines:        lines,
			}, userID)
			if err != nil {
				return err
			}
			seg.VoucherID = &v.VoucherID
		}
		seg.Status = domain.SegmentFinalized
		seg.Touch(userID, now)
		if err := s.segmentRepo.UpdateSegment(ctx, *seg); err != nil {
			return fmt.Errorf("failed to finalize segment: %w", err)
		}
		return s.Audit(ctx, domain.EntitySegment, seg.SegmentID, domain.AuditFinalize, userID, nil)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to finalize segment", slog.String("segment_id", segmentID))
		return nil, err
	}
	s.LogInfo(ctx, "Segment finalized", slog.String("segment_id", segmentID))
	return seg, nil
}

// DeleteSegment removes a draft segment.
func (s *segmentService) DeleteSegment(ctx context.Context, segmentID, userID string) error {
	seg, err := s.segmentRepo.FindSegmentByID(ctx, segmentID)
	if err != nil {
		return err
	}
	if seg.Status != domain.SegmentDraft {
		return fmt.Errorf("%w: only draft segments can be deleted", apperrors.ErrConflict)
	}
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.segmentRepo.DeleteSegment(ctx, segmentID); err != nil {
			return fmt.Errorf("failed to delete segment: %w", err)
		}
		return s.Audit(ctx, domain.EntitySegment, segmentID, domain.AuditDelete, userID, seg)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete segment", slog.String("segment_id", segmentID))
		return err
	}
	return nil
}
