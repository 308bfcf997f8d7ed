package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/utils/spreadsheet"
)

type reportingService struct {
	BaseService
	relationRepo    portsrepo.RelationRepository
	boxRepo         portsrepo.BoxRepository
	channelRepo     portsrepo.ChannelRepository
	ledger          portsrepo.VoucherRepositoryFacade
	reportingRepo   portsrepo.ReportingRepository
	subRepo         portsrepo.SubscriptionRepository
	defaultCurrency string
}

// ReportingDeps groups the repositories the reporting service reads from.
type ReportingDeps struct {
	RelationRepo    portsrepo.RelationRepository
	BoxRepo         portsrepo.BoxRepository
	ChannelRepo     portsrepo.ChannelRepository
	Ledger          portsrepo.VoucherRepositoryFacade
	ReportingRepo   portsrepo.ReportingRepository
	SubRepo         portsrepo.SubscriptionRepository
	DefaultCurrency string
}

// NewReportingService creates a new reporting service.
func NewReportingService(deps ReportingDeps) portssvc.ReportingService {
	return &reportingService{
		relationRepo:    deps.RelationRepo,
		boxRepo:         deps.BoxRepo,
		channelRepo:     deps.ChannelRepo,
		ledger:          deps.Ledger,
		reportingRepo:   deps.ReportingRepo,
		subRepo:         deps.SubRepo,
		defaultCurrency: strings.ToUpper(deps.DefaultCurrency),
	}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// AccountStatement computes the opening balance at from, each movement up to to with a running
// balance, and the closing balance.
func (s *reportingService) AccountStatement(ctx context.Context, params dto.StatementParams) (*domain.AccountStatement, error) {
	from := domain.DateOnly(params.From)
	to := domain.DateOnly(params.To)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", apperrors.ErrValidation)
	}

	st := &domain.AccountStatement{AccountKind: params.Kind, AccountID: params.ID, From: from, To: to}
	base := decimal.Zero
	switch params.Kind {
	case domain.AccountRelation:
		rel, err := s.relationRepo.FindRelationByID(ctx, params.ID)
		if err != nil {
			return nil, err
		}
		st.AccountName, st.CurrencyCode, base = rel.Name, rel.CurrencyCode, rel.OpeningBalance
	case domain.AccountBox:
		box, err := s.boxRepo.FindBoxByID(ctx, params.ID)
		if err != nil {
			return nil, err
		}
		st.AccountName, st.CurrencyCode, base = box.Name, box.CurrencyCode, box.OpeningBalance
	case domain.AccountChannel:
		ch, err := s.channelRepo.FindChannelByID(ctx, params.ID)
		if err != nil {
			return nil, err
		}
		st.AccountName = ch.Name
	default:
		return nil, fmt.Errorf("%w: statements are available for relations, boxes and channels", apperrors.ErrValidation)
	}

	before, err := s.ledger.SumMovements(ctx, params.Kind, []string{params.ID}, &from)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum movements before statement period")
		return nil, err
	}
	st.OpeningBalance = base.Add(before[params.ID].Net())

	lines, err := s.ledger.FindStatementLines(ctx, params.Kind, params.ID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to load statement lines")
		return nil, err
	}
	running := st.OpeningBalance
	st.TotalDebit, st.TotalCredit = decimal.Zero, decimal.Zero
	for i := range lines {
		running = running.Add(lines[i].Debit).Sub(lines[i].Credit)
		lines[i].RunningBalance = running
		st.TotalDebit = st.TotalDebit.Add(lines[i].Debit)
		st.TotalCredit = st.TotalCredit.Add(lines[i].Credit)
	}
	if lines == nil {
		lines = []domain.StatementLine{}
	}
	st.Lines = lines
	st.ClosingBalance = running
	return st, nil
}

// ExportStatement renders the statement as a workbook with an opening and a closing row.
func (s *reportingService) ExportStatement(ctx context.Context, params dto.StatementParams) ([]byte, error) {
	st, err := s.AccountStatement(ctx, params)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(st.Lines)+2)
	rows = append(rows, []any{st.From.Format("2006-01-02"), "", "", "Opening balance", "", "", st.OpeningBalance.StringFixed(2)})
	for _, l := range st.Lines {
		rows = append(rows, []any{
			l.Date.Format("2006-01-02"), l.VoucherNumber, string(l.VoucherType), l.Description,
			l.Debit.StringFixed(2), l.Credit.StringFixed(2), l.RunningBalance.StringFixed(2),
		})
	}
	rows = append(rows, []any{st.To.Format("2006-01-02"), "", "", "Closing balance",
		st.TotalDebit.StringFixed(2), st.TotalCredit.StringFixed(2), st.ClosingBalance.StringFixed(2)})

	return spreadsheet.Write("Statement",
		[]string{"date", "voucher", "type", "description", "debit", "credit", "balance"},
		rows)
}

// Dashboard summarises sales in the period and the current positions.
func (s *reportingService) Dashboard(ctx context.Context, params dto.DashboardParams) (*domain.Dashboard, error) {
	from := domain.DateOnly(params.From)
	to := domain.DateOnly(params.To)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", apperrors.ErrValidation)
	}
	currency := strings.ToUpper(params.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}

	totals, err := s.reportingRepo.SalesTotals(ctx, from, to, currency)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute sales totals")
		return nil, err
	}
	receivables, payables, err := s.reportingRepo.RelationPositions(ctx, currency)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute relation positions")
		return nil, err
	}
	overdue, err := s.subRepo.CountInstallmentsByStatus(ctx, domain.InstallmentOverdue)
	if err != nil {
		s.LogError(ctx, err, "Failed to count overdue installments")
		return nil, err
	}

	boxes, err := s.boxRepo.ListBoxes(ctx, false)
	if err != nil {
		return nil, err
	}
	openings := make(map[string]decimal.Decimal, len(boxes))
	for _, b := range boxes {
		openings[b.BoxID] = b.OpeningBalance
	}
	balances, err := ledgerBalances(ctx, s.ledger, domain.AccountBox, openings)
	if err != nil {
		return nil, err
	}
	boxBalances := make([]domain.AccountBalance, len(boxes))
	for i, b := range boxes {
		boxBalances[i] = domain.AccountBalance{
			AccountKind:  domain.AccountBox,
			AccountID:    b.BoxID,
			AccountName:  b.Name,
			CurrencyCode: b.CurrencyCode,
			Balance:      balances[b.BoxID],
		}
	}

	return &domain.Dashboard{
		From:                    from,
		To:                      to,
		BookingCount:            totals.BookingCount,
		VisaCount:               totals.VisaCount,
		Sales:                   totals.Sales,
		Cost:                    totals.Cost,
		Profit:                  totals.Profit(),
		Receivables:             receivables,
		Payables:                payables,
		Boxes:                   boxBalances,
		OverdueInstallmentCount: overdue,
	}, nil
}
