package services

import (
	"context"
	"errors"
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
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/SscSPs/travel_backoffice/internal/utils/pagination"
	"github.com/SscSPs/travel_backoffice/internal/utils/spreadsheet"
)

// maxImportRows bounds a single spreadsheet import.
const maxImportRows = 5000

type relationService struct {
	BaseService
	relationRepo portsrepo.RelationRepository
	ledger       portsrepo.VoucherRepositoryFacade
}

// NewRelationService creates a new relation service.
func NewRelationService(
	txManager portsrepo.TransactionManager,
	relationRepo portsrepo.RelationRepository,
	ledger portsrepo.VoucherRepositoryFacade,
	auditRepo portsrepo.AuditRepository,
) portssvc.RelationSvcFacade {
	return &relationService{
		BaseService:  BaseService{TxManager: txManager, AuditRepo: auditRepo},
		relationRepo: relationRepo,
		ledger:       ledger,
	}
}

var _ portssvc.RelationSvcFacade = (*relationService)(nil)

func (s *relationService) GetRelation(ctx context.Context, relationID string) (*domain.Relation, error) {
	return s.relationRepo.FindRelationByID(ctx, relationID)
}

func (s *relationService) ListRelations(ctx context.Context, params dto.ListRelationsParams) (*dto.ListRelationsResponse, error) {
	filter := domain.RelationFilter{
		Search:          strings.TrimSpace(params.Search),
		IncludeInactive: params.IncludeInactive,
		Limit:           pagination.NormalizeLimit(params.Limit, 50, 200),
		Offset:          max(params.Offset, 0),
	}
	if params.Kind != "" {
		k := domain.RelationKind(params.Kind)
		filter.Kind = &k
	}
	relations, total, err := s.relationRepo.ListRelations(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list relations")
		return nil, err
	}
	if relations == nil {
		relations = []domain.Relation{}
	}
	return &dto.ListRelationsResponse{Relations: relations, Total: total}, nil
}

// GetRelationBalance returns opening balance plus posted debits minus posted credits.
func (s *relationService) GetRelationBalance(ctx context.Context, relationID string) (decimal.Decimal, error) {
	rel, err := s.relationRepo.FindRelationByID(ctx, relationID)
	if err != nil {
		return decimal.Zero, err
	}
	balances, err := ledgerBalances(ctx, s.ledger, domain.AccountRelation, map[string]decimal.Decimal{rel.RelationID: rel.OpeningBalance})
	if err != nil {
		s.LogError(ctx, err, "Failed to compute relation balance", slog.String("relation_id", relationID))
		return decimal.Zero, err
	}
	return balances[rel.RelationID], nil
}

func (s *relationService) CreateRelation(ctx context.Context, req dto.CreateRelationRequest, userID string) (*domain.Relation, error) {
	rel, err := s.newRelation(req, userID)
	if err != nil {
		return nil, err
	}
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.relationRepo.SaveRelation(ctx, *rel); err != nil {
			return err
		}
		return s.Audit(ctx, domain.EntityRelation, rel.RelationID, domain.AuditCreate, userID, rel)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: a relation with this code already exists", apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "Failed to create relation")
		return nil, err
	}
	s.LogInfo(ctx, "Relation created", slog.String("relation_id", rel.RelationID))
	return rel, nil
}

func (s *relationService) newRelation(req dto.CreateRelationRequest, userID string) (*domain.Relation, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("%w: kind must be CLIENT, SUPPLIER or BOTH", apperrors.ErrValidation)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if !utils.IsValidCurrency(currency) {
		return nil, fmt.Errorf("%w: unknown currency %q", apperrors.ErrValidation, req.CurrencyCode)
	}
	var code *string
	if req.Code != nil && strings.TrimSpace(*req.Code) != "" {
		c := strings.TrimSpace(*req.Code)
		code = &c
	}
	return &domain.Relation{
		RelationID:     uuid.NewString(),
		Code:           code,
		Name:           name,
		Kind:           req.Kind,
		Phone:          req.Phone,
		Email:          strings.TrimSpace(req.Email),
		Address:        req.Address,
		CurrencyCode:   currency,
		OpeningBalance: req.OpeningBalance.Round(2),
		Notes:          req.Notes,
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(userID, s.clock()),
	}, nil
}

func (s *relationService) UpdateRelation(ctx context.Context, relationID string, req dto.UpdateRelationRequest, userID string) (*domain.Relation, error) {
	rel, err := s.relationRepo.FindRelationByID(ctx, relationID)
	if err != nil {
		return nil, err
	}
	if req.Code != nil {
		if c := strings.TrimSpace(*req.Code); c != "" {
			rel.Code = &c
		} else {
			rel.Code = nil
		}
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidation)
		}
		rel.Name = name
	}
	if req.Kind != nil {
		if !req.Kind.IsValid() {
			return nil, fmt.Errorf("%w: kind must be CLIENT, SUPPLIER or BOTH", apperrors.ErrValidation)
		}
		rel.Kind = *req.Kind
	}
	if req.Phone != nil {
		rel.Phone = *req.Phone
	}
	if req.Email != nil {
		rel.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		rel.Address = *req.Address
	}
	if req.Notes != nil {
		rel.Notes = *req.Notes
	}
	if req.IsActive != nil {
		rel.IsActive = *req.IsActive
	}
	rel.Touch(userID, s.clock())

	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.relationRepo.UpdateRelation(ctx, *rel); err != nil {
			return err
		}
		return s.Audit(ctx, domain.EntityRelation, rel.RelationID, domain.AuditUpdate, userID, req)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: a relation with this code already exists", apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "Failed to update relation", slog.String("relation_id", relationID))
		return nil, err
	}
	return rel, nil
}

func (s *relationService) DeactivateRelation(ctx context.Context, relationID string, userID string) error {
	inactive := false
	_, err := s.UpdateRelation(ctx, relationID, dto.UpdateRelationRequest{IsActive: &inactive}, userID)
	return err
}

// DeleteRelation removes a relation that no voucher references.
func (s *relationService) DeleteRelation(ctx context.Context, relationID string, userID string) error {
	rel, err := s.relationRepo.FindRelationByID(ctx, relationID)
	if err != nil {
		return err
	}
	return s.RunInTx(ctx, func(ctx context.Context) error {
		used, err := s.ledger.IsAccountReferenced(ctx, domain.AccountRelation, relationID)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: relation %s has vouchers; deactivate it instead", apperrors.ErrConflict, rel.Name)
		}
		if err := s.relationRepo.DeleteRelation(ctx, relationID); err != nil {
			return err
		}
		return s.Audit(ctx, domain.EntityRelation, relationID, domain.AuditDelete, userID, rel)
	})
}

// ImportRelations inserts every valid row and reports the others. Expected columns:
// name, kind, phone, email, currency, opening_balance (plus optional code, address, notes).
func (s *relationService) ImportRelations(ctx context.Context, filename string, data []byte, userID string) (*dto.ImportResult, error) {
	rows, err := spreadsheet.ReadRows(filename, data)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: file has no data rows", apperrors.ErrValidation)
	}
	if len(rows)-1 > maxImportRows {
		return nil, fmt.Errorf("%w: at most %d rows can be imported at once", apperrors.ErrValidation, maxImportRows)
	}
	idx := spreadsheet.HeaderIndex(rows[0])
	for _, col := range []string{"name", "kind", "currency"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", apperrors.ErrValidation, col)
		}
	}

	result := &dto.ImportResult{Errors: []dto.ImportRowError{}}
	for i, row := range rows[1:] {
		rowNo := i + 2
		if isBlankRow(row) {
			continue
		}
		req := dto.CreateRelationRequest{
			Name:         spreadsheet.Cell(row, idx, "name"),
			Kind:         domain.RelationKind(strings.ToUpper(spreadsheet.Cell(row, idx, "kind"))),
			Phone:        spreadsheet.Cell(row, idx, "phone"),
			Email:        spreadsheet.Cell(row, idx, "email"),
			Address:      spreadsheet.Cell(row, idx, "address"),
			CurrencyCode: spreadsheet.Cell(row, idx, "currency"),
			Notes:        spreadsheet.Cell(row, idx, "notes"),
		}
		if code := spreadsheet.Cell(row, idx, "code"); code != "" {
			req.Code = &code
		}
		if raw := spreadsheet.Cell(row, idx, "opening_balance"); raw != "" {
			amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
			if err != nil {
				result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNo, Message: "opening_balance is not a number"})
				continue
			}
			req.OpeningBalance = amount
		}

		rel, err := s.newRelation(req, userID)
		if err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNo, Message: userMessage(err)})
			continue
		}
		err = s.RunInTx(ctx, func(ctx context.Context) error {
			if err := s.relationRepo.SaveRelation(ctx, *rel); err != nil {
				return err
			}
			return s.Audit(ctx, domain.EntityRelation, rel.RelationID, domain.AuditCreate, userID, rel)
		})
		// Rows commit one by one, so anything the row itself caused is reported against it
		// and the import carries on.
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNo, Message: "a relation with this code already exists"})
		case errors.Is(err, apperrors.ErrValidation):
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNo, Message: userMessage(err)})
		case err != nil:
			s.LogError(ctx, err, "Failed to import relation row", slog.Int("row", rowNo))
			return nil, err
		default:
			result.Imported++
		}
	}
	s.LogInfo(ctx, "Relations imported",
		slog.Int("imported", result.Imported),
		slog.Int("rejected", len(result.Errors)))
	return result, nil
}

// ExportRelations renders every relation and its balance as a workbook.
func (s *relationService) ExportRelations(ctx context.Context) ([]byte, error) {
	var all []domain.Relation
	const page = 200
	for offset := 0; ; offset += page {
		batch, _, err := s.relationRepo.ListRelations(ctx, domain.RelationFilter{IncludeInactive: true, Limit: page, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < page {
			break
		}
	}

	openings := make(map[string]decimal.Decimal, len(all))
	for _, r := range all {
		openings[r.RelationID] = r.OpeningBalance
	}
	balances, err := ledgerBalances(ctx, s.ledger, domain.AccountRelation, openings)
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(all))
	for _, r := range all {
		code := ""
		if r.Code != nil {
			code = *r.Code
		}
		rows = append(rows, []any{
			code, r.Name, string(r.Kind), r.Phone, r.Email, r.CurrencyCode,
			r.OpeningBalance.StringFixed(2), balances[r.RelationID].StringFixed(2), r.IsActive,
		})
	}
	return spreadsheet.Write("Relations",
		[]string{"code", "name", "kind", "phone", "email", "currency", "opening_balance", "balance", "active"},
		rows)
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// userMessage strips the sentinel prefix from a validation error.
func userMessage(err error) string {
	msg := err.Error()
	if after, ok := strings.CutPrefix(msg, apperrors.ErrValidation.Error()+": "); ok {
		return after
	}
	return msg
}
