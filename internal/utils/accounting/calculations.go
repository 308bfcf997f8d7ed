package accounting

import (
	"fmt"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DistributionTolerance is how far the parts of a distributed receipt may drift from its total.
var DistributionTolerance = decimal.NewFromFloat(0.01)

var hundred = decimal.NewFromInt(100)

// Round2 rounds an amount to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidateShares checks that every percentage is in (0, 100] and that they sum to at most 100.
func ValidateShares(shares []domain.PartnerShare) error {
	total := decimal.Zero
	seen := make(map[string]struct{}, len(shares))
	for _, s := range shares {
		if s.PartnerName == "" {
			return fmt.Errorf("%w: partner name is required", apperrors.ErrValidation)
		}
		if _, dup := seen[s.PartnerName]; dup {
			return fmt.Errorf("%w: partner %q listed twice", apperrors.ErrValidation, s.PartnerName)
		}
		seen[s.PartnerName] = struct{}{}
		if !s.Percentage.IsPositive() || s.Percentage.GreaterThan(hundred) {
			return fmt.Errorf("%w: percentage for %q must be greater than 0 and at most 100", apperrors.ErrValidation, s.PartnerName)
		}
		total = total.Add(s.Percentage)
	}
	if total.GreaterThan(hundred) {
		return fmt.Errorf("%w: partner percentages add up to %s%%", apperrors.ErrValidation, total.String())
	}
	return nil
}

// SplitProfit divides profit between partners by percentage. Each partner amount is rounded to
// cents; the principal keeps whatever is left so the parts always add up to the profit.
// A loss is split the same way.
func SplitProfit(profit decimal.Decimal, shares []domain.PartnerShare) (domain.ProfitDistribution, error) {
	if err := ValidateShares(shares); err != nil {
		return domain.ProfitDistribution{}, err
	}
	profit = Round2(profit)
	partners := make([]domain.SegmentPartner, 0, len(shares))
	allocated := decimal.Zero
	for _, s := range shares {
		amount := Round2(profit.Mul(s.Percentage).Div(hundred))
		allocated = allocated.Add(amount)
		partners = append(partners, domain.SegmentPartner{
			PartnerName: s.PartnerName,
			Percentage:  s.Percentage,
			Amount:      amount,
		})
	}
	return domain.ProfitDistribution{
		Profit:         profit,
		PrincipalShare: profit.Sub(allocated),
		Partners:       partners,
	}, nil
}

// ScheduledInstallment is one entry of a payment plan.
type ScheduledInstallment struct {
	Sequence int
	DueDate  time.Time
	Amount   decimal.Decimal
}

// InstallmentSchedule splits total into count monthly installments starting at start.
// Every installment is rounded down to cents and the last one absorbs the remainder.
func InstallmentSchedule(total decimal.Decimal, count int, start time.Time) ([]ScheduledInstallment, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: installment count must be positive", apperrors.ErrValidation)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total amount must be positive", apperrors.ErrValidation)
	}
	each := total.Div(decimal.NewFromInt(int64(count))).RoundDown(2)
	if !each.IsPositive() {
		return nil, fmt.Errorf("%w: total amount is too small for %d installments", apperrors.ErrValidation, count)
	}
	start = domain.DateOnly(start)
	out := make([]ScheduledInstallment, count)
	allocated := decimal.Zero
	for i := 0; i < count; i++ {
		amount := each
		if i == count-1 {
			amount = total.Sub(allocated)
		}
		allocated = allocated.Add(amount)
		out[i] = ScheduledInstallment{
			Sequence: i + 1,
			DueDate:  addMonthsClamped(start, i),
			Amount:   amount,
		}
	}
	return out, nil
}

// addMonthsClamped adds n months keeping the day of month, clamped to the month's last day
// (Jan 31 + 1 month is Feb 28/29, not Mar 3).
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// Distribution is a part of a receipt routed to a distribution channel.
type Distribution struct {
	ChannelID string
	Amount    decimal.Decimal
}

// ReconcileDistribution checks that settlement plus distributions equal total within
// DistributionTolerance and returns the settlement adjusted so the parts match total exactly.
func ReconcileDistribution(total, settlement decimal.Decimal, parts []Distribution) (decimal.Decimal, error) {
	if !total.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: total amount must be positive", apperrors.ErrValidation)
	}
	if settlement.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: settlement amount cannot be negative", apperrors.ErrValidation)
	}
	if !domain.IsWholeCents(total) || !domain.IsWholeCents(settlement) {
		return decimal.Zero, domain.ErrAmountPrecision
	}
	sum := settlement
	anyPositive := settlement.IsPositive()
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		if p.ChannelID == "" {
			return decimal.Zero, fmt.Errorf("%w: distribution channel is required", apperrors.ErrValidation)
		}
		if _, dup := seen[p.ChannelID]; dup {
			return decimal.Zero, fmt.Errorf("%w: channel %s appears more than once", apperrors.ErrValidation, p.ChannelID)
		}
		seen[p.ChannelID] = struct{}{}
		if p.Amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: distribution amount cannot be negative", apperrors.ErrValidation)
		}
		if !domain.IsWholeCents(p.Amount) {
			return decimal.Zero, fmt.Errorf("%w: channel %s", domain.ErrAmountPrecision, p.ChannelID)
		}
		if p.Amount.IsPositive() {
			anyPositive = true
		}
		sum = sum.Add(p.Amount)
	}
	if !anyPositive {
		return decimal.Zero, fmt.Errorf("%w: at least one part must be positive", apperrors.ErrValidation)
	}
	residual := total.Sub(sum)
	if residual.Abs().GreaterThan(DistributionTolerance) {
		return decimal.Zero, fmt.Errorf("%w: settlement and distributions add up to %s, expected %s",
			apperrors.ErrValidation, sum.StringFixed(2), total.StringFixed(2))
	}
	adjusted := settlement.Add(residual)
	if adjusted.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: settlement amount cannot absorb a residual of %s", apperrors.ErrValidation, residual.String())
	}
	return adjusted, nil
}

// SaleLines builds the journal of a sale bought from a supplier: the client is debited the sale
// price, the supplier credited the cost, and the difference goes to revenue (or loss to expense).
func SaleLines(client, supplier domain.Relation, cost, sale decimal.Decimal, revenueLedger, lossLedger string) []domain.VoucherLine {
	lines := make([]domain.VoucherLine, 0, 3)
	if sale.IsPositive() {
		lines = append(lines, domain.VoucherLine{
			AccountKind: domain.AccountRelation, AccountID: client.RelationID, AccountName: client.Name,
			Debit: sale, Credit: decimal.Zero,
		})
	}
	if cost.IsPositive() {
		lines = append(lines, domain.VoucherLine{
			AccountKind: domain.AccountRelation, AccountID: supplier.RelationID, AccountName: supplier.Name,
			Debit: decimal.Zero, Credit: cost,
		})
	}
	profit := sale.Sub(cost)
	switch {
	case profit.IsPositive():
		lines = append(lines, domain.VoucherLine{
			AccountKind: domain.AccountRevenue, AccountID: revenueLedger, AccountName: revenueLedger,
			Debit: decimal.Zero, Credit: profit,
		})
	case profit.IsNegative():
		lines = append(lines, domain.VoucherLine{
			AccountKind: domain.AccountExpense, AccountID: lossLedger, AccountName: lossLedger,
			Debit: profit.Neg(), Credit: decimal.Zero,
		})
	}
	return lines
}
