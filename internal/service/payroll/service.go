package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	"github.com/google/uuid"
)

type PayrollServiceImpl struct {
	tx                database.Transactor
	payrollRepo       payroll.PayrollRepository
	reimbursementRepo payroll.ReimbursementRepository
	employeeRepo      employee.EmployeeRepository
	loanRepo          loan.LoanRepository
	loans             payroll.LoanDeductionRecorder
	summaries         *attendancesvc.SummaryService
	engine            *Engine
	logger            *slog.Logger
	now               func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	reimbursementRepo payroll.ReimbursementRepository,
	employeeRepo employee.EmployeeRepository,
	loanRepo loan.LoanRepository,
	loans payroll.LoanDeductionRecorder,
	summaries *attendancesvc.SummaryService,
	engine *Engine,
	logger *slog.Logger,
) *PayrollServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollServiceImpl{
		tx:                tx,
		payrollRepo:       payrollRepo,
		reimbursementRepo: reimbursementRepo,
		employeeRepo:      employeeRepo,
		loanRepo:          loanRepo,
		loans:             loans,
		summaries:         summaries,
		engine:            engine,
		logger:            logger,
		now:               time.Now,
	}
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

// ========== SETTINGS ==========

func (s *PayrollServiceImpl) GetSettings(ctx context.Context) (payroll.SettingsResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}

	settings, err := s.settings(ctx, claims.CompanyID)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}
	return mapToSettingsResponse(settings), nil
}

func (s *PayrollServiceImpl) UpdateSettings(ctx context.Context, req payroll.UpdateSettingsRequest) (payroll.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SettingsResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}

	current, err := s.settings(ctx, claims.CompanyID)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}

	// Apply updates
	if req.OvertimeEnabled != nil {
		current.OvertimeEnabled = *req.OvertimeEnabled
	}
	if req.ReimbursementsInPayroll != nil {
		current.ReimbursementsInPayroll = *req.ReimbursementsInPayroll
	}
	if req.ThrIncludesFixedAllowances != nil {
		current.ThrIncludesFixedAllowances = *req.ThrIncludesFixedAllowances
	}

	updated, err := s.payrollRepo.UpsertSettings(ctx, current)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}
	return mapToSettingsResponse(updated), nil
}

// settings returns the company's settings, or the defaults when none were saved.
func (s *PayrollServiceImpl) settings(ctx context.Context, companyID string) (payroll.Settings, error) {
	settings, err := s.payrollRepo.GetSettings(ctx, companyID)
	if errors.Is(err, payroll.ErrSettingsNotFound) {
		return payroll.DefaultSettings(companyID), nil
	}
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}
	return settings, nil
}

// ========== RUNS ==========

func (s *PayrollServiceImpl) RunPayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	companyID := claims.CompanyID
	started := s.now()

	log := s.logger.With(
		slog.String("company_id", companyID),
		slog.Int("period_month", req.PeriodMonth),
		slog.Int("period_year", req.PeriodYear),
	)

	// Fast rejection before the expensive part; the insert below is the real guard.
	exists, err := s.payrollRepo.PeriodExists(ctx, companyID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if exists {
		log.WarnContext(ctx, "payroll run rejected, period exists")
		return payroll.PeriodResponse{}, payroll.ErrDuplicatePeriod
	}

	log.InfoContext(ctx, "payroll run started")

	periodStart, periodEnd := payroll.Bounds(req.PeriodYear, req.PeriodMonth)
	period := payroll.Period{
		ID:          newID(),
		CompanyID:   companyID,
		Month:       req.PeriodMonth,
		Year:        req.PeriodYear,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      payroll.PeriodStatusDraft,
	}

	result, err := s.compute(ctx, period)
	if err != nil {
		s.logRunFailure(ctx, log, err)
		return payroll.PeriodResponse{}, err
	}
	period.Totals = result.Totals

	var created payroll.Period
	err = s.tx.WithinSerializableTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.payrollRepo.CreatePeriod(ctx, period)
		if err != nil {
			return err
		}
		return s.payrollRepo.CreatePayslips(ctx, result.Payslips)
	})
	if errors.Is(err, database.ErrTxConflict) {
		err = payroll.ErrDuplicatePeriod
	}
	if err != nil {
		if errors.Is(err, payroll.ErrDuplicatePeriod) {
			log.WarnContext(ctx, "payroll run rejected, period committed concurrently")
		}
		return payroll.PeriodResponse{}, err
	}

	log.InfoContext(ctx, "payroll run finished",
		slog.String("period_id", created.ID),
		slog.Int("employee_count", created.Totals.EmployeeCount),
		slog.Duration("duration", s.now().Sub(started)),
	)
	return mapToPeriodResponse(created), nil
}

// RegenerateDraft recomputes a draft period from fresh snapshots and swaps its payslips.
func (s *PayrollServiceImpl) RegenerateDraft(ctx context.Context, periodID string) (payroll.PeriodResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID, claims.CompanyID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if period.Status == payroll.PeriodStatusPaid {
		return payroll.PeriodResponse{}, payroll.ErrPeriodAlreadyFinalized
	}

	log := s.logger.With(slog.String("company_id", claims.CompanyID), slog.String("period_id", periodID))

	result, err := s.compute(ctx, period)
	if err != nil {
		s.logRunFailure(ctx, log, err)
		return payroll.PeriodResponse{}, err
	}

	var updated payroll.Period
	err = s.tx.WithinSerializableTx(ctx, func(ctx context.Context) error {
		locked, err := s.payrollRepo.GetPeriodByIDForUpdate(ctx, periodID, claims.CompanyID)
		if err != nil {
			return err
		}
		if locked.Status == payroll.PeriodStatusPaid {
			return payroll.ErrPeriodAlreadyFinalized
		}
		if err := s.payrollRepo.DeletePayslips(ctx, periodID, claims.CompanyID); err != nil {
			return err
		}
		if err := s.payrollRepo.CreatePayslips(ctx, result.Payslips); err != nil {
			return err
		}
		locked.Totals = result.Totals
		if err := s.payrollRepo.UpdatePeriod(ctx, locked); err != nil {
			return err
		}
		updated = locked
		return nil
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	log.InfoContext(ctx, "payroll draft regenerated", slog.Int("employee_count", updated.Totals.EmployeeCount))
	return mapToPeriodResponse(updated), nil
}

// FinalizePeriod marks a draft period paid and books its loan deductions as payments.
func (s *PayrollServiceImpl) FinalizePeriod(ctx context.Context, periodID string) (payroll.PeriodResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	var finalized payroll.Period
	err = s.tx.WithinSerializableTx(ctx, func(ctx context.Context) error {
		period, err := s.payrollRepo.GetPeriodByIDForUpdate(ctx, periodID, claims.CompanyID)
		if err != nil {
			return err
		}
		if period.Status == payroll.PeriodStatusPaid {
			return payroll.ErrPeriodAlreadyFinalized
		}

		payslips, err := s.payrollRepo.ListPayslips(ctx, periodID, claims.CompanyID)
		if err != nil {
			return err
		}

		paidAt := s.now()
		for _, slip := range payslips {
			for _, line := range slip.LoanDeductions {
				if !line.Deducted.IsPositive() {
					continue
				}
				_, err := s.loans.ApplyPayrollDeduction(ctx, claims.CompanyID, line.LoanID, line.Installment, line.Deducted, periodID, paidAt)
				if errors.Is(err, loan.ErrInstallmentMismatch) || errors.Is(err, loan.ErrLoanNotActive) {
					// The loan moved on after the draft was computed.
					s.logger.WarnContext(ctx, "payroll finalize rejected, loan changed since draft",
						slog.String("company_id", claims.CompanyID),
						slog.String("period_id", periodID),
						slog.String("loan_id", line.LoanID),
						slog.Int("installment", line.Installment),
					)
					return fmt.Errorf("%w: loan %s of employee %s: %v", payroll.ErrPeriodStale, line.LoanID, slip.EmployeeID, err)
				}
				if err != nil {
					return fmt.Errorf("failed to record loan deduction for employee %s: %w", slip.EmployeeID, err)
				}
			}
		}

		period.Status = payroll.PeriodStatusPaid
		period.FinalizedAt = &paidAt
		period.FinalizedBy = &claims.UserID
		if err := s.payrollRepo.UpdatePeriod(ctx, period); err != nil {
			return err
		}
		finalized = period
		return nil
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	s.logger.InfoContext(ctx, "payroll period finalized",
		slog.String("company_id", claims.CompanyID),
		slog.String("period_id", periodID),
		slog.String("finalized_by", claims.UserID),
	)
	return mapToPeriodResponse(finalized), nil
}

// compute loads the period's snapshots and runs the engine. Payslips come back with ids.
func (s *PayrollServiceImpl) compute(ctx context.Context, period payroll.Period) (payroll.RunResult, error) {
	input, err := s.snapshot(ctx, period)
	if err != nil {
		return payroll.RunResult{}, err
	}

	result, err := s.engine.Run(ctx, input)
	if err != nil {
		return payroll.RunResult{}, err
	}

	for i := range result.Payslips {
		result.Payslips[i].ID = newID()
	}
	return result, nil
}

func (s *PayrollServiceImpl) snapshot(ctx context.Context, period payroll.Period) (payroll.RunInput, error) {
	companyID := period.CompanyID
	input := payroll.RunInput{
		CompanyID:      companyID,
		PeriodID:       period.ID,
		Month:          period.Month,
		Year:           period.Year,
		Attendance:     map[string]attendance.Summary{},
		Loans:          map[string][]loan.Account{},
		Reimbursements: map[string][]payroll.Reimbursement{},
		YearToDate:     map[string]statutory.YearToDate{},
	}

	settings, err := s.settings(ctx, companyID)
	if err != nil {
		return payroll.RunInput{}, err
	}
	input.Settings = settings

	roster, err := s.employeeRepo.ListActivePayProfiles(ctx, companyID)
	if err != nil {
		return payroll.RunInput{}, fmt.Errorf("failed to get employees: %w", err)
	}
	input.Roster = roster
	if len(roster) == 0 {
		return input, nil
	}

	employeeIDs := make([]string, 0, len(roster))
	for _, emp := range roster {
		employeeIDs = append(employeeIDs, emp.ID)
	}

	input.Attendance, err = s.summaries.Summaries(ctx, companyID, employeeIDs, period.PeriodStart, period.PeriodEnd)
	if err != nil {
		return payroll.RunInput{}, err
	}

	accounts, err := s.loanRepo.ListActiveByEmployees(ctx, companyID, employeeIDs)
	if err != nil {
		return payroll.RunInput{}, fmt.Errorf("failed to get active loans: %w", err)
	}
	for _, a := range accounts {
		input.Loans[a.EmployeeID] = append(input.Loans[a.EmployeeID], a)
	}

	approved, err := s.reimbursementRepo.ListApproved(ctx, companyID, period.PeriodStart, period.PeriodEnd, employeeIDs)
	if err != nil {
		return payroll.RunInput{}, fmt.Errorf("failed to get reimbursements: %w", err)
	}
	for _, r := range approved {
		input.Reimbursements[r.EmployeeID] = append(input.Reimbursements[r.EmployeeID], r)
	}

	if period.Month > 1 {
		input.YearToDate, err = s.payrollRepo.YearToDate(ctx, companyID, period.Year, period.Month, employeeIDs)
		if err != nil {
			return payroll.RunInput{}, fmt.Errorf("failed to get year-to-date totals: %w", err)
		}
	}

	return input, nil
}

func (s *PayrollServiceImpl) logRunFailure(ctx context.Context, log *slog.Logger, err error) {
	var calcErr *payroll.EmployeeCalculationError
	if errors.As(err, &calcErr) {
		log.ErrorContext(ctx, "payroll run aborted", slog.String("employee_id", calcErr.EmployeeID), slog.Any("error", calcErr.Err))
		return
	}
	log.ErrorContext(ctx, "payroll run failed", slog.Any("error", err))
}

// ========== PERIODS & PAYSLIPS ==========

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, periodID string) (payroll.PeriodResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID, claims.CompanyID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return mapToPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) (payroll.ListPeriodResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPeriodResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListPeriodResponse{}, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	periods, totalCount, err := s.payrollRepo.ListPeriods(ctx, claims.CompanyID, filter)
	if err != nil {
		return payroll.ListPeriodResponse{}, err
	}

	data := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		data = append(data, mapToPeriodResponse(p))
	}
	return payroll.ListPeriodResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, periodID string) ([]payroll.PayslipResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.payrollRepo.GetPeriodByID(ctx, periodID, claims.CompanyID); err != nil {
		return nil, err
	}

	payslips, err := s.payrollRepo.ListPayslips(ctx, periodID, claims.CompanyID)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		result = append(result, mapToPayslipResponse(p))
	}
	return result, nil
}

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, payslipID string) (payroll.PayslipResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	payslip, err := s.payrollRepo.GetPayslipByID(ctx, payslipID, claims.CompanyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return mapToPayslipResponse(payslip), nil
}

// ========== HELPERS ==========

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func mapToSettingsResponse(s payroll.Settings) payroll.SettingsResponse {
	return payroll.SettingsResponse{
		CompanyID:                  s.CompanyID,
		OvertimeEnabled:            s.OvertimeEnabled,
		ReimbursementsInPayroll:    s.ReimbursementsInPayroll,
		ThrIncludesFixedAllowances: s.ThrIncludesFixedAllowances,
	}
}

func mapToPeriodResponse(p payroll.Period) payroll.PeriodResponse {
	var finalizedAt *string
	if p.FinalizedAt != nil {
		str := p.FinalizedAt.Format(time.RFC3339)
		finalizedAt = &str
	}

	t := p.Totals
	return payroll.PeriodResponse{
		ID:          p.ID,
		PeriodMonth: p.Month,
		PeriodYear:  p.Year,
		PeriodStart: p.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   p.PeriodEnd.Format("2006-01-02"),
		Status:      string(p.Status),
		Totals: payroll.TotalsResponse{
			EmployeeCount:     t.EmployeeCount,
			BasicSalary:       t.BasicSalary,
			FixedAllowances:   t.FixedAllowances,
			DailyAllowances:   t.DailyAllowances,
			OvertimePay:       t.OvertimePay,
			Reimbursements:    t.Reimbursements,
			TaxAllowance:      t.TaxAllowance,
			GrossEarnings:     t.GrossEarnings,
			EmployeeBPJS:      t.EmployeeBPJS,
			CompanyBPJS:       t.CompanyBPJS,
			Pph21:             t.Pph21,
			Pph21CompanyBorne: t.Pph21CompanyBorne,
			LoanDeduction:     t.LoanDeduction,
			NetSalary:         t.NetSalary,
		},
		FinalizedAt: finalizedAt,
		FinalizedBy: p.FinalizedBy,
	}
}

func mapToPayslipResponse(p payroll.Payslip) payroll.PayslipResponse {
	return payroll.PayslipResponse{
		ID:                      p.ID,
		PeriodID:                p.PeriodID,
		EmployeeID:              p.EmployeeID,
		EmployeeCode:            p.EmployeeCode,
		EmployeeName:            p.EmployeeName,
		PeriodStart:             p.PeriodStart.Format("2006-01-02"),
		PeriodEnd:               p.PeriodEnd.Format("2006-01-02"),
		BasicSalary:             p.BasicSalary,
		FixedAllowances:         p.FixedAllowances,
		DailyAllowances:         p.DailyAllowances,
		Components:              p.Components,
		DaysPresent:             p.DaysPresent,
		OvertimeHours:           p.OvertimeHours,
		OvertimePay:             p.OvertimePay,
		ReimbursementTotal:      p.ReimbursementTotal,
		ReimbursementsInPayroll: p.ReimbursementsInPayroll,
		TaxAllowance:            p.TaxAllowance,
		GrossEarnings:           p.GrossEarnings,
		TaxableGross:            p.TaxableGross,
		BPJS:                    p.BPJS,
		EmployeeBPJS:            p.EmployeeBPJS,
		CompanyBPJS:             p.CompanyBPJS,
		PTKPCode:                string(p.PTKPCode),
		TERCategory:             string(p.TERCategory),
		PPh21Detail:             p.PPh21,
		Pph21:                   p.Pph21,
		Pph21CompanyBorne:       p.Pph21CompanyBorne,
		Pph21Shortfall:          p.Pph21Shortfall,
		Pph21Refund:             p.Pph21Refund,
		LoanDeductions:          p.LoanDeductions,
		LoanDeduction:           p.LoanDeduction,
		LoanShortfall:           p.LoanShortfall,
		NetSalary:               p.NetSalary,
		BankName:                p.BankName,
		BankAccountHolder:       p.BankAccountHolder,
		BankAccountNumber:       p.BankAccountNumber,
	}
}
