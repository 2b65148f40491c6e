package payroll

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"employee_id", "employee_code", "employee_name", "period_start", "period_end",
	"basic_salary", "fixed_allowances", "daily_allowances", "overtime_pay",
	"reimbursement_total", "tax_allowance", "gross_earnings",
	"bpjs_health_company", "bpjs_health_employee", "bpjs_jht_company",
	"bpjs_jht_employee", "bpjs_jkk_company", "bpjs_jkm_company", "bpjs_jp_company",
	"bpjs_jp_employee", "employee_bpjs_total", "company_bpjs_total", "ptkp_code",
	"ter_category", "pph21", "pph21_company_borne", "loan_deduction", "loan_shortfall",
	"net_salary", "bank_name", "bank_account_holder", "bank_account_number",
}

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportPeriod renders a finalized period as CSV or XLSX, one row per payslip.
func (s *PayrollServiceImpl) ExportPeriod(ctx context.Context, periodID string, format payroll.ExportFormat) (payroll.Export, error) {
	if !format.Valid() {
		return payroll.Export{}, payroll.ErrInvalidExportFormat
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.Export{}, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID, claims.CompanyID)
	if err != nil {
		return payroll.Export{}, err
	}
	if period.Status != payroll.PeriodStatusPaid {
		return payroll.Export{}, payroll.ErrPeriodNotFinalized
	}

	payslips, err := s.payrollRepo.ListPayslips(ctx, periodID, claims.CompanyID)
	if err != nil {
		return payroll.Export{}, err
	}

	export := payroll.Export{
		Filename:    fmt.Sprintf("payroll-%04d-%02d.%s", period.Year, period.Month, format),
		ContentType: contentTypeCSV,
	}
	if format == payroll.ExportXLSX {
		export.ContentType = contentTypeXLSX
	}
	if len(payslips) == 0 {
		export.Empty = true
		return export, nil
	}

	rows := make([][]interface{}, 0, len(payslips))
	for _, p := range payslips {
		rows = append(rows, exportRow(p))
	}

	switch format {
	case payroll.ExportXLSX:
		export.Body, err = renderXLSX(fmt.Sprintf("%04d-%02d", period.Year, period.Month), rows)
	default:
		export.Body, err = renderCSV(rows)
	}
	if err != nil {
		return payroll.Export{}, fmt.Errorf("failed to render payroll export: %w", err)
	}
	return export, nil
}

func exportRow(p payroll.Payslip) []interface{} {
	health := p.BPJS.Line(statutory.ProgramHealth)
	jht := p.BPJS.Line(statutory.ProgramJHT)
	jkk := p.BPJS.Line(statutory.ProgramJKK)
	jkm := p.BPJS.Line(statutory.ProgramJKM)
	jp := p.BPJS.Line(statutory.ProgramJP)

	return []interface{}{
		p.EmployeeID, p.EmployeeCode, p.EmployeeName,
		p.PeriodStart.Format("2006-01-02"), p.PeriodEnd.Format("2006-01-02"),
		p.BasicSalary, p.FixedAllowances, p.DailyAllowances, p.OvertimePay,
		p.ReimbursementTotal, p.TaxAllowance, p.GrossEarnings,
		health.CompanyAmount, health.EmployeeAmount, jht.CompanyAmount,
		jht.EmployeeAmount, jkk.CompanyAmount, jkm.CompanyAmount, jp.CompanyAmount,
		jp.EmployeeAmount, p.EmployeeBPJS, p.CompanyBPJS, string(p.PTKPCode),
		string(p.TERCategory), p.Pph21, p.Pph21CompanyBorne, p.LoanDeduction, p.LoanShortfall,
		p.NetSalary, p.BankName, p.BankAccountHolder, p.BankAccountNumber,
	}
}

func renderCSV(rows [][]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeader); err != nil {
		return nil, err
	}
	record := make([]string, len(exportHeader))
	for _, row := range rows {
		for i, v := range row {
			record[i] = cellString(v)
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(sheetName string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportHeader))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if d, ok := v.(decimal.Decimal); ok {
				cells[j] = d.InexactFloat64()
				continue
			}
			cells[j] = v
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.String()
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
