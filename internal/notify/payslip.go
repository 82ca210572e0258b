package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/seyi-aluko/payrun/internal/domain"
)

const mimeBoundary = "payslip-boundary-7c9e4a"

func payslipSubject(orgName, payPeriod string) string {
	return fmt.Sprintf("Your Payslip for %s - %s", payPeriod, orgName)
}

func formatAmount(amount decimal.Decimal) string {
	return "NGN " + amount.StringFixed(2)
}

func gatewayRef(slip domain.PayrollSlip) string {
	if slip.GatewayReference == nil {
		return "N/A"
	}
	return *slip.GatewayReference
}

// buildPayslipMessage assembles a multipart/alternative message with plain
// text and HTML renditions of the payslip.
func buildPayslipMessage(cfg SMTPConfig, employee domain.Employee, orgName string, slip domain.PayrollSlip) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s <%s>\r\n", cfg.FromName, cfg.FromAddress)
	fmt.Fprintf(&b, "To: %s <%s>\r\n", employee.FullName(), employee.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", payslipSubject(orgName, slip.PayPeriod))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", mimeBoundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(renderPayslipText(employee.FullName(), orgName, slip))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(renderPayslipHTML(employee.FullName(), orgName, slip))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	return []byte(b.String())
}

func renderPayslipText(employeeName, orgName string, slip domain.PayrollSlip) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", employeeName)
	fmt.Fprintf(&b, "Your salary for %s has been processed by %s.\n\n", slip.PayPeriod, orgName)

	b.WriteString("EARNINGS\n")
	fmt.Fprintf(&b, "Base Salary:         %s\n", formatAmount(slip.BaseSalary))
	fmt.Fprintf(&b, "Allowances/Bonuses:  %s\n", formatAmount(slip.TotalAdditions))
	fmt.Fprintf(&b, "Gross Salary:        %s\n\n", formatAmount(slip.GrossSalary))

	b.WriteString("DEDUCTIONS\n")
	fmt.Fprintf(&b, "PAYE Tax:            %s\n", formatAmount(slip.PayeTax))
	fmt.Fprintf(&b, "Pension:             %s\n", formatAmount(slip.PensionDeduction))
	fmt.Fprintf(&b, "NHF:                 %s\n", formatAmount(slip.NHFDeduction))
	fmt.Fprintf(&b, "NHIS:                %s\n", formatAmount(slip.NHISDeduction))
	fmt.Fprintf(&b, "Other Deductions:    %s\n", formatAmount(slip.OtherDeductions))
	fmt.Fprintf(&b, "Total Deductions:    %s\n\n", formatAmount(slip.TotalDeductions))

	fmt.Fprintf(&b, "NET PAY:             %s\n\n", formatAmount(slip.NetSalary))
	fmt.Fprintf(&b, "Payment Reference: %s\n\n", gatewayRef(slip))
	fmt.Fprintf(&b, "This is an automated message from %s's payroll system.", orgName)

	return b.String()
}

func renderPayslipHTML(employeeName, orgName string, slip domain.PayrollSlip) string {
	row := func(label string, amount decimal.Decimal) string {
		return fmt.Sprintf("<tr><td>%s</td><td>%s</td></tr>", label, formatAmount(amount))
	}

	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h1>%s</h1><p>Payslip for %s</p>", orgName, slip.PayPeriod)
	fmt.Fprintf(&b, "<p>Dear <strong>%s</strong>, your salary for %s has been processed.</p>", employeeName, slip.PayPeriod)

	b.WriteString("<h2>Earnings</h2><table>")
	b.WriteString(row("Base Salary", slip.BaseSalary))
	b.WriteString(row("Allowances &amp; Bonuses", slip.TotalAdditions))
	b.WriteString(row("Gross Salary", slip.GrossSalary))
	b.WriteString("</table>")

	b.WriteString("<h2>Deductions</h2><table>")
	b.WriteString(row("PAYE Tax", slip.PayeTax))
	b.WriteString(row("Pension", slip.PensionDeduction))
	b.WriteString(row("NHF", slip.NHFDeduction))
	b.WriteString(row("NHIS", slip.NHISDeduction))
	b.WriteString(row("Other Deductions", slip.OtherDeductions))
	b.WriteString(row("Total Deductions", slip.TotalDeductions))
	b.WriteString("</table>")

	b.WriteString("<h2>Net Pay</h2><table>")
	b.WriteString(row("Amount Transferred to Your Account", slip.NetSalary))
	b.WriteString("</table>")

	fmt.Fprintf(&b, "<p>Payment Reference: <code>%s</code></p>", gatewayRef(slip))
	fmt.Fprintf(&b, "<p>This is an automated payslip from %s's payroll system. Please do not reply.</p>", orgName)
	b.WriteString("</body></html>")

	return b.String()
}
