package engine

import "github.com/ExpertosTI/presta-pro-sub000/internal/domain"

// FormatReceipt maps a receipt onto the renderer contract. Branding is display-only.
func FormatReceipt(r *domain.Receipt, branding domain.Branding) domain.ReceiptExport {
	return domain.ReceiptExport{
		ID:                r.ID,
		Date:              r.Date,
		LoanID:            r.LoanID,
		ClientID:          r.ClientID,
		ClientName:        r.ClientName,
		InstallmentNumber: r.InstallmentNumber,
		Amount:            r.Amount,
		PenaltyAmount:     r.PenaltyAmount,
		RemainingBalance:  r.RemainingBalance,
		CompanyName:       branding.CompanyName,
		LogoURL:           branding.LogoURL,
	}
}
