// Package upi builds UPI payment-request URIs and renders them as scannable
// QR images. The scheme is offline: nothing here talks to a bank, the payer's
// app resolves the URI on its own.
package upi

import (
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

type (
	Config struct {
		PayeeVPA  string
		PayeeName string
		Currency  string
		Note      string
		QRSize    int
	}

	// Form carries the per-payment fields of a payment request. Reference
	// ends up as the `tr` parameter so a bank statement line can be matched
	// back to a payment record by hand.
	Form struct {
		Amount    decimal.Decimal
		Reference string
	}

	Issuer struct {
		payeeVPA  string
		payeeName string
		currency  string
		note      string
		size      int
	}
)

func NewIssuer(cfg Config) *Issuer {
	size := cfg.QRSize
	if size <= 0 {
		size = 256
	}

	return &Issuer{
		payeeVPA:  cfg.PayeeVPA,
		payeeName: cfg.PayeeName,
		currency:  cfg.Currency,
		note:      cfg.Note,
		size:      size,
	}
}

// URI returns the upi://pay payment-request link for the form.
func (i *Issuer) URI(f *Form) string {
	q := url.Values{}
	q.Set("pa", i.payeeVPA)
	q.Set("pn", i.payeeName)
	q.Set("am", f.Amount.String())
	q.Set("cu", i.currency)
	q.Set("tn", i.note)
	if f.Reference != "" {
		q.Set("tr", f.Reference)
	}

	return "upi://pay?" + q.Encode()
}

// DataURL encodes the form's payment URI as a PNG QR code wrapped in a
// data URL, ready for direct rendering in an <img> tag.
func (i *Issuer) DataURL(f *Form) (string, error) {
	png, err := qrcode.Encode(i.URI(f), qrcode.Medium, i.size)
	if err != nil {
		return "", fmt.Errorf("upi: encode qr: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
