// Package invoice renders PDF invoices for completed checkout sessions.
package invoice

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/payment"
)

// URLPrefix is where generated invoices are served from.
const URLPrefix = "/invoices/"

var (
	ErrInvalidSessionID = errors.New("invalid session id")
	sessionIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_]{1,255}$`)
)

// Company is the issuer printed in the invoice header.
type Company struct {
	Name  string
	Lines []string
}

var DefaultCompany = Company{
	Name:  "tohfabox25",
	Lines: []string{"aklera", "Rajasthan, India", "Email: tohfabox25@gmail.com", "Phone: +91 777510030"},
}

// Generator writes invoice_{sessionID}.pdf files into dir.
type Generator struct {
	dir     string
	company Company
	now     func() time.Time
}

func NewGenerator(dir string, company Company) *Generator {
	return &Generator{dir: dir, company: company, now: time.Now}
}

// Dir is the directory invoices are written to.
func (g *Generator) Dir() string { return g.dir }

// ValidSessionID reports whether id is safe to use in a file name.
func ValidSessionID(id string) bool { return sessionIDPattern.MatchString(id) }

// Generate renders s to disk and returns its URL path.
func (g *Generator) Generate(s *payment.Session) (string, error) {
	if s == nil || !ValidSessionID(s.ID) {
		return "", ErrInvalidSessionID
	}
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create invoice dir: %w", err)
	}
	name := "invoice_" + s.ID + ".pdf"
	f, err := os.Create(filepath.Join(g.dir, name))
	if err != nil {
		return "", fmt.Errorf("create invoice: %w", err)
	}
	if err := g.Render(f, s); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close invoice: %w", err)
	}
	return URLPrefix + name, nil
}

// Render writes a one page A4 invoice for s to w.
func (g *Generator) Render(w io.Writer, s *payment.Session) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// header
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(0x33, 0x33, 0x33)
	pdf.Text(18, 26, tr(g.company.Name))
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0x55, 0x55, 0x55)
	for i, line := range g.company.Lines {
		pdf.Text(18, 34+float64(i)*5, tr(line))
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0x00, 0x74, 0xD9)
	pdf.SetXY(18, 62)
	pdf.CellFormat(174, 10, "Payment Invoice", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetX(18)
	pdf.CellFormat(174, 7, "Invoice #: "+invoiceNumber(s.ID), "", 1, "L", false, 0, "")
	pdf.SetX(18)
	pdf.CellFormat(174, 7, "Date: "+g.now().Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.SetX(18)
	pdf.CellFormat(174, 7, "Payment Intent: "+orNA(s.PaymentIntent), "", 1, "L", false, 0, "")

	// bill to
	name, email, country := "N/A", "N/A", "N/A"
	if c := s.CustomerDetails; c != nil {
		name, email = orNA(c.Name), orNA(c.Email)
		if c.Address != nil {
			country = orNA(c.Address.Country)
		}
	}
	top := pdf.GetY() + 6
	pdf.SetFillColor(0xF8, 0xF8, 0xF8)
	pdf.SetDrawColor(0xCC, 0xCC, 0xCC)
	pdf.Rect(18, top, 174, 28, "FD")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(22, top+8, "Bill To:")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0x33, 0x33, 0x33)
	pdf.Text(50, top+8, tr(name))
	pdf.Text(50, top+15, tr(email))
	pdf.Text(50, top+22, tr(country))

	// summary table
	total := formatAmount(s.AmountTotal, s.Currency)
	y := top + 40
	pdf.SetDrawColor(0x00, 0x74, 0xD9)
	pdf.Line(18, y, 192, y)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(22, y+7, "Description")
	pdf.Text(140, y+7, "Amount")
	pdf.SetDrawColor(0xCC, 0xCC, 0xCC)
	pdf.Line(18, y+10, 192, y+10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0x33, 0x33, 0x33)
	pdf.Text(22, y+17, "Product/Service Payment")
	pdf.Text(140, y+17, total)
	pdf.SetDrawColor(0x00, 0x74, 0xD9)
	pdf.Line(18, y+21, 192, y+21)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(22, y+32, "Payment Status:")
	pdf.SetTextColor(0x00, 0x77, 0x00)
	pdf.Text(60, y+32, strings.ToUpper(orNA(s.PaymentStatus)))
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(22, y+40, "Total Paid:")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0x00, 0x00, 0xAA)
	pdf.Text(60, y+40, total)

	// footer
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0x88, 0x88, 0x88)
	pdf.SetXY(18, y+56)
	pdf.CellFormat(174, 5, "Thank you for your business!", "", 1, "C", false, 0, "")
	pdf.SetX(18)
	pdf.CellFormat(174, 5, "This is a system-generated invoice.", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}
	return nil
}

// invoiceNumber is INV- followed by the last six characters of the session id.
func invoiceNumber(sessionID string) string {
	if len(sessionID) > 6 {
		sessionID = sessionID[len(sessionID)-6:]
	}
	return "INV-" + sessionID
}

func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(minor)/100, strings.ToUpper(currency))
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
