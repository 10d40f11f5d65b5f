package service

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/RaghavGalappanavar/Deployment/model"
	"github.com/go-pdf/fpdf"
)

// Renderer turns a contract record into PDF bytes
type Renderer interface {
	Render(contract *model.Contract) ([]byte, error)
}

// PDFRenderer lays out a single-document vehicle purchase contract with fpdf.
type PDFRenderer struct {
	Title string
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Title: "Vehicle Purchase Contract"}
}

func (r *PDFRenderer) Render(contract *model.Contract) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(r.Title+" "+contract.ID, true)
	pdf.SetCreator("contract-service", true)
	pdf.SetCreationDate(contract.GeneratedAt)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	section := func(title string) {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, tr(title), "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	row := func(label, value string) {
		if value == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, tr(value), "", "L", false)
	}

	section("Contract")
	row("Contract ID", contract.ID)
	row("Purchase Request", contract.PurchaseRequestID)
	row("Deal ID", firstNonEmpty(contract.DealID, contract.DealData.DealID))
	row("Generated At", contract.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	row("Status", contract.Status)

	deal := contract.DealData
	if c := deal.Customer; c != nil {
		section("Customer")
		row("Name", c.DisplayName())
		row("Customer ID", c.CustomerID)
		row("Customer Type", c.CustomerType)
		row("Email", c.Email)
		row("Phone", c.Phone)
		row("Address", formatAddress(c.Address))
	}

	if ri := deal.RetailerInfo; ri != nil {
		section("Retailer")
		row("Retailer", ri.Name)
		row("Retailer ID", ri.RetailerID)
		row("Sales Person", ri.SalesPerson)
		row("Address", formatAddress(ri.Address))
	}

	currency := ""
	if fd := deal.CustomerFinanceDetails; fd != nil {
		currency = fd.Currency
		section("Financing")
		row("Finance Type", fd.FinanceType)
		row("Total Price", formatMoney(fd.TotalPrice, currency))
		row("Down Payment", formatMoney(fd.DownPayment, currency))
		if fd.TermMonths > 0 {
			row("Term", strconv.Itoa(fd.TermMonths)+" months")
		}
		if fd.InterestRate > 0 {
			row("Interest Rate", strconv.FormatFloat(fd.InterestRate, 'f', 2, 64)+" %")
		}
	}

	if len(deal.MassOrders) > 0 {
		section("Vehicles")
		widths := []float64{30, 60, 20, 35, 35}
		headers := []string{"Order", "Model", "Qty", "Unit Price", "Line Total"}
		pdf.SetFont("Helvetica", "B", 9)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		var total float64
		for _, o := range deal.MassOrders {
			line := o.UnitPrice * float64(o.Quantity)
			total += line
			vehicle := o.VehicleModel
			if o.VIN != "" {
				vehicle += " (" + o.VIN + ")"
			}
			pdf.CellFormat(widths[0], 6, tr(o.OrderID), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, tr(vehicle), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 6, strconv.Itoa(o.Quantity), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[3], 6, formatMoney(o.UnitPrice, currency), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[4], 6, formatMoney(line, currency), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 6, "Total", "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, formatMoney(total, currency), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(15)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(85, 6, "Customer signature", "T", 0, "C", false, 0, "")
	pdf.CellFormat(10, 6, "", "", 0, "C", false, 0, "")
	pdf.CellFormat(85, 6, "Retailer signature", "T", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render contract pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAddress(a *model.Address) string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	if a.Street != "" {
		parts = append(parts, a.Street)
	}
	if city := strings.TrimSpace(a.PostalCode + " " + a.City); city != "" {
		parts = append(parts, city)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

func formatMoney(amount float64, currency string) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
