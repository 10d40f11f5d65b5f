package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/RaghavGalappanavar/Deployment/model"
	"github.com/ledongthuc/pdf"
)

func TestPDFRendererRender(t *testing.T) {
	contract := &model.Contract{
		ID:                "C-9001",
		PurchaseRequestID: "PR-1001",
		DealID:            "D-77",
		Status:            model.StatusGenerated,
		GeneratedAt:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		DealData: model.DealData{
			Customer: &model.Customer{
				CustomerID:   "cust-1",
				CustomerType: "PRIVATE",
				FirstName:    "Jürgen",
				LastName:     "Müller",
				Address:      &model.Address{Street: "Mercedesstraße 120", City: "Stuttgart", PostalCode: "70372", Country: "DE"},
			},
			CustomerFinanceDetails: &model.CustomerFinanceDetails{
				FinanceType: "LEASING", Currency: "EUR", TotalPrice: 98000, DownPayment: 8000, TermMonths: 36, InterestRate: 3.9,
			},
			RetailerInfo: &model.RetailerInfo{RetailerID: "R-1", Name: "Autohaus Stuttgart", SalesPerson: "A. Schmidt"},
			MassOrders: []model.MassOrder{
				{OrderID: "O-1", VehicleModel: "EQS 450+", Quantity: 1, UnitPrice: 98000, VIN: "W1K0000000000001"},
			},
		},
	}

	data, err := NewPDFRenderer().Render(contract)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("Expected PDF header, got %q", data[:min(len(data), 8)])
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Generated PDF is not readable: %v", err)
	}
	if r.NumPage() != 1 {
		t.Errorf("Expected 1 page, got %d", r.NumPage())
	}
}

func TestPDFRendererMinimalContract(t *testing.T) {
	data, err := NewPDFRenderer().Render(&model.Contract{ID: "C-1", PurchaseRequestID: "PR-1"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Expected PDF bytes")
	}
}

func TestFormatAddress(t *testing.T) {
	tests := []struct {
		addr *model.Address
		want string
	}{
		{nil, ""},
		{&model.Address{}, ""},
		{&model.Address{Street: "Main 1", PostalCode: "10115", City: "Berlin", Country: "DE"}, "Main 1, 10115 Berlin, DE"},
		{&model.Address{City: "Berlin"}, "Berlin"},
	}
	for _, tt := range tests {
		if got := formatAddress(tt.addr); got != tt.want {
			t.Errorf("formatAddress(%+v) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	if got := formatMoney(1234.5, "EUR"); got != "1234.50 EUR" {
		t.Errorf("Unexpected %q", got)
	}
	if got := formatMoney(10, ""); strings.Contains(got, " ") {
		t.Errorf("Expected bare amount, got %q", got)
	}
}
