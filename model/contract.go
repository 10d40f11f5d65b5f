package model

import (
	"time"
)

// ContractRequest is the body of POST /v1/contracts. PurchaseRequestID is the
// idempotency key: at most one contract exists per value.
type ContractRequest struct {
	PurchaseRequestID string    `json:"purchaseRequestId" binding:"required,max=64"`
	DealID            string    `json:"dealId,omitempty" binding:"omitempty,max=64"`
	DealData          *DealData `json:"dealData" binding:"required"`
}

// DealData is the vehicle deal a contract is generated from
type DealData struct {
	DealID                 string                  `json:"dealId,omitempty" binding:"omitempty,max=64"`
	Customer               *Customer               `json:"customer" binding:"required"`
	CustomerFinanceDetails *CustomerFinanceDetails `json:"customerFinanceDetails,omitempty"`
	RetailerInfo           *RetailerInfo           `json:"retailerInfo,omitempty"`
	MassOrders             []MassOrder             `json:"massOrders,omitempty" binding:"omitempty,dive"`
}

type Customer struct {
	CustomerID   string   `json:"customerId" binding:"required"`
	CustomerType string   `json:"customerType" binding:"required"`
	FirstName    string   `json:"firstName,omitempty"`
	LastName     string   `json:"lastName,omitempty"`
	CompanyName  string   `json:"companyName,omitempty"`
	Email        string   `json:"email,omitempty" binding:"omitempty,email"`
	Phone        string   `json:"phone,omitempty"`
	Address      *Address `json:"address,omitempty"`
}

// DisplayName is the name printed on the contract
func (c *Customer) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.LastName != "":
		return c.LastName
	case c.FirstName != "":
		return c.FirstName
	}
	return c.CustomerID
}

type CustomerFinanceDetails struct {
	FinanceType  string  `json:"financeType,omitempty"`
	Currency     string  `json:"currency,omitempty" binding:"omitempty,len=3"`
	TotalPrice   float64 `json:"totalPrice" binding:"gte=0"`
	DownPayment  float64 `json:"downPayment" binding:"gte=0"`
	TermMonths   int     `json:"termMonths,omitempty" binding:"gte=0"`
	InterestRate float64 `json:"interestRate,omitempty" binding:"gte=0"`
}

type RetailerInfo struct {
	RetailerID  string   `json:"retailerId,omitempty"`
	Name        string   `json:"name,omitempty"`
	SalesPerson string   `json:"salesPerson,omitempty"`
	Address     *Address `json:"address,omitempty"`
}

type MassOrder struct {
	OrderID      string  `json:"orderId,omitempty"`
	VehicleModel string  `json:"vehicleModel" binding:"required"`
	VIN          string  `json:"vin,omitempty"`
	Quantity     int     `json:"quantity" binding:"gt=0"`
	UnitPrice    float64 `json:"unitPrice" binding:"gte=0"`
}

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Contract is the stored contract record. It is written once and never updated.
type Contract struct {
	ID                string    `json:"contractId"`
	PurchaseRequestID string    `json:"purchaseRequestId"`
	DealID            string    `json:"dealId,omitempty"`
	Status            string    `json:"status"`
	DealData          DealData  `json:"dealData"`
	PDFLocation       string    `json:"-"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// ContractStatus constants
const (
	StatusGenerated = "generated"
)

// ContractResponse is returned by POST /v1/contracts
type ContractResponse struct {
	ContractID        string    `json:"contractId"`
	PurchaseRequestID string    `json:"purchaseRequestId"`
	Status            string    `json:"status"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// ContractDetailsResponse is returned by GET /v1/contracts/{contractId}
type ContractDetailsResponse struct {
	ContractID        string    `json:"contractId"`
	PurchaseRequestID string    `json:"purchaseRequestId"`
	DealID            string    `json:"dealId,omitempty"`
	Status            string    `json:"status"`
	GeneratedAt       time.Time `json:"generatedAt"`
	DealData          DealData  `json:"dealData"`
}

func (c *Contract) Response() *ContractResponse {
	return &ContractResponse{
		ContractID:        c.ID,
		PurchaseRequestID: c.PurchaseRequestID,
		Status:            c.Status,
		GeneratedAt:       c.GeneratedAt,
	}
}

func (c *Contract) Details() *ContractDetailsResponse {
	return &ContractDetailsResponse{
		ContractID:        c.ID,
		PurchaseRequestID: c.PurchaseRequestID,
		DealID:            c.DealID,
		Status:            c.Status,
		GeneratedAt:       c.GeneratedAt,
		DealData:          c.DealData,
	}
}

// ContractCreatedEvent announces a newly generated contract
type ContractCreatedEvent struct {
	EventID           string    `json:"eventId"`
	EventType         string    `json:"eventType"`
	ContractID        string    `json:"contractId"`
	PurchaseRequestID string    `json:"purchaseRequestId"`
	DealID            string    `json:"dealId,omitempty"`
	OccurredAt        time.Time `json:"occurredAt"`
	TraceID           string    `json:"traceId,omitempty"`
}

const EventContractCreated = "contract.created"

// Clone returns a copy that shares no pointers or slices with c.
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	out := *c
	out.DealData = c.DealData.Clone()
	return &out
}

// Clone deep-copies the deal data tree.
func (d DealData) Clone() DealData {
	out := d
	if d.Customer != nil {
		customer := *d.Customer
		customer.Address = d.Customer.Address.clone()
		out.Customer = &customer
	}
	if d.CustomerFinanceDetails != nil {
		finance := *d.CustomerFinanceDetails
		out.CustomerFinanceDetails = &finance
	}
	if d.RetailerInfo != nil {
		retailer := *d.RetailerInfo
		retailer.Address = d.RetailerInfo.Address.clone()
		out.RetailerInfo = &retailer
	}
	if d.MassOrders != nil {
		out.MassOrders = append([]MassOrder(nil), d.MassOrders...)
	}
	return out
}

func (a *Address) clone() *Address {
	if a == nil {
		return nil
	}
	out := *a
	return &out
}
