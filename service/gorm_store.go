package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/RaghavGalappanavar/Deployment/config"
	"github.com/RaghavGalappanavar/Deployment/model"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// contractRecord is the table row behind GormContractStore
type contractRecord struct {
	ID                string         `gorm:"column:id;primaryKey;size:64"`
	PurchaseRequestID string         `gorm:"column:purchase_request_id;size:64;not null;uniqueIndex"`
	DealID            string         `gorm:"column:deal_id;size:64;index"`
	Status            string         `gorm:"column:status;size:32;not null"`
	DealData          datatypes.JSON `gorm:"column:deal_data"`
	PDFLocation       string         `gorm:"column:pdf_location"`
	GeneratedAt       time.Time      `gorm:"column:generated_at;not null"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
}

func (contractRecord) TableName() string { return "contracts" }

// OpenDatabase connects to the configured SQL backend and migrates the schema.
func OpenDatabase(cfg *config.StoreConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	if err := db.AutoMigrate(&contractRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate contracts table: %w", err)
	}

	slog.Info("contract store initialized", "driver", cfg.Driver)
	return db, nil
}

// GormContractStore is a ContractRepository on a SQL database. The unique
// index on purchase_request_id is what serializes concurrent creates.
type GormContractStore struct {
	db *gorm.DB
}

func NewGormContractStore(db *gorm.DB) *GormContractStore {
	return &GormContractStore{db: db}
}

func (s *GormContractStore) Create(ctx context.Context, contract *model.Contract) error {
	dealData, err := json.Marshal(contract.DealData)
	if err != nil {
		return fmt.Errorf("encode deal data: %w", err)
	}

	rec := contractRecord{
		ID:                contract.ID,
		PurchaseRequestID: contract.PurchaseRequestID,
		DealID:            contract.DealID,
		Status:            contract.Status,
		DealData:          datatypes.JSON(dealData),
		PDFLocation:       contract.PDFLocation,
		GeneratedAt:       contract.GeneratedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("purchase request %s: %w", contract.PurchaseRequestID, ErrDuplicateRequest)
		}
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

func (s *GormContractStore) Get(ctx context.Context, id string) (*model.Contract, error) {
	var rec contractRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contract %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load contract: %w", err)
	}
	return rec.toModel()
}

func (s *GormContractStore) GetByPurchaseRequestID(ctx context.Context, purchaseRequestID string) (*model.Contract, error) {
	var rec contractRecord
	err := s.db.WithContext(ctx).Where("purchase_request_id = ?", purchaseRequestID).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("purchase request %s: %w", purchaseRequestID, ErrNotFound)
		}
		return nil, fmt.Errorf("load contract: %w", err)
	}
	return rec.toModel()
}

// Close releases the underlying connection pool
func (s *GormContractStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *contractRecord) toModel() (*model.Contract, error) {
	c := &model.Contract{
		ID:                r.ID,
		PurchaseRequestID: r.PurchaseRequestID,
		DealID:            r.DealID,
		Status:            r.Status,
		PDFLocation:       r.PDFLocation,
		GeneratedAt:       r.GeneratedAt,
	}
	if len(r.DealData) > 0 {
		if err := json.Unmarshal(r.DealData, &c.DealData); err != nil {
			return nil, fmt.Errorf("decode deal data of %s: %w", r.ID, err)
		}
	}
	return c, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// drivers without an error translator
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
