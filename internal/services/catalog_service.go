package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"partpal/internal/domain"
	"partpal/internal/query"
	"partpal/internal/validate"
)

var ErrInvalidPart = errors.New("invalid part")

// PartStore is the persistence the catalog needs. repos.PartRepo implements it.
type PartStore interface {
	FindMany(ctx context.Context) ([]domain.Part, error)
	Get(ctx context.Context, id string) (domain.Part, error)
	Create(ctx context.Context, p domain.Part) error
	Update(ctx context.Context, p domain.Part) error
}

type CatalogService struct {
	Parts PartStore
	Now   func() time.Time
}

func NewCatalogService(parts PartStore) *CatalogService {
	return &CatalogService{Parts: parts, Now: func() time.Time { return time.Now().UTC() }}
}

// ListParts loads the collection and runs it through the query engine.
func (s *CatalogService) ListParts(ctx context.Context, p query.Params) (query.Page, error) {
	parts, err := s.Parts.FindMany(ctx)
	if err != nil {
		return query.Page{}, err
	}
	return query.List(parts, p), nil
}

func (s *CatalogService) GetPart(ctx context.Context, id string) (domain.Part, error) {
	return s.Parts.Get(ctx, id)
}

// PartInput is the writable subset of a part.
type PartInput struct {
	SellerID    string               `json:"sellerId"`
	CategoryID  string               `json:"categoryId"`
	VehicleID   string               `json:"vehicleId"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	PartNumber  *string              `json:"partNumber"`
	Price       float64              `json:"price"`
	Currency    string               `json:"currency"`
	Status      domain.PartStatus    `json:"status"`
	Condition   domain.PartCondition `json:"condition"`
	Listed      bool                 `json:"isListedOnMarketplace"`
	Images      []string             `json:"images"`
}

func (s *CatalogService) CreatePart(ctx context.Context, in PartInput) (domain.Part, error) {
	now := s.Now()
	p := domain.Part{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	if err := apply(&p, in); err != nil {
		return domain.Part{}, err
	}
	if err := s.Parts.Create(ctx, p); err != nil {
		return domain.Part{}, err
	}
	return p, nil
}

// UpdatePart replaces the writable fields of an existing part and bumps UpdatedAt.
func (s *CatalogService) UpdatePart(ctx context.Context, id string, in PartInput) (domain.Part, error) {
	p, err := s.Parts.Get(ctx, id)
	if err != nil {
		return domain.Part{}, err
	}
	if err := apply(&p, in); err != nil {
		return domain.Part{}, err
	}
	p.UpdatedAt = s.Now()
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}
	if err := s.Parts.Update(ctx, p); err != nil {
		return domain.Part{}, err
	}
	return p, nil
}

func apply(p *domain.Part, in PartInput) error {
	name, ok := validate.Name(in.Name)
	if !ok {
		return fmt.Errorf("%w: name is required (max 120 characters)", ErrInvalidPart)
	}
	if in.SellerID == "" || in.CategoryID == "" || in.VehicleID == "" {
		return fmt.Errorf("%w: sellerId, categoryId and vehicleId are required", ErrInvalidPart)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidPart)
	}
	if in.Status == "" {
		in.Status = domain.StatusAvailable
	}
	status, ok := validate.Status(string(in.Status))
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPart, in.Status)
	}
	cond, ok := validate.Condition(string(in.Condition))
	if !ok {
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidPart, in.Condition)
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	currency, ok := validate.Currency(in.Currency)
	if !ok {
		return fmt.Errorf("%w: currency must be a three-letter code", ErrInvalidPart)
	}
	if in.PartNumber != nil && strings.TrimSpace(*in.PartNumber) == "" {
		in.PartNumber = nil
	}
	images := "[]"
	if len(in.Images) > 0 {
		b, err := json.Marshal(in.Images)
		if err != nil {
			return err
		}
		images = string(b)
	}

	p.SellerID = in.SellerID
	p.CategoryID = in.CategoryID
	p.VehicleID = in.VehicleID
	p.Name = name
	p.Description = strings.TrimSpace(in.Description)
	p.PartNumber = in.PartNumber
	p.Price = in.Price
	p.Currency = currency
	p.Status = domain.PartStatus(status)
	p.Condition = domain.PartCondition(cond)
	p.Listed = in.Listed
	p.ImagesJSON = images
	return nil
}
