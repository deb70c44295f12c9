package services_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"partpal/internal/domain"
	"partpal/internal/query"
	"partpal/internal/services"
)

// fakeParts is an injected PartStore; every test gets its own.
type fakeParts struct {
	parts   []domain.Part
	findErr error
}

func (f *fakeParts) FindMany(context.Context) ([]domain.Part, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.parts, nil
}

func (f *fakeParts) Get(_ context.Context, id string) (domain.Part, error) {
	for _, p := range f.parts {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Part{}, sql.ErrNoRows
}

func (f *fakeParts) Create(_ context.Context, p domain.Part) error {
	f.parts = append(f.parts, p)
	return nil
}

func (f *fakeParts) Update(_ context.Context, p domain.Part) error {
	for i := range f.parts {
		if f.parts[i].ID == p.ID {
			f.parts[i] = p
			return nil
		}
	}
	return sql.ErrNoRows
}

func validInput() services.PartInput {
	return services.PartInput{
		SellerID: "s-1", CategoryID: "engine", VehicleID: "v-1",
		Name: " Radiator ", Price: 70, Condition: "good", Images: []string{"parts/r/main.jpg"},
	}
}

func TestCatalogListParts(t *testing.T) {
	store := &fakeParts{parts: []domain.Part{
		{ID: "a", Name: "Axle", Price: 300, Status: domain.StatusAvailable},
		{ID: "b", Name: "Bumper", Price: 100, Status: domain.StatusSold},
		{ID: "c", Name: "Coil", Price: 200, Status: domain.StatusAvailable},
	}}
	svc := services.NewCatalogService(store)

	p := query.DefaultParams()
	p.Statuses = []domain.PartStatus{domain.StatusAvailable}
	p.Sort = query.SortPriceAsc
	page, err := svc.ListParts(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 2 || page.Items[0].ID != "c" || page.Items[1].ID != "a" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if store.parts[0].ID != "a" {
		t.Fatal("store collection was reordered")
	}
}

func TestCatalogListPartsStoreError(t *testing.T) {
	svc := services.NewCatalogService(&fakeParts{findErr: errors.New("disk full")})
	if _, err := svc.ListParts(context.Background(), query.DefaultParams()); err == nil {
		t.Fatal("want store error")
	}
}

func TestCatalogCreateAndUpdatePart(t *testing.T) {
	store := &fakeParts{}
	svc := services.NewCatalogService(store)
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return t0 }

	p, err := svc.CreatePart(context.Background(), validInput())
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" || p.Name != "Radiator" || p.Status != domain.StatusAvailable || p.Currency != "USD" ||
		p.Condition != domain.ConditionGood {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if len(p.Images()) != 1 || !p.CreatedAt.Equal(t0) {
		t.Fatalf("unexpected part: %+v", p)
	}

	svc.Now = func() time.Time { return t0.Add(time.Hour) }
	in := validInput()
	in.Status = "reserved"
	in.Price = 65
	up, err := svc.UpdatePart(context.Background(), p.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if up.Status != domain.StatusReserved || up.Price != 65 || !up.UpdatedAt.After(up.CreatedAt) {
		t.Fatalf("update not applied: %+v", up)
	}

	if _, err := svc.UpdatePart(context.Background(), "missing", in); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("want sql.ErrNoRows, got %v", err)
	}
}

func TestCatalogRejectsInvalidInput(t *testing.T) {
	svc := services.NewCatalogService(&fakeParts{})
	cases := map[string]func(*services.PartInput){
		"no name":        func(in *services.PartInput) { in.Name = "  " },
		"no vehicle":     func(in *services.PartInput) { in.VehicleID = "" },
		"negative price": func(in *services.PartInput) { in.Price = -1 },
		"bad status":     func(in *services.PartInput) { in.Status = "SCRAPPED" },
		"bad condition":  func(in *services.PartInput) { in.Condition = "MINT" },
		"bad currency":   func(in *services.PartInput) { in.Currency = "dollars" },
	}
	for name, mutate := range cases {
		in := validInput()
		mutate(&in)
		if _, err := svc.CreatePart(context.Background(), in); !errors.Is(err, services.ErrInvalidPart) {
			t.Fatalf("%s: want ErrInvalidPart, got %v", name, err)
		}
	}
}
