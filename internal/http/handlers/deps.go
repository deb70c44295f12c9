package handlers

import (
	"github.com/jmoiron/sqlx"

	"partpal/internal/repos"
	"partpal/internal/services"
)

type Deps struct {
	PartsHandler    *PartsHandler
	PageHandler     *PageHandler
	CategoryHandler *CategoryHandler
	VehicleHandler  *VehicleHandler
}

func NewDeps(db *sqlx.DB) *Deps {
	partRepo := repos.NewPartRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	vehRepo := repos.NewVehicleRepo(db)

	catalogSvc := services.NewCatalogService(partRepo)

	return &Deps{
		PartsHandler:    &PartsHandler{Catalog: catalogSvc},
		PageHandler:     &PageHandler{Catalog: catalogSvc, Categories: catRepo},
		CategoryHandler: &CategoryHandler{Categories: catRepo},
		VehicleHandler:  &VehicleHandler{Vehicles: vehRepo},
	}
}
