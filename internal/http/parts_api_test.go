package handlers_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type pageBody struct {
	Items []struct {
		ID     string   `json:"id"`
		Name   string   `json:"name"`
		Price  float64  `json:"price"`
		Listed bool     `json:"isListedOnMarketplace"`
		Images []string `json:"images"`
	} `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

func TestListPartsDefaults(t *testing.T) {
	app := newApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/parts", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body pageBody
	decode(t, resp, &body)
	if body.TotalCount != 6 || body.Page != 1 || body.PageSize != 24 || body.TotalPages != 1 {
		t.Fatalf("unexpected page meta: %+v", body)
	}
	// newest first
	if body.Items[0].ID != "p-engine-f150" || len(body.Items[0].Images) != 2 {
		t.Fatalf("unexpected first item: %+v", body.Items[0])
	}
}

func TestListPartsFiltersAndSort(t *testing.T) {
	app := newApp(t)
	req := httptest.NewRequest("GET", "/api/v1/parts?status=AVAILABLE&sortBy=price_desc&pageSize=2", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	var body pageBody
	decode(t, resp, &body)
	if body.TotalCount != 3 || body.TotalPages != 2 || len(body.Items) != 2 {
		t.Fatalf("unexpected page: %+v", body)
	}
	if body.Items[0].ID != "p-starter-f150" || body.Items[1].ID != "p-alt-civic" {
		t.Fatalf("wrong order: %+v", body.Items)
	}
}

func TestListPartsListedFalseIsAFilter(t *testing.T) {
	app := newApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/parts?isListedOnMarketplace=false", nil))
	if err != nil {
		t.Fatal(err)
	}
	var body pageBody
	decode(t, resp, &body)
	if body.TotalCount != 2 {
		t.Fatalf("expected 2 unlisted parts, got %d", body.TotalCount)
	}
	for _, it := range body.Items {
		if it.Listed {
			t.Fatalf("listed part %s leaked into unlisted filter", it.ID)
		}
	}
}

func TestListPartsSearchByPartNumber(t *testing.T) {
	app := newApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/parts?q=s5a", nil))
	if err != nil {
		t.Fatal(err)
	}
	var body pageBody
	decode(t, resp, &body)
	if body.TotalCount != 1 || body.Items[0].ID != "p-hl-civic" {
		t.Fatalf("unexpected search result: %+v", body)
	}
}

func TestListPartsRejectsInvalidParameters(t *testing.T) {
	app := newApp(t)
	cases := map[string]string{
		"page=abc":                "page",
		"pageSize=0":              "pageSize",
		"pageSize=101":            "pageSize",
		"minPrice=cheap":          "minPrice",
		"minPrice=50&maxPrice=10": "minPrice",
	}
	for qs, param := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/parts?"+qs, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", qs, resp.StatusCode)
		}
		var body struct {
			Error string `json:"error"`
		}
		decode(t, resp, &body)
		if !strings.Contains(body.Error, param) {
			t.Fatalf("%s: error %q does not name %s", qs, body.Error, param)
		}
	}
}

func TestListPartsFreeTextSearchIsNotRejected(t *testing.T) {
	app := newApp(t)
	for _, qs := range []string{
		"search=Alternator%2C%20Denso",
		"search=A%2FC%2Bheater",
		"search=OEM%3A%20Motorcraft",
		"search=%22Starter%22",
		"q=%3Cscript%3E",
		"category=engine%20bay",
		"vehicle=..%2Fetc",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/parts?"+qs, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("%s: expected 200, got %d", qs, resp.StatusCode)
		}
	}

	// punctuation inside the search is matched literally
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/parts?search=denso%2080a%2C%20bench", nil))
	if err != nil {
		t.Fatal(err)
	}
	var body pageBody
	decode(t, resp, &body)
	if body.TotalCount != 1 || body.Items[0].ID != "p-alt-civic" {
		t.Fatalf("expected the alternator, got %+v", body)
	}

	// an id that matches nothing filters to an empty page
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/parts?category=engine%20bay", nil))
	body = pageBody{}
	decode(t, resp, &body)
	if body.TotalCount != 0 || len(body.Items) != 0 {
		t.Fatalf("expected empty page, got %+v", body)
	}
}

func TestListPartsPageBeyondRange(t *testing.T) {
	app := newApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/parts?page=9", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body pageBody
	decode(t, resp, &body)
	if len(body.Items) != 0 || body.TotalCount != 6 || body.Page != 9 {
		t.Fatalf("unexpected page: %+v", body)
	}
}

func TestGetCreateUpdatePart(t *testing.T) {
	app := newApp(t)

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/parts/nope", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := `{"sellerId":"s-northyard","categoryId":"body","vehicleId":"v-f150-2011",
	  "name":"Hood","price":210,"condition":"fair","isListedOnMarketplace":true,"images":["parts/hood.jpg"]}`
	req := httptest.NewRequest("POST", "/api/v1/parts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, b)
	}
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, resp, &created)
	if created.ID == "" || created.Status != "AVAILABLE" {
		t.Fatalf("unexpected created part: %+v", created)
	}

	upd := strings.Replace(body, `"price":210`, `"price":190,"status":"sold"`, 1)
	req = httptest.NewRequest("PUT", "/api/v1/parts/"+created.ID, strings.NewReader(upd))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on update, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/parts/"+created.ID, nil))
	var got struct {
		Price  float64 `json:"price"`
		Status string  `json:"status"`
	}
	decode(t, resp, &got)
	if got.Price != 190 || got.Status != "SOLD" {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestCreatePartInvalidInput(t *testing.T) {
	app := newApp(t)
	req := httptest.NewRequest("POST", "/api/v1/parts",
		strings.NewReader(`{"sellerId":"s-northyard","categoryId":"body","vehicleId":"v-f150-2011","name":"Hood","price":-5,"condition":"GOOD"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCategoriesAndVehicles(t *testing.T) {
	app := newApp(t)
	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/categories", nil))
	var cats struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	decode(t, resp, &cats)
	if len(cats.Items) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(cats.Items))
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/vehicles?sellerId=s-northyard", nil))
	var vs struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	decode(t, resp, &vs)
	if len(vs.Items) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(vs.Items))
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/vehicles?sellerId=%3Cx%3E", nil))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bad sellerId, got %d", resp.StatusCode)
	}
}
