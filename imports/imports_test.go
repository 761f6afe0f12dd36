package imports

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cruiseops/middleware"
	"cruiseops/models"
	"cruiseops/utils"

	"github.com/google/go-cmp/cmp"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const tenant = "tenant_aurora"

func workbook(t *testing.T, sheets map[string][][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

type fakeItineraries struct {
	mu    sync.Mutex
	saved []models.Itinerary
}

func (f *fakeItineraries) Upsert(_ context.Context, _ string, items []models.Itinerary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, items...)
	return nil
}

type fakeShips struct {
	mu         sync.Mutex
	ships      map[string]models.Ship
	categories map[string]models.CabinCategory
	cabins     map[string]models.Cabin
}

func newFakeShips() *fakeShips {
	return &fakeShips{
		ships:      map[string]models.Ship{"AUR": {ID: "ship-aur", Code: "AUR"}},
		categories: map[string]models.CabinCategory{},
		cabins:     map[string]models.Cabin{},
	}
}

func (f *fakeShips) GetShipByCode(_ context.Context, _ string, code string) (*models.Ship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.ships[code]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeShips) UpsertCategory(_ context.Context, _ string, c models.CabinCategory) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := c.ShipID + "/" + c.Code
	if old, ok := f.categories[k]; ok {
		c.ID = old.ID
	}
	f.categories[k] = c
	return c.ID, nil
}

func (f *fakeShips) UpsertCabin(_ context.Context, _ string, c models.Cabin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cabins[c.ShipID+"/"+c.CabinNo] = c
	return nil
}

func validSheets() map[string][][]any {
	return map[string][][]any{
		SheetItineraries: {
			{"code", "title_en", "title_de", "map_image_url"},
			{"MED7", "Western Med", "Westliches Mittelmeer", "https://cdn.example.com/med7.png"},
			{},
			{"NOR5", "Fjords"},
		},
		SheetStops: {
			{"itinerary_code", "day_offset", "kind", "port_code", "arrival_time", "departure_time", "label_en"},
			{"MED7", 2, "port", "mrs", "08:00", "17:00"},
			{"MED7", 0, "port", "BCN", "", "18:00", "Embark"},
			{"MED7", 1, "sea"},
			{"NOR5", 0, "port", "BGO"},
		},
		SheetCategories: {
			{"ship_code", "code", "name", "view", "cabin_class", "max_occupancy"},
			{"aur", "bal", "Balcony", "sea", "balcony", 3},
			{"AUR", "INT", "Inside"},
		},
		SheetCabins: {
			{"ship_code", "cabin_no", "deck", "category_code", "status"},
			{"AUR", "8001", 8, "BAL"},
			{"AUR", "5001", "5.0", "int", "maintenance"},
		},
	}
}

func TestParseValidWorkbook(t *testing.T) {
	plan, err := Parse(workbook(t, validSheets()))
	require.NoError(t, err)

	require.Len(t, plan.Itineraries, 2)
	med := plan.Itineraries[0]
	assert.Equal(t, "MED7", med.Code)
	assert.Equal(t, map[string]string{"en": "Western Med", "de": "Westliches Mittelmeer"}, med.Titles)
	require.Len(t, med.Stops, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{med.Stops[0].DayOffset, med.Stops[1].DayOffset, med.Stops[2].DayOffset})
	assert.Equal(t, "MRS", med.Stops[2].PortCode)
	assert.Equal(t, map[string]string{"en": "Embark"}, med.Stops[0].Labels)
	assert.Equal(t, models.StopSea, med.Stops[1].Kind)
	assert.Equal(t, 4, plan.Stops())

	require.Len(t, plan.Categories, 2)
	assert.Equal(t, "BAL", plan.Categories[0].Category.Code)
	assert.Equal(t, 3, plan.Categories[0].Category.MaxOccupancy)
	assert.Equal(t, 2, plan.Categories[1].Category.MaxOccupancy)

	require.Len(t, plan.Cabins, 2)
	assert.Equal(t, 5, plan.Cabins[1].Cabin.Deck)
	assert.Equal(t, "maintenance", plan.Cabins[1].Cabin.Status)
	assert.Equal(t, "active", plan.Cabins[0].Cabin.Status)
	assert.Equal(t, []string{"AUR"}, plan.ShipCodes())
}

func TestParseCollectsAllIssues(t *testing.T) {
	_, err := Parse(workbook(t, map[string][][]any{
		SheetItineraries: {
			{"code", "title_en"},
			{"MED7", "Med"},
			{"MED7", "Again"},
		},
		SheetStops: {
			{"itinerary_code", "day_offset", "kind", "port_code"},
			{"MED7", 0, "port", "BCN"},
			{"NOPE", 1, "port", "MRS"},
			{"MED7", "x", "port", "MRS"},
			{"MED7", 0, "sea"},
			{"MED7", 2, "port"},
		},
		SheetCategories: {
			{"ship_code", "code", "name", "max_occupancy"},
			{"AUR", "BAL", "Balcony", 2},
			{"AUR", "bal", "Dup", 2},
			{"AUR", "STE", "Suite", 0},
		},
		SheetCabins: {
			{"ship_code", "cabin_no", "deck", "category_code"},
			{"AUR", "801", 8, "BAL"},
			{"AUR", "801", 8, "BAL"},
			{"AUR", "802", 8, "STE"},
			{"AUR", "803", "eight", "BAL"},
			{"AUR", "", 8, "BAL"},
		},
	}))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, http.StatusUnprocessableEntity, utils.Status(err))

	want := []Issue{
		{Sheet: SheetItineraries, Row: 3, Column: "code", Message: `duplicate itinerary code "MED7"`},
		{Sheet: SheetStops, Row: 3, Column: "itinerary_code", Message: `unknown itinerary "NOPE"`},
		{Sheet: SheetStops, Row: 4, Column: "day_offset", Message: "must be an integer"},
		{Sheet: SheetStops, Row: 5, Column: "day_offset", Message: `duplicate day_offset 0 for itinerary "MED7"`},
		{Sheet: SheetStops, Row: 6, Column: "port_code", Message: "port stops require port_code"},
		{Sheet: SheetCategories, Row: 3, Column: "code", Message: `duplicate category code "BAL" for ship "AUR"`},
		{Sheet: SheetCategories, Row: 4, Column: "max_occupancy", Message: "must be >= 1"},
		{Sheet: SheetCabins, Row: 3, Column: "cabin_no", Message: `duplicate cabin number "801" for ship "AUR"`},
		{Sheet: SheetCabins, Row: 4, Column: "category_code", Message: `category "STE" is not defined for ship "AUR" in CabinCategories`},
		{Sheet: SheetCabins, Row: 5, Column: "deck", Message: "must be an integer"},
		{Sheet: SheetCabins, Row: 6, Column: "cabin_no", Message: "is required"},
	}
	if diff := cmp.Diff(want, verr.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsMissingColumnsAndBadFiles(t *testing.T) {
	_, err := Parse(workbook(t, map[string][][]any{
		SheetCabins: {{"ship_code", "cabin_no", "category_code"}, {"AUR", "801", "BAL"}},
	}))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []Issue{{Sheet: SheetCabins, Row: 1, Column: "deck", Message: "missing required column"}}, verr.Issues)

	_, err = Parse(strings.NewReader("not a workbook"))
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))

	_, err = Parse(workbook(t, map[string][][]any{"Notes": {{"hello"}}}))
	assert.Equal(t, http.StatusBadRequest, utils.Status(err))
}

func TestImportDryRunAndWrite(t *testing.T) {
	its, sh := &fakeItineraries{}, newFakeShips()
	s := NewService(its, sh, nil)
	ctx := context.Background()

	res, err := s.Import(ctx, tenant, workbook(t, validSheets()), true)
	require.NoError(t, err)
	assert.Equal(t, Result{DryRun: true, Itineraries: 2, Stops: 4, Categories: 2, Cabins: 2}, res)
	assert.Empty(t, its.saved)
	assert.Empty(t, sh.categories)

	res, err = s.Import(ctx, tenant, workbook(t, validSheets()), false)
	require.NoError(t, err)
	assert.False(t, res.DryRun)
	require.Len(t, its.saved, 2)
	require.Len(t, sh.categories, 2)
	bal := sh.categories["ship-aur/BAL"]
	assert.Equal(t, bal.ID, sh.cabins["ship-aur/8001"].CategoryID)
	assert.Equal(t, sh.categories["ship-aur/INT"].ID, sh.cabins["ship-aur/5001"].CategoryID)

	// Re-importing keeps category ids.
	_, err = s.Import(ctx, tenant, workbook(t, validSheets()), false)
	require.NoError(t, err)
	assert.Equal(t, bal.ID, sh.categories["ship-aur/BAL"].ID)
	assert.Equal(t, bal.ID, sh.cabins["ship-aur/8001"].CategoryID)
}

func TestImportMatchesShipCodesCaseInsensitively(t *testing.T) {
	its, sh := &fakeItineraries{}, newFakeShips()
	s := NewService(its, sh, nil)
	sheets := validSheets()
	for i, row := range sheets[SheetCategories][1:] {
		row[0] = []string{"aur", "Aur"}[i%2]
	}
	for _, row := range sheets[SheetCabins][1:] {
		row[0] = "aUr"
	}

	res, err := s.Import(context.Background(), tenant, workbook(t, sheets), false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Categories)
	assert.Equal(t, 2, res.Cabins)
	require.Contains(t, sh.categories, "ship-aur/BAL")
	assert.Equal(t, sh.categories["ship-aur/BAL"].ID, sh.cabins["ship-aur/8001"].CategoryID)
}

func TestImportRejectsUnknownShips(t *testing.T) {
	its, sh := &fakeItineraries{}, newFakeShips()
	s := NewService(its, sh, nil)
	sheets := validSheets()
	sheets[SheetCabins] = append(sheets[SheetCabins], []any{"GHOST", "1", 1, "BAL"})
	sheets[SheetCategories] = append(sheets[SheetCategories], []any{"GHOST", "BAL", "Balcony"})

	_, err := s.Import(context.Background(), tenant, workbook(t, sheets), false)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []Issue{
		{Sheet: SheetCategories, Row: 4, Column: "ship_code", Message: "unknown ship code GHOST"},
		{Sheet: SheetCabins, Row: 4, Column: "ship_code", Message: "unknown ship code GHOST"},
	}, verr.Issues)
	assert.Empty(t, its.saved)
	assert.Empty(t, sh.cabins)
}

func TestWorkbookHandler(t *testing.T) {
	s := NewService(&fakeItineraries{}, newFakeShips(), nil)
	h := NewHandler(s, nil)
	router := httprouter.New()
	router.POST("/api/imports/workbook", h.Workbook)

	upload := func(path string, file *bytes.Buffer) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		if file != nil {
			part, err := mw.CreateFormFile("file", "catalog.xlsx")
			require.NoError(t, err)
			_, err = part.Write(file.Bytes())
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, path, &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req = req.WithContext(middleware.WithTenant(req.Context(), "c1", tenant))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("/api/imports/workbook?dry_run=1", workbook(t, validSheets()))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dry_run":true,"itineraries":2,"stops":4,"cabin_categories":2,"cabins":2}`, rec.Body.String())

	bad := validSheets()
	bad[SheetStops] = append(bad[SheetStops], []any{"MED7", 0, "sea"})
	rec = upload("/api/imports/workbook", workbook(t, bad))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sheet":"Stops","row":6,"column":"day_offset"`)

	rec = upload("/api/imports/workbook", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
