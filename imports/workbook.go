package imports

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"cruiseops/itinerary"
	"cruiseops/models"
	"cruiseops/ships"
	"cruiseops/utils"

	"github.com/xuri/excelize/v2"
)

const (
	SheetItineraries = "Itineraries"
	SheetStops       = "Stops"
	SheetCategories  = "CabinCategories"
	SheetCabins      = "Cabins"
)

var required = map[string][]string{
	SheetItineraries: {"code"},
	SheetStops:       {"itinerary_code", "day_offset"},
	SheetCategories:  {"ship_code", "code", "name"},
	SheetCabins:      {"ship_code", "cabin_no", "deck", "category_code"},
}

// Issue points at one bad cell. Row is the 1-based spreadsheet row.
type Issue struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// ValidationError carries every issue found in a workbook.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("workbook has %d error(s)", len(e.Issues))
}

func (e *ValidationError) Unwrap() error { return utils.ErrUnprocessable }

type CategoryRow struct {
	Row      int
	ShipCode string
	Category models.CabinCategory
}

type CabinRow struct {
	Row          int
	ShipCode     string
	CategoryCode string
	Cabin        models.Cabin
}

// Plan is the validated content of a workbook, ready to be written.
type Plan struct {
	Itineraries []models.Itinerary
	Categories  []CategoryRow
	Cabins      []CabinRow
}

func (p *Plan) Stops() int {
	n := 0
	for _, it := range p.Itineraries {
		n += len(it.Stops)
	}
	return n
}

// ShipCodes lists the distinct ship codes referenced by categories and cabins.
func (p *Plan) ShipCodes() []string {
	seen := map[string]bool{}
	for _, c := range p.Categories {
		seen[c.ShipCode] = true
	}
	for _, c := range p.Cabins {
		seen[c.ShipCode] = true
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

type sheet struct {
	name   string
	header map[string]int
	cols   []string
	rows   [][]string
}

func (s *sheet) cell(row []string, col string) string {
	i, ok := s.header[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// langColumns maps "<prefix><lang>" columns of a row to a language map.
func (s *sheet) langColumns(row []string, prefix string) map[string]string {
	out := map[string]string{}
	for _, col := range s.cols {
		lang, ok := strings.CutPrefix(col, prefix)
		if !ok || lang == "" {
			continue
		}
		if v := s.cell(row, col); v != "" {
			out[lang] = v
		}
	}
	return out
}

type parser struct {
	issues []Issue
}

func (p *parser) add(sheet string, row int, col, format string, args ...any) {
	p.issues = append(p.issues, Issue{Sheet: sheet, Row: row, Column: col, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) intCell(s *sheet, row []string, n int, col string) (int, bool) {
	raw := s.cell(row, col)
	v, err := strconv.Atoi(raw)
	if err != nil {
		// Spreadsheet apps often store whole numbers as floats.
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			p.add(s.name, n, col, "must be an integer")
			return 0, false
		}
		v = int(f)
	}
	return v, true
}

func (p *parser) requireCells(s *sheet, row []string, n int) bool {
	ok := true
	for _, col := range required[s.name] {
		if s.cell(row, col) == "" {
			p.add(s.name, n, col, "is required")
			ok = false
		}
	}
	return ok
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (p *parser) readSheet(f *excelize.File, name string) *sheet {
	rows, err := f.GetRows(name)
	if err != nil {
		p.add(name, 0, "", "cannot read sheet: %v", err)
		return nil
	}
	s := &sheet{name: name, header: map[string]int{}}
	if len(rows) == 0 {
		return s
	}
	for i, h := range rows[0] {
		col := strings.ToLower(strings.TrimSpace(h))
		if col == "" {
			continue
		}
		if _, dup := s.header[col]; dup {
			p.add(name, 1, col, "duplicate column")
			continue
		}
		s.header[col] = i
		s.cols = append(s.cols, col)
	}
	missing := false
	for _, col := range required[name] {
		if _, ok := s.header[col]; !ok {
			p.add(name, 1, col, "missing required column")
			missing = true
		}
	}
	if missing {
		return nil
	}
	s.rows = rows[1:]
	return s
}

// Parse reads a workbook and validates it in a single pass, including references between
// sheets. Ship codes are checked later against the tenant.
func Parse(r io.Reader) (*Plan, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, utils.Invalid("file is not a readable xlsx workbook")
	}
	defer f.Close()

	present := map[string]bool{}
	for _, name := range f.GetSheetList() {
		present[name] = true
	}
	if !present[SheetItineraries] && !present[SheetCategories] && !present[SheetCabins] {
		return nil, utils.Invalid("workbook needs at least one of the sheets %s, %s, %s", SheetItineraries, SheetCategories, SheetCabins)
	}

	p := &parser{}
	plan := &Plan{}
	sheets := map[string]*sheet{}
	for _, name := range []string{SheetItineraries, SheetStops, SheetCategories, SheetCabins} {
		if present[name] {
			sheets[name] = p.readSheet(f, name)
		}
	}
	if present[SheetStops] && !present[SheetItineraries] {
		p.add(SheetStops, 0, "", "sheet %s requires sheet %s", SheetStops, SheetItineraries)
	}

	p.itineraries(sheets[SheetItineraries], sheets[SheetStops], plan)
	p.cabins(sheets[SheetCategories], sheets[SheetCabins], plan)

	if len(p.issues) > 0 {
		return nil, &ValidationError{Issues: p.issues}
	}
	return plan, nil
}

func (p *parser) itineraries(its, stops *sheet, plan *Plan) {
	if its == nil {
		return
	}
	index := map[string]int{}
	for i, row := range its.rows {
		n := i + 2
		if blank(row) || !p.requireCells(its, row, n) {
			continue
		}
		code := its.cell(row, "code")
		if _, dup := index[code]; dup {
			p.add(its.name, n, "code", "duplicate itinerary code %q", code)
			continue
		}
		index[code] = len(plan.Itineraries)
		plan.Itineraries = append(plan.Itineraries, models.Itinerary{
			Code:        code,
			Titles:      its.langColumns(row, "title_"),
			MapImageURL: its.cell(row, "map_image_url"),
			Stops:       []models.ItineraryStop{},
		})
	}
	if stops == nil {
		return
	}

	days := map[string]map[int]bool{}
	for i, row := range stops.rows {
		n := i + 2
		if blank(row) || !p.requireCells(stops, row, n) {
			continue
		}
		code := stops.cell(row, "itinerary_code")
		at, ok := index[code]
		if !ok {
			p.add(stops.name, n, "itinerary_code", "unknown itinerary %q", code)
			continue
		}
		day, ok := p.intCell(stops, row, n, "day_offset")
		if !ok {
			continue
		}
		st, err := itinerary.NormalizeStop(models.ItineraryStop{
			DayOffset:     day,
			Kind:          stops.cell(row, "kind"),
			PortCode:      stops.cell(row, "port_code"),
			PortName:      stops.cell(row, "port_name"),
			ArrivalTime:   stops.cell(row, "arrival_time"),
			DepartureTime: stops.cell(row, "departure_time"),
			ImageURL:      stops.cell(row, "image_url"),
			Labels:        stops.langColumns(row, "label_"),
		})
		if err != nil {
			p.add(stops.name, n, stopColumn(err.Error()), "%s", err.Error())
			continue
		}
		if days[code] == nil {
			days[code] = map[int]bool{}
		}
		if days[code][day] {
			p.add(stops.name, n, "day_offset", "duplicate day_offset %d for itinerary %q", day, code)
			continue
		}
		days[code][day] = true
		plan.Itineraries[at].Stops = append(plan.Itineraries[at].Stops, st)
	}
	for i := range plan.Itineraries {
		sort.SliceStable(plan.Itineraries[i].Stops, func(a, b int) bool {
			return plan.Itineraries[i].Stops[a].DayOffset < plan.Itineraries[i].Stops[b].DayOffset
		})
	}
}

// stopColumn guesses the offending column from a stop validation message.
func stopColumn(msg string) string {
	for _, col := range []string{"kind", "day_offset", "port_code", "arrival_time", "departure_time"} {
		if strings.Contains(msg, col) {
			return col
		}
	}
	if strings.Contains(msg, "port stops") {
		return "port_code"
	}
	return ""
}

func (p *parser) cabins(cats, cabins *sheet, plan *Plan) {
	known := map[string]bool{}
	if cats != nil {
		for i, row := range cats.rows {
			n := i + 2
			if blank(row) || !p.requireCells(cats, row, n) {
				continue
			}
			ship := utils.UpperCode(cats.cell(row, "ship_code"))
			code := utils.UpperCode(cats.cell(row, "code"))
			if known[ship+"/"+code] {
				p.add(cats.name, n, "code", "duplicate category code %q for ship %q", code, ship)
				continue
			}
			occ := 2
			if cats.cell(row, "max_occupancy") != "" {
				v, ok := p.intCell(cats, row, n, "max_occupancy")
				if !ok {
					continue
				}
				if v < 1 {
					p.add(cats.name, n, "max_occupancy", "must be >= 1")
					continue
				}
				occ = v
			}
			known[ship+"/"+code] = true
			plan.Categories = append(plan.Categories, CategoryRow{
				Row:      n,
				ShipCode: ship,
				Category: models.CabinCategory{
					Code:         code,
					Name:         cats.cell(row, "name"),
					View:         cats.cell(row, "view"),
					CabinClass:   cats.cell(row, "cabin_class"),
					MaxOccupancy: occ,
				},
			})
		}
	}
	if cabins == nil {
		return
	}

	seen := map[string]bool{}
	for i, row := range cabins.rows {
		n := i + 2
		if blank(row) || !p.requireCells(cabins, row, n) {
			continue
		}
		ship := utils.UpperCode(cabins.cell(row, "ship_code"))
		no := cabins.cell(row, "cabin_no")
		cat := utils.UpperCode(cabins.cell(row, "category_code"))
		if seen[ship+"/"+no] {
			p.add(cabins.name, n, "cabin_no", "duplicate cabin number %q for ship %q", no, ship)
			continue
		}
		seen[ship+"/"+no] = true
		if !known[ship+"/"+cat] {
			p.add(cabins.name, n, "category_code", "category %q is not defined for ship %q in %s", cat, ship, SheetCategories)
			continue
		}
		deck, ok := p.intCell(cabins, row, n, "deck")
		if !ok {
			continue
		}
		if deck < 0 {
			p.add(cabins.name, n, "deck", "must be >= 0")
			continue
		}
		status, err := ships.CabinStatus(cabins.cell(row, "status"))
		if err != nil {
			p.add(cabins.name, n, "status", "%s", err.Error())
			continue
		}
		plan.Cabins = append(plan.Cabins, CabinRow{
			Row:          n,
			ShipCode:     ship,
			CategoryCode: cat,
			Cabin:        models.Cabin{CabinNo: no, Deck: deck, Status: status, Accessories: []string{}},
		})
	}
}
