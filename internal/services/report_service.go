package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"sync"

	"github.com/jung-kurt/gofpdf/v2"

	"arcade-backend/internal/assignment"
	"arcade-backend/internal/models"
	"arcade-backend/internal/repositories"
	"arcade-backend/internal/timeutil"
)

// ReportService generates printable inventory and fleet reports
type ReportService struct {
	Items    *repositories.StockItemRepository
	Machines *repositories.MachineRepository
	Settings *repositories.SystemSettingRepository
}

func NewReportService(
	items *repositories.StockItemRepository,
	machines *repositories.MachineRepository,
	settings *repositories.SystemSettingRepository,
) *ReportService {
	return &ReportService{Items: items, Machines: machines, Settings: settings}
}

// venueName reads the configurable report header, falling back to a default
func (s *ReportService) venueName(ctx context.Context) string {
	setting, err := s.Settings.Get(ctx, "venue_name")
	if err != nil || setting.SettingValue == "" {
		return "Arcade Operations"
	}
	return setting.SettingValue
}

// GenerateInventoryPDF renders the full active inventory as a table
func (s *ReportService) GenerateInventoryPDF(ctx context.Context, includeArchived bool) ([]byte, error) {
	items, err := s.Items.List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, fmt.Sprintf("%s - Inventory Report", s.venueName(ctx)), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Table header
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(28, 7, "SKU", "1", 0, "C", true, 0, "")
	pdf.CellFormat(52, 7, "Name", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Category", "1", 0, "C", true, 0, "")
	pdf.CellFormat(15, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(23, 7, "Stock", "1", 0, "C", true, 0, "")
	pdf.CellFormat(42, 7, "Assigned To", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	var totalUnits int
	var totalValue float64
	for i := range items {
		item := &items[i]
		totalUnits += item.TotalQuantity
		totalValue += float64(item.TotalQuantity) * item.Value

		pdf.CellFormat(28, 6, item.SKU, "1", 0, "C", false, 0, "")
		pdf.CellFormat(52, 6, truncate(item.Name, 30), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, truncate(item.Category, 16), "1", 0, "C", false, 0, "")
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", item.TotalQuantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(23, 6, StockLabel(item.TotalQuantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(42, 6, truncate(assignedSummary(item), 24), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Totals
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(63, 8, fmt.Sprintf("Items: %d", len(items)), "1", 0, "C", true, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Units: %d", totalUnits), "1", 0, "C", true, 0, "")
	pdf.CellFormat(64, 8, fmt.Sprintf("Value: $%.2f", totalValue), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateInventoryCSV exports the inventory as CSV
func (s *ReportService) GenerateInventoryCSV(ctx context.Context, includeArchived bool) ([]byte, error) {
	items, err := s.Items.List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"SKU", "Name", "Category", "Brand", "Quantity", "Stock", "Unit Value", "Assigned To", "Archived"})
	for i := range items {
		item := &items[i]
		w.Write([]string{
			item.SKU,
			item.Name,
			item.Category,
			item.Brand,
			strconv.Itoa(item.TotalQuantity),
			StockLabel(item.TotalQuantity),
			fmt.Sprintf("%.2f", item.Value),
			assignedSummary(item),
			strconv.FormatBool(item.IsArchived),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateMachinePDF renders one machine's sheet with its slots, current
// items and replacement queues, freshly relinked
func (s *ReportService) GenerateMachinePDF(ctx context.Context, machineID string) ([]byte, error) {
	machine, err := s.Machines.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	items, err := s.Items.List(ctx, false)
	if err != nil {
		return nil, err
	}
	relinked := assignment.Relink([]models.ArcadeMachine{*machine}, items)
	return s.machineSheet(ctx, &relinked[0])
}

func (s *ReportService) machineSheet(ctx context.Context, machine *models.ArcadeMachine) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, fmt.Sprintf("%s - Machine Sheet", s.venueName(ctx)), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Machine info box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Machine", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", machine.Name), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Asset Tag: %s", machine.AssetTag), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Location: %s", machine.Location), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Status: %s", machine.Status), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	for si := range machine.Slots {
		slot := &machine.Slots[si]

		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, fmt.Sprintf("Slot: %s  (stock %s)", slot.Name, slot.StockLevel), "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 11)
		if slot.CurrentItem != nil {
			pdf.CellFormat(190, 7, fmt.Sprintf("Current: %s (%s), qty %d",
				slot.CurrentItem.Name, slot.CurrentItem.SKU, slot.CurrentItem.TotalQuantity), "LRB", 1, "L", false, 0, "")
		} else {
			pdf.CellFormat(190, 7, "Current: none", "LRB", 1, "L", false, 0, "")
		}

		if len(slot.UpcomingQueue) > 0 {
			pdf.SetFont("Arial", "B", 10)
			pdf.SetFillColor(200, 200, 200)
			pdf.CellFormat(15, 7, "#", "1", 0, "C", true, 0, "")
			pdf.CellFormat(85, 7, "Upcoming Item", "1", 0, "C", true, 0, "")
			pdf.CellFormat(45, 7, "SKU", "1", 0, "C", true, 0, "")
			pdf.CellFormat(45, 7, "Queued", "1", 1, "C", true, 0, "")

			pdf.SetFont("Arial", "", 10)
			for qi, up := range slot.UpcomingQueue {
				pdf.CellFormat(15, 6, fmt.Sprintf("%d", qi+1), "1", 0, "C", false, 0, "")
				pdf.CellFormat(85, 6, truncate(up.Name, 45), "1", 0, "L", false, 0, "")
				pdf.CellFormat(45, 6, up.SKU, "1", 0, "C", false, 0, "")
				pdf.CellFormat(45, 6, up.AddedAt.Format("02-Jan-2006"), "1", 1, "C", false, 0, "")
			}
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateFleetPDFZip builds one sheet per active machine in parallel and
// bundles them into a zip keyed by asset tag
func (s *ReportService) GenerateFleetPDFZip(ctx context.Context) ([]byte, error) {
	machines, err := s.Machines.List(ctx, false)
	if err != nil {
		return nil, err
	}
	items, err := s.Items.List(ctx, false)
	if err != nil {
		return nil, err
	}
	relinked := assignment.Relink(machines, items)

	type result struct {
		name string
		pdf  []byte
		err  error
	}

	jobs := make(chan *models.ArcadeMachine, len(relinked))
	results := make(chan result, len(relinked))

	var wg sync.WaitGroup
	numWorkers := 10
	if len(relinked) < numWorkers {
		numWorkers = len(relinked)
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				data, err := s.machineSheet(ctx, m)
				name := m.AssetTag
				if name == "" {
					name = m.ID
				}
				results <- result{name: name, pdf: data, err: err}
			}
		}()
	}
	for i := range relinked {
		jobs <- &relinked[i]
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	pdfs := make(map[string][]byte, len(relinked))
	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		pdfs[r.name] = r.pdf
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range pdfs {
		f, err := zw.Create(fmt.Sprintf("%s.pdf", name))
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateFleetCSV exports every machine slot as one CSV row
func (s *ReportService) GenerateFleetCSV(ctx context.Context) ([]byte, error) {
	machines, err := s.Machines.List(ctx, false)
	if err != nil {
		return nil, err
	}
	items, err := s.Items.List(ctx, false)
	if err != nil {
		return nil, err
	}
	relinked := assignment.Relink(machines, items)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"Asset Tag", "Machine", "Location", "Status", "Slot", "Stock Level", "Current Item", "Queue Depth"})
	for mi := range relinked {
		m := &relinked[mi]
		for si := range m.Slots {
			slot := &m.Slots[si]
			current := ""
			if slot.CurrentItem != nil {
				current = slot.CurrentItem.Name
			}
			w.Write([]string{
				m.AssetTag,
				m.Name,
				m.Location,
				m.Status,
				slot.Name,
				slot.StockLevel,
				current,
				strconv.Itoa(len(slot.UpcomingQueue)),
			})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func assignedSummary(item *models.StockItem) string {
	primary := assignment.PrimaryAssignment(item)
	if primary == nil {
		if n := assignment.Count(item); n > 0 {
			return fmt.Sprintf("%d queued", n)
		}
		return ""
	}
	extra := assignment.Count(item) - 1
	if extra > 0 {
		return fmt.Sprintf("%s (+%d)", primary.MachineName, extra)
	}
	return primary.MachineName
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
