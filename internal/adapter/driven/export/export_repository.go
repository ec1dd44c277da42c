package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
	"github.com/diillson/rightsizing-tickets/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{now: time.Now}
}

var csvHeaders = []string{
	"Resource ID", "Account Name", "Team Name", "Summary",
	"Savings", "Cost After Recommendation", "Issue Key", "Status", "Note",
}

func (r *ExportRepositoryImpl) ExportTicketsToCSV(records []entity.TicketRecord, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeaders); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.ResourceID,
			rec.AccountName,
			rec.TeamName,
			rec.Summary,
			fmt.Sprintf("$%.2f", rec.Savings),
			fmt.Sprintf("$%.2f", rec.OptimizedSpend),
			rec.IssueKey,
			string(rec.Status),
			rec.Note,
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportTicketsToJSON(records []entity.TicketRecord, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	if records == nil {
		records = []entity.TicketRecord{}
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportTicketsToPDF writes one page per team, teams in alphabetical order.
func (r *ExportRepositoryImpl) ExportTicketsToPDF(records []entity.TicketRecord, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	byTeam := make(map[string][]entity.TicketRecord)
	for _, rec := range records {
		byTeam[rec.TeamName] = append(byTeam[rec.TeamName], rec)
	}
	teams := make([]string, 0, len(byTeam))
	for team := range byTeam {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	if len(teams) == 0 {
		pdf.AddPage()
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 8, "No recommendations were processed.")
	}

	for i, team := range teams {
		pdf.AddPage()

		var savings float64
		for _, rec := range byTeam[team] {
			savings += rec.Savings
		}

		// Cabeçalho
		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Team: %s", team)), "", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		summary := fmt.Sprintf("  %d recommendations | $%.2f potential 30-day savings", len(byTeam[team]), savings)
		pdf.CellFormat(0, 8, tr(summary), "", 1, "L", true, 0, "")
		pdf.Ln(10)

		for _, rec := range byTeam[team] {
			title := rec.ResourceID
			if rec.IssueKey != "" {
				title = fmt.Sprintf("%s (%s)", rec.ResourceID, rec.IssueKey)
			}
			pdf.SetFont("Arial", "B", 12)
			pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
			pdf.Cell(0, 8, tr(title))
			pdf.Ln(7)

			pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
			pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
			pdf.Ln(4)

			status := string(rec.Status)
			if rec.Note != "" {
				status += ": " + rec.Note
			}
			body := fmt.Sprintf("Account: %s\nStatus: %s\nSavings: $%.2f\nCost after recommendation: $%.2f\n\n%s",
				rec.AccountName, status, rec.Savings, rec.OptimizedSpend, rec.Summary)

			pdf.SetFont("Arial", "", 10)
			pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
			pdf.MultiCell(190, 5, tr(body), "", "L", false)
			pdf.Ln(6)
		}

		// Rodapé
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Rightsizing Tickets | %s", r.now().Format("2006-01-02"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", i+1)), "", 0, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func (r *ExportRepositoryImpl) generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := r.now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}
