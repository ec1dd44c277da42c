package repository

import (
	"github.com/diillson/rightsizing-tickets/internal/domain/entity"
)

type ExportRepository interface {
	ExportTicketsToCSV(records []entity.TicketRecord, filename, outputDir string) (string, error)
	ExportTicketsToJSON(records []entity.TicketRecord, filename, outputDir string) (string, error)
	ExportTicketsToPDF(records []entity.TicketRecord, filename, outputDir string) (string, error)
}
