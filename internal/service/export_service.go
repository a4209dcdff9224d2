package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Cruzitooo/salsa-studio-api/pkg/export"
)

// ExportService renders a month of payments as CSV or PDF downloads.
type ExportService struct {
	payments monthPaymentsLoader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(payments monthPaymentsLoader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		payments: payments,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

var paymentExportHeaders = []string{"Fecha", "Alumno", "Concepto", "Clase", "Importe", "Estado", "Origen"}

// PaymentsCSV renders the month as CSV.
func (s *ExportService) PaymentsCSV(ctx context.Context, year, month int) ([]byte, string, error) {
	dataset, err := s.dataset(ctx, year, month)
	if err != nil {
		return nil, "", err
	}
	body, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, "", err
	}
	return body, fmt.Sprintf("pagos-%d-%02d.csv", year, month), nil
}

// PaymentsPDF renders the month as a tabular PDF.
func (s *ExportService) PaymentsPDF(ctx context.Context, year, month int) ([]byte, string, error) {
	dataset, err := s.dataset(ctx, year, month)
	if err != nil {
		return nil, "", err
	}
	title := fmt.Sprintf("Pagos %02d/%d", month, year)
	body, err := s.pdf.Render(*dataset, title)
	if err != nil {
		return nil, "", err
	}
	return body, fmt.Sprintf("pagos-%d-%02d.pdf", year, month), nil
}

func (s *ExportService) dataset(ctx context.Context, year, month int) (*export.Dataset, error) {
	payments, err := s.payments.MonthUnified(ctx, year, month)
	if err != nil {
		return nil, err
	}
	totals, err := SumTotals(payments)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]string, 0, len(payments))
	for _, p := range payments {
		category := ""
		if p.CategoryName != nil {
			category = *p.CategoryName
		}
		rows = append(rows, map[string]string{
			"Fecha":    p.CreatedAt.Format(dayFormat),
			"Alumno":   p.StudentName,
			"Concepto": p.Concept,
			"Clase":    category,
			"Importe":  fmt.Sprintf("%.2f", p.Amount),
			"Estado":   p.Status,
			"Origen":   string(p.Source),
		})
	}

	return &export.Dataset{
		Headers: paymentExportHeaders,
		Rows:    rows,
		Footer: map[string]string{
			"Alumno":  "Total",
			"Importe": fmt.Sprintf("%.2f", totals.Combined),
		},
	}, nil
}
