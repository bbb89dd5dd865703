package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	"github.com/sangkips/bakehouse-api/pkg/apperror"
	"github.com/sangkips/bakehouse-api/pkg/printer"
	"github.com/sangkips/bakehouse-api/pkg/utils"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	saleRepo    repository.SaleRepository
	tenantRepo  repository.TenantRepository
	taxService  *TaxService
	printerType string
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	saleRepo repository.SaleRepository,
	tenantRepo repository.TenantRepository,
	taxService *TaxService,
	printerType string,
) *PrinterService {
	return &PrinterService{
		printer:     p,
		saleRepo:    saleRepo,
		tenantRepo:  tenantRepo,
		taxService:  taxService,
		printerType: printerType,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// TestPrint sends a test page to the printer.
// Returns the receipt data so the handler can return it as JSON when printer is disabled.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			StoreName: "PRINTER TEST",
			Address:   "Test Address",
			Phone:     "+91 00000 00000",
		},
		BillNo:  "TEST-001",
		Date:    "Test Date",
		Cashier: "System",
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: 10.00, Total: 10.00},
			{Name: "Test Item 2", Quantity: 2, UnitPrice: 5.00, Total: 10.00},
		},
		SubTotal: 20.00,
		Total:    20.00,
		Paid:     20.00,
	}

	data := FormatReceipt(receipt)
	if err := s.printer.Print(data); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}

	return receipt, nil
}

// PrintSaleReceipt fetches a sale with its items and prints its receipt.
func (s *PrinterService) PrintSaleReceipt(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, error) {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}

	receipt := s.BuildReceipt(ctx, sale)

	data := FormatReceipt(receipt)
	if err := s.printer.Print(data); err != nil {
		log.Printf("Printer error (sale %s): %v", saleID, err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}

	return receipt, nil
}

// BuildReceipt composes a printable receipt from a committed sale. The
// receipt is a projection only; printing never alters the sale.
func (s *PrinterService) BuildReceipt(ctx context.Context, sale *entity.Sale) *entity.Receipt {
	header := entity.ReceiptHeader{StoreName: "Bakehouse"}
	footer := "Thank you, visit again!"
	billPrefix := ""

	if tenant, err := s.tenantRepo.GetByID(ctx, sale.TenantID); err == nil && tenant != nil {
		header.StoreName = tenant.Name
		if tenant.Settings.ReceiptFooter != "" {
			footer = tenant.Settings.ReceiptFooter
		}
		billPrefix = tenant.Settings.BillPrefix
	}

	profile := s.taxService.Resolve(ctx)
	header.GSTIN = profile.GSTIN

	receipt := &entity.Receipt{
		Header:      header,
		BillNo:      utils.FormatBillNo(billPrefix, sale.BillNo),
		Date:        sale.SaleDate.Format("02/01/2006 15:04"),
		Customer:    sale.CustomerName,
		PaymentType: sale.PaymentType,
		SubTotal:    float64(sale.SubTotal) / 100,
		Discount:    float64(sale.DiscountAmount) / 100,
		CGST:        float64(sale.CGST) / 100,
		SGST:        float64(sale.SGST) / 100,
		IGST:        float64(sale.IGST) / 100,
		Total:       float64(sale.Total) / 100,
		Paid:        float64(sale.Paid) / 100,
		Due:         float64(sale.Due) / 100,
		Footer:      footer,
	}

	for _, item := range sale.Items {
		name := item.ProductName
		if name == "" {
			name = "Item"
		}
		if item.Tier != "" {
			name = fmt.Sprintf("%s (%s)", name, item.Tier)
		}
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      name,
			Quantity:  item.Quantity,
			UnitPrice: float64(item.UnitPrice) / 100,
			Total:     float64(item.Total) / 100,
		})
	}

	return receipt
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt) []byte {
	doc := printer.NewDocument(32) // 58mm paper = 32 chars

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}
	if r.Header.GSTIN != "" {
		doc.TextF("GSTIN: %s", r.Header.GSTIN)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	// Bill info
	doc.KeyValue("Bill:", r.BillNo).
		KeyValue("Date:", r.Date)

	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	if r.PaymentType != "" {
		doc.KeyValue("Payment:", r.PaymentType)
	}

	doc.Separator('-')

	// Items
	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, fmt.Sprintf("%.2f", item.Total))
		if item.Quantity > 1 {
			doc.TextF("  @ %.2f each", item.UnitPrice)
		}
	}

	doc.Separator('-')

	// Totals
	doc.KeyValue("Subtotal:", fmt.Sprintf("%.2f", r.SubTotal))
	if r.Discount > 0 {
		doc.KeyValue("Discount:", fmt.Sprintf("-%.2f", r.Discount))
	}
	if r.CGST > 0 {
		doc.KeyValue("CGST:", fmt.Sprintf("%.2f", r.CGST))
	}
	if r.SGST > 0 {
		doc.KeyValue("SGST:", fmt.Sprintf("%.2f", r.SGST))
	}
	if r.IGST > 0 {
		doc.KeyValue("IGST:", fmt.Sprintf("%.2f", r.IGST))
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", fmt.Sprintf("%.2f", r.Total)).
		SetBold(false)

	if r.Paid > 0 {
		doc.KeyValue("Paid:", fmt.Sprintf("%.2f", r.Paid))
	}
	if r.Due > 0 {
		doc.KeyValue("Due:", fmt.Sprintf("%.2f", r.Due))
	}

	doc.Separator('-')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text(r.Footer).
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
