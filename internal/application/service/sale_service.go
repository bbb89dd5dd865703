package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	infraRepo "github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/sangkips/bakehouse-api/pkg/apperror"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
	"github.com/sangkips/bakehouse-api/pkg/sms"
	"github.com/sangkips/bakehouse-api/pkg/utils"
)

// AmendmentWindow is how long after commit new lines may still be added
// to a bill. Past it the counter staff rings up a fresh sale.
const AmendmentWindow = 15 * time.Minute

// SaleService handles the billing pipeline: commit, amend, pay, cancel.
type SaleService struct {
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	taxService   *TaxService
	notifier     sms.Notifier
}

// NewSaleService creates a new sale service
func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	taxService *TaxService,
	notifier sms.Notifier,
) *SaleService {
	return &SaleService{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		taxService:   taxService,
		notifier:     notifier,
	}
}

// CommitSaleInput is the request to commit a sale
type CommitSaleInput struct {
	CustomerID    *uuid.UUID
	CustomerName  string
	CustomerPhone *string
	CustomerType  enum.CustomerType
	CustomerGSTIN *string
	Items         []SaleLineInput
	DiscountType  enum.DiscountType
	DiscountValue float64
	AmountPaid    int64 // paise
	PaymentType   string
	SaleDate      *time.Time
}

// Commit validates, prices and persists a sale in a single transaction:
// bill number, stock decrements, items and the opening payment entry all
// land together or not at all.
func (s *SaleService) Commit(ctx context.Context, userID uuid.UUID, userName string, input CommitSaleInput) (*entity.Sale, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	sale := &entity.Sale{
		TenantID: tenantID,
		UserID:   userID,
		SaleDate: time.Now(),
		Status:   enum.SaleStatusCompleted,
	}
	if input.SaleDate != nil {
		sale.SaleDate = *input.SaleDate
	}

	if err := s.snapshotCustomer(ctx, sale, input); err != nil {
		return nil, err
	}

	products, err := s.fetchProducts(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	items, decrements, err := priceLines(products, input.Items)
	if err != nil {
		return nil, err
	}

	profile := s.taxService.Resolve(ctx)
	if err := s.computeBill(sale, items, profile, input.DiscountType, input.DiscountValue); err != nil {
		return nil, err
	}
	sale.Items = items

	if input.AmountPaid < 0 {
		return nil, apperror.NewBadRequestError("Amount paid cannot be negative")
	}
	if input.AmountPaid > sale.Total {
		return nil, apperror.NewBadRequestError("Amount paid cannot exceed the bill total")
	}
	sale.PaymentType = input.PaymentType
	if input.AmountPaid > 0 {
		sale.Payments = []entity.PaymentEntry{{
			Amount:       input.AmountPaid,
			Method:       input.PaymentType,
			ReceivedByID: userID,
			ReceivedBy:   userName,
		}}
	}
	sale.ApplyPayments()

	failedIDs, err := s.saleRepo.CreateCommitted(ctx, sale, decrements)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		return nil, apperror.NewBadRequestError(s.insufficientStockMessage(products, failedIDs))
	}

	s.notifyCommitted(sale)

	return s.saleRepo.GetByID(ctx, sale.ID)
}

// PreviewSale computes the full bill breakdown for the given lines
// without writing anything. Same validation and rounding as Commit.
func (s *SaleService) PreviewSale(ctx context.Context, input CommitSaleInput) (*TaxPreview, error) {
	products, err := s.fetchProducts(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	items, _, err := priceLines(products, input.Items)
	if err != nil {
		return nil, err
	}

	sale := &entity.Sale{CustomerType: input.CustomerType, CustomerGSTIN: input.CustomerGSTIN}
	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
		sale.CustomerType = customer.Type
		sale.CustomerGSTIN = customer.GSTIN
	}

	profile := s.taxService.Resolve(ctx)
	if err := s.computeBill(sale, items, profile, input.DiscountType, input.DiscountValue); err != nil {
		return nil, err
	}

	return &TaxPreview{
		SubTotal:       sale.SubTotal,
		DiscountAmount: sale.DiscountAmount,
		TaxableAmount:  sale.TaxableAmount,
		CGST:           sale.CGST,
		SGST:           sale.SGST,
		IGST:           sale.IGST,
		GSTAmount:      sale.GSTAmount,
		Total:          sale.Total,
		HasGST:         sale.GSTAmount > 0,
		Interstate:     sale.Interstate,
	}, nil
}

// AddItems appends lines to a committed sale. Allowed only within the
// amendment window and never on a cancelled bill. A nonzero
// amountReceived lands in the payment ledger together with the lines.
func (s *SaleService) AddItems(ctx context.Context, saleID, userID uuid.UUID, userName string, inputs []SaleLineInput, amountReceived int64, method string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	if sale.IsCancelled() {
		return nil, apperror.NewConflictError("Cannot add items to a cancelled sale")
	}
	if time.Since(sale.CreatedAt) > AmendmentWindow {
		return nil, apperror.NewConflictError("Sale can no longer be amended")
	}
	if amountReceived < 0 {
		return nil, apperror.NewBadRequestError("Amount received cannot be negative")
	}

	products, err := s.fetchProducts(ctx, inputs)
	if err != nil {
		return nil, err
	}

	items, decrements, err := priceLines(products, inputs)
	if err != nil {
		return nil, err
	}

	profile := s.taxService.Resolve(ctx)
	hasGST := s.taxService.Applies(profile, sale.CustomerType)

	for i := range items {
		items[i].SaleID = sale.ID
		sale.SubTotal += items[i].Amount
	}

	// A percentage discount follows the subtotal; a fixed discount stays.
	if sale.DiscountType == enum.DiscountTypePercentage {
		sale.DiscountAmount = int64(math.Round(float64(sale.SubTotal) * sale.DiscountValue / 100))
	}
	sale.TaxableAmount = sale.SubTotal - sale.DiscountAmount

	for i := range items {
		items[i].Total = items[i].Amount
		if !hasGST {
			continue
		}

		// Same proportional scaling as commit, against the amended totals
		lineTaxable := items[i].Amount
		if sale.DiscountAmount > 0 && sale.SubTotal > 0 {
			lineTaxable = int64(math.Round(float64(items[i].Amount) * float64(sale.TaxableAmount) / float64(sale.SubTotal)))
		}

		breakdown := s.taxService.CalculateLine(profile, lineTaxable, sale.Interstate)
		items[i].CGST = breakdown.CGST
		items[i].SGST = breakdown.SGST
		items[i].IGST = breakdown.IGST
		if !profile.PriceIncludesGST {
			items[i].Total = items[i].Amount + breakdown.Total()
		}

		sale.CGST += breakdown.CGST
		sale.SGST += breakdown.SGST
		sale.IGST += breakdown.IGST
	}

	sale.GSTAmount = sale.CGST + sale.SGST + sale.IGST
	sale.Total = sale.TaxableAmount
	if !profile.PriceIncludesGST {
		sale.Total += sale.GSTAmount
	}
	sale.ApplyPayments()

	var payment *entity.PaymentEntry
	if amountReceived > 0 {
		if amountReceived > sale.Due {
			return nil, apperror.NewConflictError(fmt.Sprintf("Payment of %.2f exceeds the outstanding due of %.2f", float64(amountReceived)/100, float64(sale.Due)/100))
		}
		payment = &entity.PaymentEntry{
			SaleID:       sale.ID,
			Amount:       amountReceived,
			Method:       method,
			ReceivedByID: userID,
			ReceivedBy:   userName,
		}
		sale.Payments = append(sale.Payments, *payment)
		sale.ApplyPayments()
	}

	failedIDs, err := s.saleRepo.AppendItems(ctx, sale, items, payment, decrements)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		return nil, apperror.NewBadRequestError(s.insufficientStockMessage(products, failedIDs))
	}

	return s.saleRepo.GetByID(ctx, saleID)
}

// RecordPayment appends one entry to the sale's payment ledger.
func (s *SaleService) RecordPayment(ctx context.Context, saleID, userID uuid.UUID, userName string, amount int64, method string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	if sale.IsCancelled() {
		return nil, apperror.NewConflictError("Cannot record a payment on a cancelled sale")
	}
	if amount <= 0 {
		return nil, apperror.NewBadRequestError("Payment amount must be greater than zero")
	}
	if amount > sale.Due {
		return nil, apperror.NewConflictError(fmt.Sprintf("Payment of %.2f exceeds the outstanding due of %.2f", float64(amount)/100, float64(sale.Due)/100))
	}

	payment := &entity.PaymentEntry{
		SaleID:       sale.ID,
		Amount:       amount,
		Method:       method,
		ReceivedByID: userID,
		ReceivedBy:   userName,
	}
	sale.Payments = append(sale.Payments, *payment)
	sale.ApplyPayments()

	if err := s.saleRepo.AddPayment(ctx, sale, payment); err != nil {
		return nil, err
	}

	return s.saleRepo.GetByID(ctx, saleID)
}

// CancelSaleInput is the request to cancel a sale
type CancelSaleInput struct {
	Reason       string
	RefundAmount int64 // paise
	RefundMethod *string
	RefundNotes  *string
}

// CancelSale voids a committed bill. Stock is restored for every line,
// tracked or not, since an untracked product may have been switched to
// tracking since the sale.
func (s *SaleService) CancelSale(ctx context.Context, saleID, userID uuid.UUID, input CancelSaleInput) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	if sale.IsCancelled() {
		return nil, apperror.NewConflictError("Sale is already cancelled")
	}
	if input.RefundAmount < 0 || input.RefundAmount > sale.Paid {
		return nil, apperror.NewBadRequestError("Refund cannot exceed the amount paid")
	}

	increments := make(map[uuid.UUID]float64)
	for _, item := range sale.Items {
		increments[item.ProductID] += item.Quantity
	}

	now := time.Now()
	sale.Status = enum.SaleStatusCancelled
	sale.CancelledAt = &now
	sale.CancelledByID = &userID
	if input.Reason != "" {
		sale.CancellationReason = &input.Reason
	}
	sale.RefundAmount = input.RefundAmount
	sale.RefundMethod = input.RefundMethod
	sale.RefundNotes = input.RefundNotes

	if err := s.saleRepo.Cancel(ctx, sale, increments); err != nil {
		return nil, err
	}

	return s.saleRepo.GetByID(ctx, saleID)
}

// GetSale retrieves a sale with its items and payment ledger
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// GetSaleByBillNo retrieves a sale by its bill number
func (s *SaleService) GetSaleByBillNo(ctx context.Context, billNo int64) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByBillNo(ctx, billNo)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales retrieves sales with filtering and pagination
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	return s.saleRepo.List(ctx, params)
}

// GetDueSales retrieves sales with an outstanding balance
func (s *SaleService) GetDueSales(ctx context.Context, params *pagination.PaginationParams) ([]entity.Sale, int64, error) {
	return s.saleRepo.GetDueSales(ctx, params)
}

// snapshotCustomer copies customer identity onto the sale. A linked
// customer overrides the inline fields; the sale never reads the
// customer record again after commit.
func (s *SaleService) snapshotCustomer(ctx context.Context, sale *entity.Sale, input CommitSaleInput) error {
	if input.CustomerID == nil {
		sale.CustomerName = input.CustomerName
		if sale.CustomerName == "" {
			sale.CustomerName = "Walk-in"
		}
		sale.CustomerPhone = input.CustomerPhone
		sale.CustomerType = input.CustomerType
		sale.CustomerGSTIN = input.CustomerGSTIN
		return nil
	}

	customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewNotFoundError("Customer")
	}

	sale.CustomerID = &customer.ID
	sale.CustomerName = customer.Name
	sale.CustomerPhone = customer.Phone
	sale.CustomerAddress = customer.Address
	sale.CustomerType = customer.Type
	sale.CustomerGSTIN = customer.GSTIN
	return nil
}

// fetchProducts batch-loads every product referenced by the lines.
func (s *SaleService) fetchProducts(ctx context.Context, inputs []SaleLineInput) (map[uuid.UUID]*entity.Product, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewBadRequestError("Sale must have at least one item")
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]bool)
	for _, in := range inputs {
		if !seen[in.ProductID] {
			seen[in.ProductID] = true
			ids = append(ids, in.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}
	return productMap, nil
}

// computeBill applies the order-level discount and fills per-line and
// aggregate GST amounts. Line taxes are rounded independently and
// summed; when an order discount applies, each line's taxable amount is
// scaled down proportionally first.
func (s *SaleService) computeBill(sale *entity.Sale, items []entity.SaleItem, profile *entity.TaxProfile, discountType enum.DiscountType, discountValue float64) error {
	var subTotal int64
	for i := range items {
		subTotal += items[i].Amount
	}

	discountAmount, err := discountOn(subTotal, discountType, discountValue)
	if err != nil {
		return err
	}

	sale.SubTotal = subTotal
	sale.DiscountType = discountType
	sale.DiscountValue = discountValue
	sale.DiscountAmount = discountAmount
	sale.TaxableAmount = subTotal - discountAmount

	hasGST := s.taxService.Applies(profile, sale.CustomerType)
	customerGSTIN := ""
	if sale.CustomerGSTIN != nil {
		customerGSTIN = *sale.CustomerGSTIN
	}
	sale.Interstate = hasGST && s.taxService.Interstate(profile, customerGSTIN)

	sale.CGST, sale.SGST, sale.IGST = 0, 0, 0
	for i := range items {
		items[i].Total = items[i].Amount
		if !hasGST {
			continue
		}

		lineTaxable := items[i].Amount
		if discountAmount > 0 && subTotal > 0 {
			lineTaxable = int64(math.Round(float64(items[i].Amount) * float64(sale.TaxableAmount) / float64(subTotal)))
		}

		breakdown := s.taxService.CalculateLine(profile, lineTaxable, sale.Interstate)
		items[i].CGST = breakdown.CGST
		items[i].SGST = breakdown.SGST
		items[i].IGST = breakdown.IGST
		if !profile.PriceIncludesGST {
			items[i].Total = items[i].Amount + breakdown.Total()
		}

		sale.CGST += breakdown.CGST
		sale.SGST += breakdown.SGST
		sale.IGST += breakdown.IGST
	}

	sale.GSTAmount = sale.CGST + sale.SGST + sale.IGST
	sale.Total = sale.TaxableAmount
	if !profile.PriceIncludesGST {
		sale.Total += sale.GSTAmount
	}
	return nil
}

// insufficientStockMessage names the products that could not be decremented.
func (s *SaleService) insufficientStockMessage(products map[uuid.UUID]*entity.Product, failedIDs []uuid.UUID) string {
	names := make([]string, 0, len(failedIDs))
	for _, id := range failedIDs {
		if p, ok := products[id]; ok {
			names = append(names, p.Name)
		} else {
			names = append(names, id.String())
		}
	}
	return fmt.Sprintf("Insufficient stock for: %v", names)
}

// notifyCommitted sends the bill confirmation SMS. Delivery failures are
// logged and never fail the sale.
func (s *SaleService) notifyCommitted(sale *entity.Sale) {
	if sale.CustomerPhone == nil || *sale.CustomerPhone == "" {
		return
	}
	phone := *sale.CustomerPhone
	message := fmt.Sprintf("Thank you %s! Bill %s, total Rs %.2f, paid Rs %.2f.",
		sale.CustomerName, utils.FormatBillNo("", sale.BillNo), float64(sale.Total)/100, float64(sale.Paid)/100)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifier.Send(ctx, phone, message); err != nil {
			log.Printf("sale %s: sms notification failed: %v", sale.ID, err)
		}
	}()
}
