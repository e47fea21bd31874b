package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/DeathRay00/trackmint/internal/mfg/engine"
	"github.com/DeathRay00/trackmint/internal/mfg/entity"
	"github.com/DeathRay00/trackmint/internal/mfg/repository"
)

// ReportService 库存报表
type ReportService struct {
	stockRepo   *repository.StockRepository
	productRepo *repository.ProductRepository
}

func NewReportService(stockRepo *repository.StockRepository, productRepo *repository.ProductRepository) *ReportService {
	return &ReportService{stockRepo: stockRepo, productRepo: productRepo}
}

// InventoryRow 库存估值行
type InventoryRow struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	StockQuantity int             `json:"stock_quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalValue    decimal.Decimal `json:"total_value"`
	BelowReorder  bool            `json:"below_reorder"`
}

// InventoryReport 库存估值汇总
type InventoryReport struct {
	Rows       []InventoryRow  `json:"rows"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// Inventory 当前库存估值：各产品数量×平均成本，并标记低于补货点的产品
func (s *ReportService) Inventory(ctx context.Context) (*InventoryReport, error) {
	products, _, err := s.productRepo.List(ctx, repository.ProductListParams{Page: 1, PageSize: 10000})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	report := &InventoryReport{Rows: make([]InventoryRow, 0, len(products)), TotalValue: decimal.Zero}
	for i := range products {
		p := &products[i]
		value := decimal.NewFromInt(int64(p.StockQuantity)).Mul(p.UnitCost).Round(2)
		report.Rows = append(report.Rows, InventoryRow{
			ProductID:     p.ID,
			SKU:           p.SKU,
			Name:          p.Name,
			Category:      p.Category,
			UnitOfMeasure: p.UnitOfMeasure,
			StockQuantity: p.StockQuantity,
			UnitCost:      p.UnitCost,
			TotalValue:    value,
			BelowReorder:  p.ReorderLevel > 0 && p.StockQuantity <= p.ReorderLevel,
		})
		report.TotalValue = report.TotalValue.Add(value)
	}
	return report, nil
}

// LowStock 低于补货点的在售产品
func (s *ReportService) LowStock(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.BelowReorderLevel(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock products: %w", err)
	}
	return products, nil
}

// MovementSummary 某产品在时间区间内的出入库汇总
type MovementSummary struct {
	ProductID      string     `json:"product_id"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	OpeningBalance int64      `json:"opening_balance"`
	TotalReceipts  int64      `json:"total_receipts"`
	TotalIssues    int64      `json:"total_issues"`
	NetAdjustments int64      `json:"net_adjustments"`
	ClosingBalance int64      `json:"closing_balance"`
}

// Movement 出入库汇总：期初 = 区间起点前全部流水的净额，期末 = 期初 + 区间净额
func (s *ReportService) Movement(ctx context.Context, productID string, from, to *time.Time) (*MovementSummary, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("Product", productID)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	summary := &MovementSummary{ProductID: productID, StartDate: from, EndDate: to}

	if from != nil {
		before := from.Add(-time.Nanosecond)
		opening, err := s.netMovement(ctx, productID, nil, &before)
		if err != nil {
			return nil, err
		}
		summary.OpeningBalance = opening
	}

	receipts, err := s.stockRepo.SumMoves(ctx, productID, entity.MoveReceipt, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum receipts: %w", err)
	}
	issues, err := s.stockRepo.SumMoves(ctx, productID, entity.MoveIssue, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum issues: %w", err)
	}
	adjustments, err := s.stockRepo.SumMoves(ctx, productID, entity.MoveAdjustment, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum adjustments: %w", err)
	}

	summary.TotalReceipts = receipts
	summary.TotalIssues = issues
	summary.NetAdjustments = adjustments
	summary.ClosingBalance = summary.OpeningBalance + receipts - issues + adjustments
	return summary, nil
}

func (s *ReportService) netMovement(ctx context.Context, productID string, from, to *time.Time) (int64, error) {
	receipts, err := s.stockRepo.SumMoves(ctx, productID, entity.MoveReceipt, from, to)
	if err != nil {
		return 0, fmt.Errorf("sum receipts: %w", err)
	}
	issues, err := s.stockRepo.SumMoves(ctx, productID, entity.MoveIssue, from, to)
	if err != nil {
		return 0, fmt.Errorf("sum issues: %w", err)
	}
	adjustments, err := s.stockRepo.SumMoves(ctx, productID, entity.MoveAdjustment, from, to)
	if err != nil {
		return 0, fmt.Errorf("sum adjustments: %w", err)
	}
	return receipts - issues + adjustments, nil
}

// ExportInventoryXLSX 导出库存估值Excel
func (s *ReportService) ExportInventoryXLSX(ctx context.Context) ([]byte, error) {
	report, err := s.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inventory"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headers := []string{"SKU", "Name", "Category", "Unit", "Quantity", "Unit Cost", "Total Value", "Below Reorder"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range report.Rows {
		values := []any{
			row.SKU,
			row.Name,
			row.Category,
			row.UnitOfMeasure,
			row.StockQuantity,
			row.UnitCost.InexactFloat64(),
			row.TotalValue.InexactFloat64(),
			row.BelowReorder,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row: %w", err)
			}
		}
	}

	totalCell, _ := excelize.CoordinatesToCellName(7, len(report.Rows)+2)
	labelCell, _ := excelize.CoordinatesToCellName(6, len(report.Rows)+2)
	if err := f.SetCellValue(sheet, labelCell, "Total"); err != nil {
		return nil, fmt.Errorf("write total label: %w", err)
	}
	if err := f.SetCellValue(sheet, totalCell, report.TotalValue.InexactFloat64()); err != nil {
		return nil, fmt.Errorf("write total value: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
