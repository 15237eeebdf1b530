package memo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"BlanketWatch/internal/model"
)

// Renderer writes change-order memos as PDF files.
type Renderer struct {
	Divisor    int
	Letterhead Letterhead
	Logger     *zap.Logger
}

// NewRenderer creates a Renderer. A non-positive divisor falls back to DefaultDivisor.
func NewRenderer(divisor int, lh Letterhead, logger *zap.Logger) *Renderer {
	if divisor <= 0 {
		divisor = DefaultDivisor
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{Divisor: divisor, Letterhead: lh, Logger: logger}
}

// Render writes the memo for ec into dir and returns its path.
func (r *Renderer) Render(dir string, ec model.EvaluatedContract, runDate time.Time) (string, error) {
	req, err := NewRequest(ec, r.Divisor)
	if err != nil {
		return "", fmt.Errorf("memo for %s: %w", ec.ID, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create memo dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lh := r.Letterhead
	header := r.usableImage(lh.HeaderImage)
	signature := r.usableImage(lh.SignatureImage)

	pdf.SetHeaderFunc(func() {
		if header != "" {
			pdf.ImageOptions(header, 10, 6, 190, 40, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
			pdf.SetY(48)
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()

	label := func(text string) {
		pdf.SetFont("Times", "B", 16)
		pdf.SetTextColor(153, 153, 0)
		pdf.CellFormat(18, 6, text, "", 0, "L", false, 0, "")
		pdf.SetFont("Times", "", 12)
		pdf.SetTextColor(0, 0, 0)
	}

	label("TO")
	pdf.CellFormat(110, 6, tr(TitleCase(lh.Recipient)), "", 0, "L", false, 0, "")
	label("DATE")
	pdf.CellFormat(0, 6, runDate.Format("January 02, 2006"), "", 1, "L", false, 0, "")
	for _, line := range lh.Address {
		pdf.CellFormat(18, 5, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	pdf.MultiCell(0, 5, tr(Body(req, lh)), "", "L", false)
	pdf.Ln(10)

	if signature != "" {
		pdf.ImageOptions(signature, pdf.GetX(), pdf.GetY(), 50, 0, true, fpdf.ImageOptions{ReadDpi: true}, 0, "")
	}
	pdf.CellFormat(0, 5, tr(lh.SignatureTitle), "", 1, "L", false, 0, "")

	path := filepath.Join(dir, FileName(ec.ID, runDate))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write memo %s: %w", path, err)
	}
	r.Logger.Info("change-order memo written",
		zap.String("contract_id", ec.ID),
		zap.String("division", ec.Division),
		zap.String("artifact", path),
		zap.String("requested", USD(req.RequestedAmount)))
	return path, nil
}

// usableImage returns path when it points at a readable file, logging and skipping otherwise.
func (r *Renderer) usableImage(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		r.Logger.Warn("memo image unavailable", zap.String("path", path), zap.Error(err))
		return ""
	}
	return path
}
