package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"go.uber.org/zap"

	"github.com/noah-isme/leave-dashboard-api/internal/models"
	"github.com/noah-isme/leave-dashboard-api/pkg/export"
	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
)

type summaryBuilder interface {
	FullMonthlySummary(ctx context.Context, state LeaveFilterState) (*models.MonthlySummary, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportOptions tunes export behaviour.
type ExportOptions struct {
	// MaxRows caps the employees in one file; zero means unlimited.
	MaxRows int
	Title   string
}

// ExportService renders the monthly leave table as a downloadable file.
type ExportService struct {
	summaries summaryBuilder
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
	opts      ExportOptions
}

// NewExportService constructs an ExportService; nil renderers fall back to pkg/export.
func NewExportService(summaries summaryBuilder, opts ExportOptions, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter(Latinize)
	}
	if opts.Title == "" {
		opts.Title = "Leave summary"
	}
	return &ExportService{summaries: summaries, csv: csv, pdf: pdf, logger: logger, opts: opts}
}

// Export renders every row matching state, plus the totals row, in the requested format.
func (s *ExportService) Export(ctx context.Context, state LeaveFilterState, format models.ExportFormat) (*models.ExportFile, error) {
	if format != models.ExportFormatCSV && format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	summary, err := s.summaries.FullMonthlySummary(ctx, state)
	if err != nil {
		return nil, err
	}
	if s.opts.MaxRows > 0 && len(summary.List) > s.opts.MaxRows {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("export is limited to %d employees, narrow the filters", s.opts.MaxRows))
	}
	state = Normalize(state)

	var (
		data        []byte
		contentType string
	)
	switch format {
	case models.ExportFormatPDF:
		dataset := summaryDataset(summary, englishColumns(state.Unit))
		data, err = s.pdf.Render(dataset, fmt.Sprintf("%s %d", s.opts.Title, state.Year))
		contentType = "application/pdf"
	default:
		dataset := summaryDataset(summary, chineseColumns(state.Unit))
		data, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("leave summary exported",
		zap.Int("year", state.Year),
		zap.String("format", string(format)),
		zap.Int("rows", len(summary.List)),
	)
	return &models.ExportFile{
		Filename:    fmt.Sprintf("leave-summary-%d.%s", state.Year, format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// exportColumns names the name, department, twelve month and total columns in order.
type exportColumns struct {
	name, dept, total, footerName string
	months                        [12]string
	persons                       func(int) string
}

func chineseColumns(unit models.SummaryUnit) exportColumns {
	unitLabel := "天"
	if unit == models.UnitHour {
		unitLabel = "小时"
	}
	cols := exportColumns{
		name:       "员工姓名",
		dept:       "部门",
		total:      fmt.Sprintf("合计(%s)", unitLabel),
		footerName: "合计",
		persons:    func(n int) string { return fmt.Sprintf("%d人", n) },
	}
	for m := range cols.months {
		cols.months[m] = fmt.Sprintf("%d月", m+1)
	}
	return cols
}

var monthAbbrev = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func englishColumns(unit models.SummaryUnit) exportColumns {
	unitLabel := "days"
	if unit == models.UnitHour {
		unitLabel = "hours"
	}
	return exportColumns{
		name:       "Name",
		dept:       "Department",
		total:      fmt.Sprintf("Total (%s)", unitLabel),
		footerName: "Total",
		months:     monthAbbrev,
		persons:    func(n int) string { return fmt.Sprintf("%d people", n) },
	}
}

func summaryDataset(summary *models.MonthlySummary, cols exportColumns) export.Dataset {
	headers := make([]string, 0, 15)
	headers = append(headers, cols.name, cols.dept)
	headers = append(headers, cols.months[:]...)
	headers = append(headers, cols.total)

	dataset := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(summary.List))}
	for _, row := range summary.List {
		record := map[string]string{cols.name: row.Name, cols.dept: row.Dept, cols.total: formatFigure(row.Total)}
		for m, v := range row.Months {
			record[cols.months[m]] = formatCell(v)
		}
		dataset.Rows = append(dataset.Rows, record)
	}

	footer := map[string]string{
		cols.name:  cols.footerName,
		cols.dept:  cols.persons(summary.Summary.PersonCount),
		cols.total: formatFigure(summary.Summary.Total),
	}
	for m, v := range summary.Summary.Months {
		footer[cols.months[m]] = formatCell(v)
	}
	dataset.Footer = footer
	return dataset
}

// formatCell leaves empty months blank.
func formatCell(v float64) string {
	if v == 0 {
		return ""
	}
	return formatFigure(v)
}

func formatFigure(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

var latinArgs = func() pinyin.Args {
	args := pinyin.NewArgs()
	args.Fallback = func(r rune, _ pinyin.Args) []string {
		return []string{string(r)}
	}
	return args
}()

// Latinize spells Han characters in pinyin so text survives the PDF core fonts. Syllables are
// capitalised and space separated; other non-ASCII runes become '?'.
func Latinize(text string) string {
	var b strings.Builder
	prevHan := false
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			syllables := pinyin.LazyPinyin(string(r), latinArgs)
			if len(syllables) == 0 {
				b.WriteRune('?')
				continue
			}
			if b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
				b.WriteByte(' ')
			}
			b.WriteString(capitalize(syllables[0]))
			prevHan = true
			continue
		}
		if prevHan && !unicode.IsSpace(r) && !unicode.IsPunct(r) {
			b.WriteByte(' ')
		}
		prevHan = false
		if r > unicode.MaxASCII {
			b.WriteRune('?')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
