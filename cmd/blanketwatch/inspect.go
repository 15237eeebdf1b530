package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"BlanketWatch/internal/memo"
	"BlanketWatch/internal/model"
	"BlanketWatch/internal/pipeline"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	highStyle   = cellStyle.Foreground(lipgloss.Color("9"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the indicator table for active contracts without writing or sending anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		r, err := buildRunner(cfg, pipeline.Options{DryRun: true}, false, logger)
		if err != nil {
			return err
		}
		ev, err := r.Evaluate(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Active contracts as of %s (%d loaded)",
			ev.Now.Format("2006-01-02"), ev.Loaded)))
		fmt.Fprintln(out, indicatorTable(ev.Result.Evaluated))
		if len(ev.Result.Rejected) > 0 {
			fmt.Fprintln(out, titleStyle.Render("Rejected"))
			for _, de := range ev.Result.Rejected {
				fmt.Fprintf(out, "  %v\n", de)
			}
		}
		return nil
	},
}

func indicatorTable(evaluated []model.EvaluatedContract) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PO", "Division", "Limit", "Spent", "% Spent", "Left", "Passed", "Desired %", "Burn %", "Status", "Watch")

	for _, ec := range evaluated {
		t.Row(
			ec.ID,
			ec.Division,
			memo.USD(ec.SpendingLimit),
			memo.USD(ec.AmountSpent),
			strconv.FormatFloat(ec.Indicators.PctSpent, 'f', 1, 64),
			strconv.Itoa(ec.Indicators.MonthsLeft),
			strconv.Itoa(ec.Indicators.MonthsPassed),
			strconv.FormatFloat(ec.Indicators.DesiredBurnRate, 'f', 2, 64),
			strconv.FormatFloat(ec.Indicators.BurnRate, 'f', 2, 64),
			string(ec.Indicators.BurnStatus),
			string(ec.Indicators.WatchFlag),
		)
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		return rowStyle(evaluated, row)
	})
	return t
}

// rowStyle picks the style for a table row. Data rows are 0-based; the header is table.HeaderRow.
func rowStyle(evaluated []model.EvaluatedContract, row int) lipgloss.Style {
	switch {
	case row == table.HeaderRow:
		return headerStyle
	case row >= 0 && row < len(evaluated) && evaluated[row].Indicators.BurnStatus == model.BurnHigh:
		return highStyle
	default:
		return cellStyle
	}
}
