package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"anggaran/internal/budget"
	"anggaran/internal/cli"
	"anggaran/internal/core"
	"anggaran/internal/kitchen"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "anggaran-cli",
		Short:         "Plan the household budget from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPlanCmd(), newMenuCmd())
	return root
}

func newPlanCmd() *cobra.Command {
	var file, policyFile, date string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Allocate a month from a household snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if date != "" {
				d, err := core.ParseDate(date)
				if err != nil {
					return err
				}
				now = d.Time
			}

			policy := budget.DefaultPolicy()
			if policyFile != "" {
				p, err := budget.LoadPolicyFile(policyFile)
				if err != nil {
					return err
				}
				policy = p
			}
			allocator, err := budget.NewAllocator(policy)
			if err != nil {
				return err
			}

			h, err := cli.LoadSnapshot(file)
			if err != nil {
				return err
			}
			plan := h.Plan(allocator, now)
			if plan == nil {
				pterm.Warning.Println("Belum ada pemasukan, tidak ada anggaran untuk dihitung.")
				return nil
			}
			return renderPlan(plan, h.NetWorth(), now)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "household.yaml", "household snapshot (YAML or TOML)")
	cmd.Flags().StringVarP(&policyFile, "policy", "p", "", "budget policy file overriding the defaults")
	cmd.Flags().StringVarP(&date, "date", "d", "", "plan as of this day (YYYY-MM-DD), default today")
	return cmd
}

func newMenuCmd() *cobra.Command {
	var day int
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Show a day of the ten-day menu rotation",
		RunE: func(cmd *cobra.Command, args []string) error {
			index := kitchen.CycleDay(time.Now())
			if day > 0 {
				index = day - 1
			}
			return renderMeal(kitchen.MealAt(index))
		},
	}
	cmd.Flags().IntVar(&day, "day", 0, "rotation day 1-10, default today")
	return cmd
}

func renderPlan(plan *budget.Plan, netWorth int64, now time.Time) error {
	s := plan.Summary
	pterm.DefaultHeader.Println("Anggaran " + now.Format("January 2006"))

	summary := pterm.TableData{
		{"Pemasukan", core.FormatRupiah(s.Income)},
		{"Total Kebutuhan", core.FormatRupiah(s.TotalNeeds)},
		{"Sisa", core.FormatRupiah(s.Balance)},
		{"Cicilan", core.FormatRupiah(plan.TotalDebtObligation)},
		{"Dana Cadangan / bulan", core.FormatRupiah(plan.TotalSinkingFundMonthly)},
		{"Kekayaan Bersih", core.FormatRupiah(netWorth)},
	}
	if err := pterm.DefaultTable.WithData(summary).Render(); err != nil {
		return err
	}
	if s.IsDanger {
		pterm.Error.Println(s.Message)
	} else {
		pterm.Success.Println(s.Message)
	}

	rows := pterm.TableData{{"Kategori", "Alokasi", "Terpakai", "Sisa", "Status", "Rumus"}}
	for _, c := range core.Categories {
		note := plan.Notes[string(c)]
		rows = append(rows, []string{
			c.Label(),
			core.FormatRupiah(plan.Allocations[c]),
			core.FormatRupiah(plan.Spending[c]),
			core.FormatRupiah(plan.Allocations[c] - plan.Spending[c]),
			string(note.Status),
			note.Formula,
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}

	if len(plan.SinkingFundAllocations) > 0 {
		names := make([]string, 0, len(plan.SinkingFundAllocations))
		for id := range plan.SinkingFundAllocations {
			names = append(names, id)
		}
		sort.Strings(names)

		funds := pterm.TableData{{"Dana Cadangan", "Per Bulan", "Sisa Bulan", "Target"}}
		for _, id := range names {
			f := plan.SinkingFundAllocations[id]
			funds = append(funds, []string{f.Name, core.FormatRupiah(f.Amount), strconv.Itoa(f.MonthsLeft), core.FormatRupiah(f.Target)})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(funds).Render(); err != nil {
			return err
		}
	}

	if len(plan.UnmatchedCategories) > 0 {
		pterm.Warning.Printfln("Kategori tidak dikenal masuk Lainnya: %v", plan.UnmatchedCategories)
	}
	for _, a := range s.Advice {
		pterm.Info.Printfln("%s: %s (%s)", a.Title, core.FormatRupiah(a.Amount), a.Note)
	}
	return nil
}

func renderMeal(m kitchen.Meal) error {
	pterm.DefaultHeader.Println(fmt.Sprintf("Menu Hari ke-%d", m.Day))
	data := pterm.TableData{
		{"Pagi", m.Morning},
		{"Siang", m.Noon},
		{"Malam", m.Night},
		{"Belanja", core.FormatRupiah(m.Total)},
	}
	if err := pterm.DefaultTable.WithData(data).Render(); err != nil {
		return err
	}
	if m.Leftover() {
		pterm.Info.Println("Hari ini memakai sisa masakan kemarin.")
	}
	return nil
}
