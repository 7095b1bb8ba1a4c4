package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nao1215/hotelops/internal/export"
	"github.com/nao1215/hotelops/internal/hotel"
	"github.com/nao1215/hotelops/pkg/apiclient"
)

// runReport はレポートを取得する。-xlsxを指定した場合は表の部分をワークブックとして保存する。
func runReport(ctx context.Context, a *app, args []string) error {
	subs := []string{"daily", "monthly", "yearly", "employee"}
	if len(args) < 1 {
		return subcommandError("report", subs...)
	}

	now := time.Now()
	fs := a.newFlagSet("report " + args[0])
	xlsx := fs.String("xlsx", "", "ワークブックの保存先（省略時はJSONを出力）")

	var (
		env   apiclient.Envelope
		err   error
		title string
		path  []string
	)
	switch args[0] {
	case "daily":
		date := fs.String("date", today(), "対象日（YYYY-MM-DD）")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		env, err = a.svc.DailyReport(ctx, *date)
		title = "Daily Sales Report - " + *date
		path = []string{"report", "employees"}
	case "monthly":
		year := fs.Int("year", now.Year(), "年")
		month := fs.Int("month", int(now.Month()), "月")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		env, err = a.svc.MonthlyReport(ctx, *year, *month)
		title = fmt.Sprintf("Monthly Sales Report - %d/%02d", *year, *month)
		path = []string{"report", "employees"}
	case "yearly":
		year := fs.Int("year", now.Year(), "年")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		env, err = a.svc.YearlyReport(ctx, *year)
		title = fmt.Sprintf("Yearly Sales Report - %d", *year)
		path = []string{"report", "monthly_breakdown"}
	case "employee":
		id := fs.Int64("id", 0, "担当者のID")
		period := fs.String("period", "monthly", "集計期間")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "id"); err != nil {
			return err
		}
		env, err = a.svc.EmployeeReport(ctx, *id, *period)
		title = fmt.Sprintf("Employee Performance Report - %d", *id)
		path = []string{"report", "daily_performance"}
	default:
		return subcommandError("report", subs...)
	}
	if err != nil {
		return err
	}

	if *xlsx == "" {
		return printJSON(a.stdout, env)
	}
	if err := writeWorkbookFile(*xlsx, title, export.Rows(env, path...)); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s に保存しました\n", *xlsx)
	return nil
}

func writeWorkbookFile(name, title string, rows []map[string]any) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("ファイルの作成に失敗: %w", err)
	}
	if err := export.WriteWorkbook(f, title, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// runExport はバックエンドが生成したレポートファイルをダウンロードする。
func runExport(ctx context.Context, a *app, args []string) error {
	subs := []string{"daily", "monthly"}
	if len(args) < 1 {
		return subcommandError("export", subs...)
	}

	now := time.Now()
	fs := a.newFlagSet("export " + args[0])
	formatFlag := fs.String("format", string(hotel.FormatExcel), "出力形式（excel, pdf）")

	var target string
	switch args[0] {
	case "daily":
		date := fs.String("date", today(), "対象日（YYYY-MM-DD）")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		format, err := hotel.ParseExportFormat(*formatFlag)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		target = a.svc.ExportDailyReport(ctx, *date, format)
	case "monthly":
		year := fs.Int("year", now.Year(), "年")
		month := fs.Int("month", int(now.Month()), "月")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		format, err := hotel.ParseExportFormat(*formatFlag)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		target = a.svc.ExportMonthlyReport(ctx, *year, *month, format)
	default:
		return subcommandError("export", subs...)
	}

	file, err := a.nav.result()
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	fmt.Fprintf(a.stdout, "%s に保存しました\n", file)
	return nil
}
