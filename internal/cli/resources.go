package cli

import (
	"context"
	"flag"
	"time"

	"github.com/nao1215/hotelops/internal/hotel"
	"github.com/nao1215/hotelops/pkg/apiclient"
)

// runDashboard は概要を表示する。-trendと-leadersが正の場合は売上推移とランキングも取得する。
func runDashboard(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("dashboard")
	trendDays := fs.Int("trend", 0, "売上推移を取得する日数（0で取得しない）")
	leaderDays := fs.Int("leaders", 0, "ランキングの集計日数（0で取得しない）")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	overview, err := a.svc.Overview(ctx)
	if err != nil {
		return err
	}
	out := map[string]any{"overview": overview["overview"]}

	if *trendDays > 0 {
		trend, err := a.svc.SalesTrend(ctx, *trendDays)
		if err != nil {
			return err
		}
		out["trend"] = trend["trend"]
	}
	if *leaderDays > 0 {
		board, err := a.svc.EmployeeLeaderboard(ctx, *leaderDays)
		if err != nil {
			return err
		}
		out["leaderboard"] = board["leaderboard"]
	}
	return printJSON(a.stdout, out)
}

func runSales(ctx context.Context, a *app, args []string) error {
	subs := []string{"record", "daily", "monthly", "summary", "performance", "categories", "methods"}
	if len(args) < 1 {
		return subcommandError("sales", subs...)
	}

	fs := a.newFlagSet("sales " + args[0])
	var (
		env apiclient.Envelope
		err error
	)
	switch args[0] {
	case "record":
		sale := hotel.Sale{}
		fs.Int64Var(&sale.EmployeeID, "employee", 0, "担当者のID（Manager以上のみ）")
		fs.StringVar(&sale.SaleDate, "date", today(), "売上日（YYYY-MM-DD）")
		fs.StringVar(&sale.Category, "category", "", "売上区分")
		fs.Float64Var(&sale.Amount, "amount", 0, "金額")
		fs.StringVar(&sale.PaymentMethod, "payment", "", "支払方法")
		fs.StringVar(&sale.Description, "description", "", "内容")
		fs.StringVar(&sale.TransactionID, "txn", "", "取引ID")
		fs.StringVar(&sale.Notes, "notes", "", "備考")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "category", "amount"); err != nil {
			return err
		}
		env, err = a.svc.RecordSale(ctx, sale)
	case "daily":
		employee := fs.Int64("employee", 0, "担当者のID")
		date := fs.String("date", today(), "対象日（YYYY-MM-DD）")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "employee"); err != nil {
			return err
		}
		env, err = a.svc.DailySales(ctx, *employee, *date)
	case "monthly":
		now := time.Now()
		year := fs.Int("year", now.Year(), "年")
		month := fs.Int("month", int(now.Month()), "月")
		employee := fs.Int64("employee", 0, "担当者のID（0で全員）")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		env, err = a.svc.MonthlySales(ctx, *year, *month, *employee)
	case "summary":
		date := fs.String("date", today(), "対象日（YYYY-MM-DD）")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		env, err = a.svc.DailySummary(ctx, *date)
	case "performance":
		employee := fs.Int64("employee", 0, "担当者のID")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "employee"); err != nil {
			return err
		}
		env, err = a.svc.EmployeePerformance(ctx, *employee)
	case "categories":
		env, err = a.svc.SaleCategories(ctx)
	case "methods":
		env, err = a.svc.PaymentMethods(ctx)
	default:
		return subcommandError("sales", subs...)
	}
	if err != nil {
		return err
	}
	return printJSON(a.stdout, env)
}

func runRooms(ctx context.Context, a *app, args []string) error {
	subs := []string{"list", "available", "active", "occupancy", "create", "checkin", "checkout"}
	if len(args) < 1 {
		return subcommandError("rooms", subs...)
	}

	fs := a.newFlagSet("rooms " + args[0])
	var (
		env apiclient.Envelope
		err error
	)
	switch args[0] {
	case "list":
		env, err = a.svc.Rooms(ctx)
	case "available":
		env, err = a.svc.AvailableRooms(ctx)
	case "active":
		env, err = a.svc.ActiveCheckIns(ctx)
	case "occupancy":
		env, err = a.svc.OccupancyReport(ctx)
	case "create":
		in := hotel.RoomInput{}
		fs.StringVar(&in.RoomNumber, "number", "", "部屋番号")
		fs.StringVar(&in.RoomType, "type", "", "部屋タイプ")
		fs.IntVar(&in.Capacity, "capacity", 1, "定員")
		fs.Float64Var(&in.PricePerNight, "price", 0, "1泊の料金")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "number", "type", "price"); err != nil {
			return err
		}
		env, err = a.svc.CreateRoom(ctx, in)
	case "checkin":
		room := fs.Int64("room", 0, "客室のID")
		in := hotel.CheckInInput{}
		fs.StringVar(&in.GuestName, "guest", "", "宿泊者名")
		fs.StringVar(&in.CheckInDate, "in", today(), "チェックイン日（YYYY-MM-DD）")
		fs.StringVar(&in.CheckOutDate, "out", "", "チェックアウト予定日（YYYY-MM-DD）")
		fs.IntVar(&in.NumberOfGuests, "guests", 1, "宿泊人数")
		fs.StringVar(&in.GuestEmail, "email", "", "宿泊者のメールアドレス")
		fs.StringVar(&in.GuestPhone, "phone", "", "宿泊者の電話番号")
		fs.StringVar(&in.Notes, "notes", "", "備考")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "room", "guest", "out"); err != nil {
			return err
		}
		env, err = a.svc.CheckIn(ctx, *room, in)
	case "checkout":
		room := fs.Int64("room", 0, "客室のID")
		checkIn := fs.Int64("checkin", 0, "チェックインのID")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "room", "checkin"); err != nil {
			return err
		}
		env, err = a.svc.CheckOut(ctx, *room, *checkIn)
	default:
		return subcommandError("rooms", subs...)
	}
	if err != nil {
		return err
	}
	return printJSON(a.stdout, env)
}

func runEmployees(ctx context.Context, a *app, args []string) error {
	subs := []string{"list", "department", "get", "create", "update", "deactivate"}
	if len(args) < 1 {
		return subcommandError("employees", subs...)
	}

	fs := a.newFlagSet("employees " + args[0])
	var (
		env apiclient.Envelope
		err error
	)
	switch args[0] {
	case "list":
		role := fs.String("role", "", "役割で絞り込む（Employee, Manager, Admin）")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		env, err = a.svc.Employees(ctx, *role)
	case "department":
		name := fs.String("name", "", "部署名")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "name"); err != nil {
			return err
		}
		env, err = a.svc.EmployeesByDepartment(ctx, *name)
	case "get":
		id := fs.Int64("id", 0, "従業員のID")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "id"); err != nil {
			return err
		}
		env, err = a.svc.Employee(ctx, *id)
	case "create":
		in := hotel.EmployeeInput{}
		fs.StringVar(&in.Username, "username", "", "ログイン名")
		fs.StringVar(&in.Password, "password", "", "パスワード")
		fs.StringVar(&in.Email, "email", "", "メールアドレス")
		fs.StringVar(&in.FullName, "name", "", "氏名")
		fs.StringVar(&in.Role, "role", "Employee", "役割")
		fs.StringVar(&in.Department, "department", "", "部署")
		fs.StringVar(&in.Phone, "phone", "", "電話番号")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "username", "password", "email", "name"); err != nil {
			return err
		}
		env, err = a.svc.CreateEmployee(ctx, in)
	case "update":
		id := fs.Int64("id", 0, "従業員のID")
		email := fs.String("email", "", "メールアドレス")
		name := fs.String("name", "", "氏名")
		department := fs.String("department", "", "部署")
		phone := fs.String("phone", "", "電話番号")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "id"); err != nil {
			return err
		}
		// 指定されたフラグのみ送る
		fields := map[string]any{}
		keys := map[string]string{"email": "email", "name": "full_name", "department": "department", "phone": "phone"}
		values := map[string]*string{"email": email, "name": name, "department": department, "phone": phone}
		fs.Visit(func(f *flag.Flag) {
			if key, ok := keys[f.Name]; ok {
				fields[key] = *values[f.Name]
			}
		})
		env, err = a.svc.UpdateEmployee(ctx, *id, fields)
	case "deactivate":
		id := fs.Int64("id", 0, "従業員のID")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if err := requireFlags(fs, "id"); err != nil {
			return err
		}
		env, err = a.svc.DeactivateEmployee(ctx, *id)
	default:
		return subcommandError("employees", subs...)
	}
	if err != nil {
		return err
	}
	return printJSON(a.stdout, env)
}
