package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	loanService "github.com/cmlabs-hris/hris-payroll-go/internal/service/loan"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	statutoryService "github.com/cmlabs-hris/hris-payroll-go/internal/service/statutory"
	thrService "github.com/cmlabs-hris/hris-payroll-go/internal/service/thr"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	rulesets, err := config.LoadRulesets(cfg.Payroll.RulesetPath)
	if err != nil {
		logger.Error("failed to load statutory rulesets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	txManager := postgresql.NewTxManager(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	reimbursementRepo := postgresql.NewReimbursementRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	loanRepo := postgresql.NewLoanRepository(db)

	calculator := statutoryService.NewCalculator(rulesets)
	engine := payrollService.NewEngine(calculator, cfg.Payroll.Workers)
	summaries := attendanceService.NewSummaryService(attendanceRepo)
	loanSvc := loanService.NewLoanService(txManager, loanRepo, employeeRepo, cfg.Payroll.OverpaymentPolicy, logger)
	payrollSvc := payrollService.NewPayrollService(
		txManager,
		payrollRepo,
		reimbursementRepo,
		employeeRepo,
		loanRepo,
		loanSvc,
		summaries,
		engine,
		logger,
	)
	thrSvc := thrService.NewThrService(employeeRepo, payrollRepo)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Env:            cfg.App.Env,
			LogLevel:       cfg.LogLevel(),
			AllowedOrigins: cfg.App.CORSOrigins,
		},
		jwt.NewAuth(cfg.JWT.Secret),
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewStatutoryHandler(calculator),
		appHTTP.NewLoanHandler(loanSvc),
		appHTTP.NewThrHandler(thrSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server running", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}
