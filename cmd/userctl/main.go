package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	appidentity "github.com/gestion-compras/backend/internal/application/identity"
	"github.com/gestion-compras/backend/internal/domain/identity"
	"github.com/gestion-compras/backend/internal/infrastructure/config"
	"github.com/gestion-compras/backend/internal/infrastructure/logger"
	"github.com/gestion-compras/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		password string
		fullName string
		email    string
		rol      string
		logLevel string
	)

	flag.StringVar(&password, "password", "", "Password (read from stdin when empty)")
	flag.StringVar(&fullName, "nombre", "", "Full name of the user")
	flag.StringVar(&email, "email", "", "Email of the user")
	flag.StringVar(&rol, "rol", identity.RoleUser, "Role: admin or usuario")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command, username := args[0], args[1]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	users := appidentity.NewUserService(persistence.NewGormUserRepository(db.DB), log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch command {
	case "create":
		if password == "" {
			password = readPassword(log)
		}
		info, err := users.Create(ctx, appidentity.CreateUserInput{
			Username:       username,
			Password:       password,
			NombreCompleto: fullName,
			Email:          email,
			Rol:            rol,
		})
		if err != nil {
			log.Fatal("Failed to create user", zap.Error(err))
		}
		log.Info("User ready", zap.String("id", info.ID.String()), zap.String("rol", info.Rol))

	case "reset-password":
		if password == "" {
			password = readPassword(log)
		}
		if err := users.ResetPassword(ctx, username, password); err != nil {
			log.Fatal("Failed to reset password", zap.Error(err))
		}

	case "deactivate":
		if err := users.Deactivate(ctx, username); err != nil {
			log.Fatal("Failed to deactivate user", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func readPassword(log *zap.Logger) string {
	fmt.Print("Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.Fatal("Failed to read password", zap.Error(err))
	}
	return strings.TrimRight(line, "\r\n")
}

func printUsage() {
	fmt.Println(`gestion-compras user administration

Usage:
  userctl [flags] <command> <username>

Commands:
  create <username>          Create an active user
  reset-password <username>  Replace the password of a user
  deactivate <username>      Block a user from logging in

Flags:
  -password string   Password, read from stdin when empty
  -nombre string     Full name (create)
  -email string      Email (create)
  -rol string        admin or usuario (default: usuario)
  -log-level string  Log level: debug, info, warn, error (default: info)

Examples:
  userctl -rol admin -nombre "Administrador" create admin
  echo 'nueva-clave' | userctl reset-password admin`)
}
