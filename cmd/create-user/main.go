package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/formfill-backend/internal/config"
	"github.com/stemsi/formfill-backend/internal/database"
	"github.com/stemsi/formfill-backend/internal/logger"
	"github.com/stemsi/formfill-backend/internal/model"
	"github.com/stemsi/formfill-backend/internal/repository"
	"github.com/stemsi/formfill-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	reset := flag.Bool("reset", false, "Reset the password of an existing user instead of creating one")
	admin := flag.Bool("admin", false, "Give the new user the admin role")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, "formfill-create-user")

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	authService := service.NewAuthService(cfg, userRepo)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	if *reset {
		fmt.Println("=== Reset User Password ===")
	} else if *admin {
		fmt.Println("=== Create New Admin ===")
	} else {
		fmt.Println("=== Create New User ===")
	}

	// Email
	email := prompt(reader, "Enter Email: ")
	if email == "" || !strings.Contains(email, "@") {
		fmt.Println("Error: a valid email is required")
		return
	}

	// Name
	var name string
	if !*reset {
		name = prompt(reader, "Enter Full Name: ")
		if len([]rune(name)) < 2 {
			fmt.Println("Error: Full name is required")
			return
		}
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println()
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	if *reset {
		u, err := userRepo.GetByEmail(ctx, email)
		if errors.Is(err, pgx.ErrNoRows) {
			fmt.Printf("Error: no user with email %s\n", email)
			return
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to look up user")
		}
		hash, err := authService.HashPassword(password)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}
		if err := userRepo.UpdatePassword(ctx, u.ID, hash); err != nil {
			log.Fatal().Err(err).Msg("Failed to update password")
		}
		fmt.Printf("\nSuccess! Password for '%s' updated.\n", u.Email)
		return
	}

	res, err := authService.Register(ctx, model.RegisterRequest{
		Email:    email,
		FullName: name,
		Password: password,
	})
	if errors.Is(err, service.ErrEmailTaken) {
		fmt.Printf("Error: %s is already registered (use -reset to change the password)\n", email)
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	role := model.RoleUser
	if *admin {
		if _, err := userRepo.UpdateRole(ctx, res.User.ID, model.RoleAdmin); err != nil {
			log.Fatal().Err(err).Msg("Failed to grant admin role")
		}
		role = model.RoleAdmin
	}

	fmt.Printf("\nSuccess! User '%s' (%s) created with ID: %d, role: %s\n", res.User.FullName, res.User.Email, res.User.ID, role)
	fmt.Printf("Set TELEGRAM_HISTORY_USER_ID=%d to store bot answers under this account.\n", res.User.ID)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

