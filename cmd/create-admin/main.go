package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/stemsi/portal-backend/internal/config"
	"github.com/stemsi/portal-backend/internal/database"
	"github.com/stemsi/portal-backend/internal/logger"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stemsi/portal-backend/internal/service"
	"github.com/stemsi/portal-backend/internal/validator"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

const defaultRole = "superadmin"

// adminInput collects the bootstrap account. The role is created when missing
// and is always granted every permission.
type adminInput struct {
	Name     string `json:"name" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     string `json:"role" binding:"required,min=2,max=64"`
}

func main() {
	var in adminInput
	flag.StringVar(&in.Name, "name", "", "Admin display name (prompted when empty)")
	flag.StringVar(&in.Email, "email", "", "Admin email (prompted when empty)")
	flag.StringVar(&in.Role, "role", "", "Role name, created with every permission if missing")
	flag.Parse()
	in.Password = os.Getenv("ADMIN_PASSWORD")

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	validator.Setup()

	if err := promptMissing(&in); err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}
	if fields := validator.Struct(&in); fields != nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", k, fields[k])
		}
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	adminService := service.NewAdminService(
		repository.NewAdminRepository(pool),
		repository.NewRoleRepository(pool),
	)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	admin := &model.Admin{
		Email:        strings.ToLower(in.Email),
		Name:         in.Name,
		PasswordHash: string(hash),
	}
	if err := adminService.Bootstrap(ctx, in.Role, admin); err != nil {
		log.Fatal().Err(err).Str("email", admin.Email).Msg("Failed to create admin")
	}

	log.Info().
		Int("admin_id", admin.ID).
		Str("email", admin.Email).
		Str("role", admin.RoleName).
		Msg("Admin created")
}

// promptMissing asks on the terminal for every value not given by flag or env.
func promptMissing(in *adminInput) error {
	reader := bufio.NewReader(os.Stdin)
	ask := func(label string, dst *string, fallback string) error {
		if *dst != "" {
			return nil
		}
		if fallback != "" {
			fmt.Printf("%s (default %s): ", label, fallback)
		} else {
			fmt.Printf("%s: ", label)
		}
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		*dst = strings.TrimSpace(line)
		if *dst == "" {
			*dst = fallback
		}
		return nil
	}

	if err := ask("Name", &in.Name, ""); err != nil {
		return err
	}
	if err := ask("Email", &in.Email, ""); err != nil {
		return err
	}
	if in.Password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		in.Password = string(raw)
	}
	return ask("Role", &in.Role, defaultRole)
}
