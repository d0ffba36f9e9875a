// Command roadmatectl выполняет разовые административные операции: администратор,
// подтверждение провайдера, справочник категорий, настройки сайта.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Leganyst/roadmate/internal/app"
	"github.com/Leganyst/roadmate/internal/config"
	"github.com/Leganyst/roadmate/internal/db"
	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/service"
)

const usage = `usage: roadmatectl <command> [flags] [args]

commands:
  create-admin [-username admin] [-email admin@roadmate.com] [-password ...]
  fix-admin                      same as create-admin
  approve-provider <username>
  seed-categories
  set-setting [-description ...] [-inactive] <key> <value>
`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	config.LoadEnvFile()
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("load db config: %v", err)
	}
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	// Сессии утилите не нужны.
	a := app.New(gormDB, app.Settings{})
	ctx := context.Background()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "create-admin", "fix-admin":
		err = createAdmin(ctx, a, args)
	case "approve-provider":
		err = approveProvider(ctx, a, args)
	case "seed-categories":
		err = seedCategories(ctx, a)
	case "set-setting":
		err = setSetting(ctx, a, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func createAdmin(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	username := fs.String("username", envOr("ADMIN_USERNAME", "admin"), "admin username")
	email := fs.String("email", envOr("ADMIN_EMAIL", "admin@roadmate.com"), "admin email")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (default $ADMIN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		return fmt.Errorf("password is required: pass -password or set ADMIN_PASSWORD")
	}

	u, created, err := a.Provisioning.EnsureAdmin(ctx, *username, *email, *password)
	if err != nil {
		return err
	}
	if created {
		log.Printf("admin user %q created", u.Username)
	} else {
		log.Printf("admin user %q updated: password reset, staff and superuser enabled", u.Username)
	}
	return nil
}

func approveProvider(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one username")
	}
	p, err := a.Providers.ApproveByUsername(ctx, args[0])
	if err != nil {
		return err
	}
	log.Printf("provider %q (%s) approved and activated", p.CompanyName, args[0])
	return nil
}

func seedCategories(ctx context.Context, a *app.App) error {
	n, err := a.Provisioning.SeedCategories(ctx)
	if err != nil {
		return err
	}
	log.Printf("%d categories created, %d already existed", n, len(service.DefaultCategories)-n)
	return nil
}

func setSetting(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("set-setting", flag.ExitOnError)
	description := fs.String("description", "", "setting description")
	inactive := fs.Bool("inactive", false, "store the setting but hide it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("expected <key> <value>")
	}
	key, value := fs.Arg(0), strings.Join(fs.Args()[1:], " ")

	if _, err := a.Settings.Set(ctx, key, value, *description); err != nil {
		return err
	}
	if *inactive {
		if err := a.Settings.Deactivate(ctx, key); err != nil {
			return err
		}
	}
	log.Printf("setting %q saved", key)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
