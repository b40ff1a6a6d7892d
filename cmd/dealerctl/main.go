// dealerctl is the tenant administration tool: it creates dealerships and
// their admin users directly against the database, outside the HTTP app.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// same env conventions as the server
	_ = godotenv.Load()
	config.InitLogger()
	config.ConnectDB()

	var err error
	switch os.Args[1] {
	case "create-tenant":
		err = createTenant(os.Args[2:])
	case "list-tenants":
		err = listTenants()
	case "tenant-urls":
		err = tenantURLs()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`dealerctl - dealership tenant administration

Usage:
  dealerctl create-tenant -name NAME -code CODE -email EMAIL [options]
  dealerctl list-tenants
  dealerctl tenant-urls

create-tenant options:
  -name            dealership name (required)
  -code            tenant code, lowercase slug (required)
  -email           contact email (required)
  -phone           contact phone
  -currency        3-letter currency code (default KES)
  -admin-email     admin login (defaults to the contact email)
  -admin-password  admin password (generated when omitted)`)
}

func createTenant(args []string) error {
	fs := flag.NewFlagSet("create-tenant", flag.ExitOnError)
	name := fs.String("name", "", "dealership name")
	code := fs.String("code", "", "tenant code")
	email := fs.String("email", "", "contact email")
	phone := fs.String("phone", "", "contact phone")
	currency := fs.String("currency", "KES", "currency code")
	adminEmail := fs.String("admin-email", "", "admin login email")
	adminPassword := fs.String("admin-password", "", "admin password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *code == "" || *email == "" {
		return errors.New("-name, -code and -email are required")
	}
	if !utils.ValidateEmail(*email) {
		return fmt.Errorf("invalid email %q", *email)
	}

	slug := utils.Slugify(*code)
	if slug == "" {
		return fmt.Errorf("code %q reduces to an empty slug", *code)
	}

	var existing models.Dealership
	err := config.DB.Where("code = ?", slug).First(&existing).Error
	if err == nil {
		return fmt.Errorf("tenant code %q is already taken", slug)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	login := *adminEmail
	if login == "" {
		login = *email
	}
	password := *adminPassword
	generated := false
	if password == "" {
		password = utils.GenerateRandomString(14)
		generated = true
	}

	dealership := models.Dealership{
		ID:       uuid.New(),
		Name:     *name,
		Code:     slug,
		Email:    *email,
		Phone:    *phone,
		Currency: strings.ToUpper(*currency),
	}
	admin := models.User{
		DealershipID: dealership.ID,
		Name:         *name + " Admin",
		Email:        strings.ToLower(login),
		Phone:        *phone,
		Password:     password, // hashed in BeforeCreate
		Role:         models.RoleAdmin,
	}
	settings := models.DefaultSettings(dealership.ID)
	settings.Currency = dealership.Currency

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dealership).Error; err != nil {
			return err
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return tx.Create(&settings).Error
	})
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	fmt.Printf("Created tenant %q (%s)\n", dealership.Name, dealership.Code)
	fmt.Printf("Access URL:   %s\n", accessURL(dealership.Code))
	fmt.Printf("Admin login:  %s\n", admin.Email)
	if generated {
		fmt.Printf("Admin password (store it now, shown once): %s\n", password)
	}
	return nil
}

func listTenants() error {
	var dealerships []models.Dealership
	if err := config.DB.Order("created_at").Find(&dealerships).Error; err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tEMAIL\tACTIVE\tCREATED")
	for _, d := range dealerships {
		active := "yes"
		if !d.IsActive {
			active = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.Code, d.Name, d.Email, active, d.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func tenantURLs() error {
	var dealerships []models.Dealership
	if err := config.DB.Where("is_active = ?", true).
		Order("code").Find(&dealerships).Error; err != nil {
		return err
	}

	for _, d := range dealerships {
		fmt.Printf("%-20s %s\n", d.Code, accessURL(d.Code))
	}
	return nil
}

func accessURL(code string) string {
	base := config.GetEnv("APP_BASE_URL", "dealerpro.local")
	return fmt.Sprintf("https://%s.%s", code, base)
}
