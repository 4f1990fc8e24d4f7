package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/getevo/evo/v2/lib/args"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
)

// CreateAdminUser provisions an administrator account from command line
// flags. Invoked with:
//
//	./capacity-backend --create-admin -email admin@example.com -password secret -name Admin
func CreateAdminUser() {
	email := strings.TrimSpace(strings.ToLower(args.Get("-email")))
	password := args.Get("-password")
	name := args.Get("-name")

	if email == "" || password == "" {
		fmt.Println("Usage: --create-admin -email <email> -password <password> [-name <name>]")
		os.Exit(1)
	}
	if len(password) < 8 {
		fmt.Println("Password must be at least 8 characters")
		os.Exit(1)
	}
	if name == "" {
		name = "Administrator"
	}

	var existing User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		fmt.Printf("User %s already exists\n", email)
		os.Exit(1)
	}

	user := User{
		Name:       name,
		Email:      email,
		Type:       UserTypeAdministrator,
		Department: UserDepartmentOther,
		Status:     UserStatusActive,
	}
	if err := user.SetPassword(password); err != nil {
		log.Fatal("Failed to hash password: %v", err)
	}

	if err := db.Create(&user).Error; err != nil {
		log.Fatal("Failed to create admin user: %v", err)
	}

	fmt.Printf("Administrator %s created (%s)\n", email, user.UserID)
	os.Exit(0)
}
