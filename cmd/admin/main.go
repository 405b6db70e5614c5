// Package main provides role management utilities for Plume.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"plume/internal/config"
	"plume/internal/database"
	"plume/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <user_id> <role>   - Set a user's role (user, moderator, admin)")
		fmt.Println("  go run ./cmd/admin list-staff                 - List all moderators and admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "promote":
		if len(os.Args) < 4 {
			fmt.Println("Usage: go run ./cmd/admin promote <user_id> <role>")
			os.Exit(1)
		}
		setRole(db, os.Args[2], models.Role(os.Args[3]))

	case "list-staff":
		listStaff(db)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func setRole(db *gorm.DB, userID string, role models.Role) {
	switch role {
	case models.RoleUser, models.RoleModerator, models.RoleAdmin:
	default:
		log.Fatalf("Unknown role %q", role)
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("User %s not found", userID)
		}
		log.Fatalf("Failed to load user: %v", err)
	}

	if err := db.Model(&user).Update("role", role).Error; err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}
	fmt.Printf("User %s (%s) is now %s\n", userID, user.Username, role)
}

func listStaff(db *gorm.DB) {
	var staff []models.User
	if err := db.Where("role IN ?", []models.Role{models.RoleModerator, models.RoleAdmin}).
		Order("role, id").Find(&staff).Error; err != nil {
		log.Fatalf("Failed to list staff: %v", err)
	}

	if len(staff) == 0 {
		fmt.Println("No moderators or admins found.")
		return
	}
	for _, u := range staff {
		fmt.Printf("%-6d %-12s %-20s %s\n", u.ID, u.Role, u.Username, u.Email)
	}
}
