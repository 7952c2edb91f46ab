package main

import (
	"flag"
	"fmt"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/config"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/database"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// devPassword is the login password of the seeded development users.
const devPassword = "dev-password-123"

func main() {
	role := flag.String("role", models.RoleAdmin, "User role (admin or user)")
	flag.Parse()

	if *role != models.RoleAdmin && *role != models.RoleUser {
		log.Fatalf("Unknown role %q, expected admin or user", *role)
	}

	_ = godotenv.Load()
	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver: config.GetEnvWithDefault("DB_DRIVER", "sqlite"),
		URL:    config.GetEnvWithDefault("DATABASE_URL", ""),
		Path:   config.GetEnvWithDefault("DB_PATH", "mealplanner.sqlite"),
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	clientID, clientSecret := "dev-client", "dev-secret-123"
	if *role == models.RoleUser {
		clientID, clientSecret = "user-client", "user-secret-123"
	}

	var existing models.OAuthClient
	if err := db.Where("id = ?", clientID).First(&existing).Error; err == nil {
		fmt.Printf("Development client already exists for role '%s'!\n", *role)
		fmt.Printf("Client ID: %s\n", clientID)
		fmt.Printf("Client Secret: %s\n", clientSecret)
		return
	}

	user, err := userForRole(db, *role)
	if err != nil {
		log.WithError(err).Fatalf("Failed to get user for role %s", *role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash secret")
	}

	client := models.OAuthClient{
		ID:         clientID,
		Secret:     string(hash),
		Name:       fmt.Sprintf("Development %s Client", *role),
		Domain:     "http://localhost",
		UserID:     user.ID,
		Scopes:     "read write",
		GrantTypes: "client_credentials",
	}
	if err := db.Create(&client).Error; err != nil {
		log.WithError(err).Fatal("Failed to create client")
	}

	fmt.Printf("Development OAuth client created for role '%s'!\n", *role)
	fmt.Printf("Client ID: %s\n", clientID)
	fmt.Printf("Client Secret: %s\n", clientSecret)
	fmt.Printf("User: %s (ID: %d, password: %s)\n", user.Email, user.ID, devPassword)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:8080/api/v1/oauth/token \\\n")
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", clientID)
	fmt.Printf("  -d 'client_secret=%s'\n", clientSecret)
}

// userForRole gets or creates the development user with the given role.
func userForRole(db *gorm.DB, role string) (*models.User, error) {
	email := fmt.Sprintf("%s@mealplanner.local", role)

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		fmt.Printf("Found existing user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
		return &user, nil
	}

	user = models.User{
		Email:    email,
		Name:     fmt.Sprintf("%s User", role),
		Password: devPassword,
		Role:     role,
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	fmt.Printf("Created new user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
	return &user, nil
}
