// Command seed creates a handful of local users and prints an access token for each,
// for exercising the API from Postman or a websocket client.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/adapter/repository"
	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-quality/pkg/config"
	pkgjwt "github.com/johnquangdev/meeting-quality/pkg/jwt"
)

// Seeded tokens outlive the configured access expiry.
const tokenExpiry = 7 * 24 * time.Hour

func main() {
	log.Println("🚀 Seeding test users...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	users := repository.NewUserRepository(db)
	jwtManager := pkgjwt.NewManager(cfg.JWT.AccessSecret, tokenExpiry, cfg.JWT.Issuer)

	testUsers := []struct {
		Email string
		Name  string
	}{
		{Email: "alice@test.local", Name: "Alice"},
		{Email: "bob@test.local", Name: "Bob"},
		{Email: "charlie@test.local", Name: "Charlie"},
		{Email: "diana@test.local", Name: "Diana"},
		{Email: "eve@test.local", Name: "Eve"},
	}

	ctx := context.Background()
	for i, tu := range testUsers {
		user, err := users.FindByEmail(ctx, tu.Email)
		if err != nil {
			user = &entities.User{
				ID:       uuid.New(),
				Email:    tu.Email,
				FullName: tu.Name,
				IsActive: true,
			}
			if err := users.Create(ctx, user); err != nil {
				log.Printf("❌ Failed to create user %s: %v", tu.Email, err)
				continue
			}
		}

		token, err := jwtManager.GenerateAccessToken(user.ID, user.Email, user.FullName)
		if err != nil {
			log.Printf("❌ Failed to generate access token for %s: %v", tu.Email, err)
			continue
		}

		fmt.Printf("═══════════════════════════════════════════════════════════════\n")
		fmt.Printf("🟢 User %d: %s\n", i+1, user.FullName)
		fmt.Printf("Email:        %s\n", user.Email)
		fmt.Printf("User ID:      %s\n", user.ID)
		fmt.Printf("\n📋 Access Token (expires in %v):\n%s\n", tokenExpiry, token)
		fmt.Printf("───────────────────────────────────────────────────────────────\n\n")
	}

	log.Println("✅ Test users ready")
	log.Println("💡 REST: Authorization: Bearer <token>")
	log.Println("💡 WebSocket: /ws?token=<token> or subprotocols [\"meetings.v1\", \"bearer.<token>\"]")
	log.Println("🧹 Clean up with: DELETE FROM users WHERE email LIKE '%@test.local'")
}
