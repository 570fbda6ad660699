// cmd/token ký access token cho staff account, dùng khi chưa có identity provider.
// Usage: go run ./cmd/token -email staff@library.local -role librarian
package main

import (
	"flag"
	"fmt"
	"log"

	"library-lending-backend/internal/config"
	"library-lending-backend/pkg/jwt"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	staffID := flag.String("id", "", "staff id (uuid), random when empty")
	email := flag.String("email", "staff@library.local", "staff email")
	role := flag.String("role", jwt.RoleLibrarian, "admin | librarian")
	flag.Parse()

	if *role != jwt.RoleAdmin && *role != jwt.RoleLibrarian {
		log.Fatalf("❌ role must be %q or %q", jwt.RoleAdmin, jwt.RoleLibrarian)
	}

	id := *staffID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		log.Fatalf("❌ invalid staff id: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	manager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiry)
	token, err := manager.GenerateAccessToken(id, *email, *role)
	if err != nil {
		log.Fatalf("❌ Failed to sign token: %v", err)
	}

	log.Printf("🔑 staff=%s role=%s expires_in=%s", id, *role, cfg.JWT.AccessTokenExpiry)
	fmt.Println(token)
}
