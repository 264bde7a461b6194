// Package main provides a CLI tool for generating test tokens for local
// development. These tokens use the dev signing key and will NOT work in
// production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/profullstack/food-delivery-multivendor/internal/platform/middleware"
	"github.com/profullstack/food-delivery-multivendor/internal/platform/token"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "food-delivery-multivendor"
	defaultTokenTTL = 24 * time.Hour
)

type tokenOutput struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Role      string `json:"role,omitempty"`
	ExpiresIn string `json:"expires_in"`
	Usage     string `json:"usage"`
}

func main() {
	userID := flag.String("user-id", "", "User ID. Generated if empty.")
	admin := flag.Bool("admin", false, "Issue an admin token")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	signingKey := flag.String("signing-key", devSigningKey, "HMAC signing key")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	if *userID == "" {
		*userID = uuid.New().String()
	}
	role := ""
	if *admin {
		role = middleware.RoleAdmin
	}

	svc := token.NewService(*signingKey, defaultIssuer, *ttl)
	signed, err := svc.Generate(*userID, role, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate token:", err)
		os.Exit(1)
	}

	if *asJSON {
		out := tokenOutput{
			Token:     signed,
			UserID:    *userID,
			Role:      role,
			ExpiresIn: ttl.String(),
			Usage:     "Authorization: Bearer <token>",
		}
		encoded, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(encoded))
		return
	}

	fmt.Println(signed)
}
