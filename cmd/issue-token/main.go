package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/soulmatch/soulmatch-backend/internal/config"
	"github.com/soulmatch/soulmatch-backend/internal/service"
)

// issue-token signs a development access token with JWT_SECRET, shaped like the
// ones the auth backend issues, so the API can be exercised without signing in.
func main() {
	userFlag := flag.String("user", "", "Profile UUID to put in the subject (random if empty)")
	email := flag.String("email", "", "Optional email claim")
	flag.Parse()

	cfg := config.Load()

	userID := uuid.New()
	if *userFlag != "" {
		id, err := uuid.Parse(*userFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -user: %v\n", err)
			os.Exit(2)
		}
		userID = id
	}

	tok, err := service.NewAuthService(cfg).IssueToken(userID, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "user %s, expires in %s\n", userID, cfg.JWTExpiry)
	fmt.Println(tok)
}
