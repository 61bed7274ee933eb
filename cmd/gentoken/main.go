// Command gentoken mints a session token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gatherhub/server/internal/auth"
)

func main() {
	email := flag.String("email", "", "email address to mint a token for")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret (default: JWT_SECRET env var)")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *email == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: gentoken -email user@example.com [-secret ...] [-expiry 24h]")
		os.Exit(2)
	}

	tokens := auth.NewTokenManager(*secret, *expiry, "gatherhub")
	token, err := tokens.Generate(*email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generating token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
