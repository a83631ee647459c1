package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ride-track/internal/cli"
)

func main() {
	var (
		userID = flag.Int64("user-id", 0, "Numeric id of the user (subject)")
		phone  = flag.String("phone", "", "Phone number claim")
		kind   = flag.String("kind", "access", "Token kind: access | refresh")
		secret = flag.String("secret", "", "JWT HMAC secret (HS256)")
		ttl    = flag.Duration("ttl", 2*time.Hour, "Token lifetime")
	)
	flag.Parse()

	if *userID == 0 || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: key --user-id=<id> --phone=<number> --secret='<secret>' [--kind=access] [--ttl=2h]")
		os.Exit(2)
	}

	token, claims, err := cli.GenerateUserToken(*secret, *userID, *phone, *kind, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println("TOKEN:")
	fmt.Println(token)
	fmt.Println("\nCLAIMS:")
	fmt.Printf("  sub:   %s\n", claims.Subject)
	fmt.Printf("  phone: %s\n", claims.Phone)
	fmt.Printf("  kind:  %s\n", claims.Kind)
	fmt.Printf("  iat:   %s\n", claims.IssuedAt.Time.UTC().Format(time.RFC3339))
	fmt.Printf("  exp:   %s\n", claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
}
