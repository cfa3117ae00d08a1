package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pquerna/otp/totp"
)

// Prints a fresh TOTP setup (or a current code for an existing secret) for
// the manual-review admin login.
func main() {
	secret := os.Getenv("ADMIN_TOTP_SECRET")

	if secret == "" {
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      "scavnger-backend",
			AccountName: "admin",
		})
		if err != nil {
			fmt.Printf("Error generating TOTP secret: %v\n", err)
			os.Exit(1)
		}
		secret = key.Secret()

		fmt.Println("============================================================")
		fmt.Println("New Admin TOTP Secret")
		fmt.Println("============================================================")
		fmt.Printf("Secret:      %s\n", secret)
		fmt.Printf("Otpauth URL: %s\n", key.URL())
		fmt.Println()
		fmt.Println("Set ADMIN_TOTP_SECRET to this value on the server and add")
		fmt.Println("the otpauth URL to your authenticator app.")
		fmt.Println()
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		fmt.Printf("Error generating TOTP code: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Current TOTP Code: %s\n", code)
	fmt.Printf("Valid for: ~30 seconds\n")
}
