// Prints an INSERT that seeds an admin profile, since the API only ever
// creates participants.
//
//	go run ./scripts/generate_password_hashes.go "Ada Admin" ada@example.com s3cret-pass
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: generate_password_hashes <name> <email> <password>")
		os.Exit(2)
	}
	name, email, password := os.Args[1], strings.ToLower(os.Args[2]), os.Args[3]

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf(`INSERT INTO profiles (id, name, email, password_hash, role)
VALUES ('%s', '%s', '%s', '%s', 'admin')
ON CONFLICT (email) DO UPDATE SET role = 'admin', password_hash = EXCLUDED.password_hash;
`, uuid.NewString(), sqlQuote(name), sqlQuote(email), hash)
}

func sqlQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
