// Command keygen prints a fresh base64 ENCRYPTION_KEY.
package main

import (
	"fmt"
	"os"

	"mis/api/internal/infrastructure/crypto"
)

func main() {
	key, err := crypto.GenerateKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}
	fmt.Println(key)
}
