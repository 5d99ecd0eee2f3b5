package main

import (
	"fmt"
	"log"
	"os"

	"github.com/avc/logistics-backoffice/internal/app"
	"github.com/avc/logistics-backoffice/internal/utils/password"
)

func main() {
	// hash-password <пароль> печатает bcrypt хеш для ADMIN_PASSWORD_HASH
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if len(os.Args) != 3 {
			log.Fatalf("usage: %s hash-password <password>", os.Args[0])
		}
		hash, err := password.HashPassword(os.Args[2])
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	application, err := app.NewApp(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Failed to run application: %v", err)
	}
}
