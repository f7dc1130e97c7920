// Command genhash prints the bcrypt hash stored for a password, for seeding
// users by hand: go run ./cmd/genhash <password>
package main

import (
	"fmt"
	"os"

	"jewelshop/internal/service"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>")
		os.Exit(2)
	}
	h, err := service.HashPassword(os.Args[1])
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
