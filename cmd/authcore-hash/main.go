// Command authcore-hash produces the bcrypt credential hash for engine
// configuration. The pepper must match the one the engine will run with.
//
//	authcore-hash -pepper "$AUTH_PEPPER" 'S3cure!Pass'
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mpsstore/authcore/password"
)

func main() {
	cost := flag.Int("cost", password.MinCost, "bcrypt work factor")
	pepper := flag.String("pepper", "", "server-side pepper (must match engine config)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: authcore-hash [-cost N] [-pepper P] <password>")
		os.Exit(2)
	}

	plaintext := flag.Arg(0)
	strength := password.EvaluateStrength(plaintext)
	if !strength.IsStrong {
		fmt.Fprintln(os.Stderr, "refusing weak password:")
		for _, hint := range strength.Feedback {
			fmt.Fprintf(os.Stderr, "  - %s\n", hint)
		}
		os.Exit(1)
	}

	hasher, err := password.NewHasher(password.Config{Cost: *cost, Pepper: *pepper})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	hash, err := hasher.Hash(plaintext)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
