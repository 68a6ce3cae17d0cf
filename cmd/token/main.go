// Command token issues HS256 bearer tokens for local development.
//
//	go run ./cmd/token -user admin -roles admin,user
//
// The secret, issuer, and lifetime come from the [auth] config section.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/JaimeStill/veranstalter/internal/config"
	"github.com/JaimeStill/veranstalter/pkg/auth"
)

func main() {
	subject := flag.String("sub", "1", "token subject")
	username := flag.String("user", "admin", "preferred_username claim")
	roles := flag.String("roles", auth.RoleAdmin, "comma-separated roles")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}
	if cfg.Auth.Mode != auth.ModeHMAC {
		fmt.Fprintf(os.Stderr, "auth mode is %q; tokens are issued by the identity provider\n", cfg.Auth.Mode)
		os.Exit(1)
	}

	issuer := auth.NewHMAC(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTLDuration())

	token, err := issuer.Issue(*subject, *username, splitRoles(*roles)...)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}

func splitRoles(s string) []string {
	var out []string
	for r := range strings.SplitSeq(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
