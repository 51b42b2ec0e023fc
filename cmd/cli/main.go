// Command psctl is a command-line client for the photoshare API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id,omitempty"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "photoshare")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "photoshare")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tf tokenFile) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tf)
}

func loadToken() (tokenFile, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return tokenFile{}, err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return tokenFile{}, err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return tokenFile{}, errors.New("no valid token (login required)")
	}
	return tf, nil
}

// tokenExpiry reads exp from an access token without verifying it; the server does that.
func tokenExpiry(tok string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(time.Hour)
}

// ---- output ----

var stdout io.Writer = os.Stdout

func printJSON(v any) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `psctl
Usage:
  psctl [-addr URL] [-insecure] <cmd> [args]

Commands:
  version
  register     -email <e> -u <username> -p <password> [-name <display name>]   (saves token)
  login        -email <e> -p <password>                                         (saves token)
  me
  profile      -id <user uuid>
  update-me    [-name <n>] [-bio <b>] [-avatar-url <u>] [-avatar <file>]
  upload       -file <image|-> [-title <t>] [-desc <d>] [-vis PUBLIC|PRIVATE]
  photos       [-vis PUBLIC|PRIVATE] [-limit n] [-cursor c]
  photo        -id <uuid>
  photo-vis    -id <uuid> -vis PUBLIC|PRIVATE
  photo-rm     -id <uuid>
  album-new    -title <t> [-desc <d>] [-vis PUBLIC|PRIVATE]
  albums       [-vis PUBLIC|PRIVATE] [-limit n] [-cursor c]
  album        -id <uuid> [-sort recent|oldest] [-limit n] [-cursor c]
  album-rm     -id <uuid>
  album-add    -photo <uuid> -album <uuid>
  album-remove -photo <uuid> -album <uuid>
  like         -type PHOTO|ALBUM -id <uuid>
  unlike       -type PHOTO|ALBUM -id <uuid>
  likes        [-type PHOTO|ALBUM] [-limit n] [-cursor c]
  feed         [-sort latest|likes] [-limit n] [-cursor c]
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the configured server.
func main() {
	addr := flag.String("addr", envOr("PHOTOSHARE_ADDR", "http://localhost:8080"), "server base URL")
	insecure := flag.Bool("insecure", false, "skip TLS certificate verification (dev)")
	timeout := flag.Duration("timeout", 60*time.Second, "request timeout")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, *addr, *insecure, flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			usage()
		}
		fail(err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fail(err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "api error: status=%d code=%s msg=%s\n", apiErr.Status, apiErr.Code, apiErr.Message)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
