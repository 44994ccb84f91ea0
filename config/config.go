package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"
)

type Config struct {
	Addr          string
	APIURL        string
	Environment   Environment
	QuestionsFile string
	PublicDir     string
	DBUrl         string
	TokenSecret   string
	TokenTTL      time.Duration
	AdminUser     string
	AdminPassword string
	SessionTTL    time.Duration
	Debug         bool
}

func ParseFlags() (Config, error) {
	return Parse(os.Args[1:])
}

func Parse(args []string) (cfg Config, err error) {
	fs := flag.NewFlagSet("expert-mapper", flag.ContinueOnError)

	var host string
	fs.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	fs.UintVar(&port, "port", defaultPort(), "listen port number (PORT env)")
	fs.StringVar(&cfg.APIURL, "api-url", envOr("API_URL", "http://127.0.0.1:8000"), "mapper backend base URL (API_URL env)")
	var env string
	fs.StringVar(&env, "env", "", "backend environment: dev, staging or production (inferred from -api-url if empty)")
	fs.StringVar(&cfg.QuestionsFile, "questions-file", "", "YAML file with the per environment question ids")
	fs.StringVar(&cfg.PublicDir, "public-dir", "dist", "directory holding the built frontend")
	fs.StringVar(&cfg.DBUrl, "db-url", "mapper.sqlite", "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for admin token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", 120, "admin token TTL in seconds")
	fs.StringVar(&cfg.AdminUser, "admin-user", "", "admin user to create or update at startup")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "password of -admin-user")
	var sessionTTL uint
	fs.UintVar(&sessionTTL, "session-ttl", 120, "minutes a form session may stay idle")
	fs.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.SessionTTL = time.Duration(sessionTTL) * time.Minute

	if env == "" {
		cfg.Environment = DetectEnvironment(cfg.APIURL)
	} else if cfg.Environment, err = ParseEnvironment(env); err != nil {
		return
	}

	switch {
	case cfg.AdminUser != "" && cfg.AdminPassword == "":
		err = errors.New("missing parameter -admin-password")
	case cfg.AdminUser != "" && cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	}
	return
}

// AdminEnabled reports whether the admin API can issue tokens.
func (cfg Config) AdminEnabled() bool {
	return cfg.TokenSecret != ""
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func defaultPort() uint {
	if p, err := strconv.ParseUint(os.Getenv("PORT"), 10, 16); err == nil {
		return uint(p)
	}
	return 8080
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (cfg Config) String() string {
	return fmt.Sprintf("addr=%s api=%s env=%s public=%s", cfg.Addr, cfg.APIURL, cfg.Environment, cfg.PublicDir)
}
