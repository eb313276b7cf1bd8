package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	Release     string
	SchoolName  string

	// Organisation clock: all week math happens in this zone.
	Location  *time.Location
	TermMonth time.Month
	TermDay   int

	AuthSecret   []byte
	AuthTokenTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTTL      time.Duration

	BotToken        string
	AnnounceChatIDs []int64

	FinalizeEvery time.Duration
	FinalizeGrace time.Duration

	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	// Стартовые классы для пустой базы (локальный запуск).
	SeedGrades          []int
	SeedClassesPerGrade int
}

// LoadDotEnv подтягивает .env, если он есть. Отсутствие файла не ошибка.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Calendar reads only the organisation clock: TZ_OFFSET_HOURS and TERM_START. Tools that
// need week math but not the whole server config use it directly.
func Calendar() (*time.Location, time.Month, int, error) {
	offset, err := strconv.Atoi(getenv("TZ_OFFSET_HOURS", "7"))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("TZ_OFFSET_HOURS: %w", err)
	}
	month, day, err := parseMonthDay(getenv("TERM_START", "09-01"))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("TERM_START: %w", err)
	}
	return FixedZone(offset), month, day, nil
}

func Load() (*Config, error) {
	loc, month, day, err := Calendar()
	if err != nil {
		return nil, err
	}
	chatIDs, err := parseIDs(os.Getenv("ANNOUNCE_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ANNOUNCE_CHAT_IDS: %w", err)
	}
	ttl, err := durationEnv("AUTH_TOKEN_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	redisTTL, err := durationEnv("REDIS_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	every, err := durationEnv("FINALIZE_EVERY", time.Hour)
	if err != nil {
		return nil, err
	}
	grace, err := durationEnv("FINALIZE_GRACE", 48*time.Hour)
	if err != nil {
		return nil, err
	}
	seedGrades, err := parseIDs(os.Getenv("SEED_GRADES"))
	if err != nil {
		return nil, fmt.Errorf("SEED_GRADES: %w", err)
	}
	perGrade, err := strconv.Atoi(getenv("SEED_CLASSES_PER_GRADE", "0"))
	if err != nil {
		return nil, fmt.Errorf("SEED_CLASSES_PER_GRADE: %w", err)
	}

	cfg := &Config{
		DatabaseURL: mustEnv("DATABASE_URL"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		Env:         getenv("ENV", "dev"),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		Release:     getenv("RELEASE", "dev"),
		SchoolName:  os.Getenv("SCHOOL_NAME"),

		Location:  loc,
		TermMonth: month,
		TermDay:   day,

		AuthSecret:   []byte(mustEnv("AUTH_SECRET")),
		AuthTokenTTL: ttl,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisTTL:      redisTTL,

		BotToken:        os.Getenv("BOT_TOKEN"),
		AnnounceChatIDs: chatIDs,

		FinalizeEvery: every,
		FinalizeGrace: grace,

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),

		SeedClassesPerGrade: perGrade,
	}
	for _, g := range seedGrades {
		cfg.SeedGrades = append(cfg.SeedGrades, int(g))
	}
	return cfg, nil
}

// FixedZone returns the organisation zone for a whole-hour UTC offset, e.g. 7 → "UTC+7".
func FixedZone(offsetHours int) *time.Location {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return time.FixedZone(name, offsetHours*3600)
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func parseMonthDay(s string) (time.Month, int, error) {
	t, err := time.Parse("01-02", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("want MM-DD, got %q", s)
	}
	return t.Month(), t.Day(), nil
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
