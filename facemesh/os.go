package facemesh

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// ErrNotPointer is returned by SetConfigFromEnvVars when s is not a pointer to a struct.
var ErrNotPointer = errors.New("config must be a pointer to a struct")

// GetenvOrDefault returns the value of key, or defaultValue when it is unset or blank.
func GetenvOrDefault(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return defaultValue
}

// GetenvBoolOrDefault parses key with strconv.ParseBool, falling back to defaultValue.
func GetenvBoolOrDefault(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}

	return v
}

// GetenvIntOrDefault parses key as a base-10 int64, falling back to defaultValue.
func GetenvIntOrDefault(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil {
		return defaultValue
	}

	return v
}

// SetConfigFromEnvVars fills the fields of the struct pointed to by s from the
// environment variables named in their `env` tags. Supported kinds are string,
// bool, signed integers and time.Duration (Go duration syntax or whole seconds).
// Unset variables leave the field untouched, so defaults can be assigned first.
func SetConfigFromEnvVars(s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrNotPointer
	}

	v = v.Elem()
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)

		key, ok := field.Tag.Lookup("env")
		if !ok || key == "" || !field.IsExported() {
			continue
		}

		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			continue
		}

		if err := setField(v.Field(i), raw); err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
	}

	return nil
}

func setField(f reflect.Value, raw string) error {
	if f.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := parseDuration(raw)
		if err != nil {
			return err
		}

		f.SetInt(int64(d))

		return nil
	}

	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}

		f.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, f.Type().Bits())
		if err != nil {
			return err
		}

		f.SetInt(n)
	default:
		return fmt.Errorf("unsupported field kind %s", f.Kind())
	}

	return nil
}

func parseDuration(raw string) (time.Duration, error) {
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	return time.ParseDuration(raw)
}

// LocalEnvConfig records the outcome of InitLocalEnvConfig.
type LocalEnvConfig struct {
	Initialized bool
}

var (
	localEnvConfig     *LocalEnvConfig
	localEnvConfigOnce sync.Once
)

// InitLocalEnvConfig prints the version banner and, when ENV_NAME is "local",
// loads a .env file from the working directory. It runs once per process.
func InitLocalEnvConfig() *LocalEnvConfig {
	localEnvConfigOnce.Do(func() {
		version := GetenvOrDefault("VERSION", "NO-VERSION")
		envName := GetenvOrDefault("ENV_NAME", "local")

		fmt.Printf("VERSION: %s\n\nENVIRONMENT NAME: %s\n\n", version, envName)

		localEnvConfig = &LocalEnvConfig{}

		if envName != "local" {
			return
		}

		if err := godotenv.Load(); err != nil {
			fmt.Println("Skipping .env file, using system environment variables")
			return
		}

		localEnvConfig.Initialized = true
	})

	return localEnvConfig
}
