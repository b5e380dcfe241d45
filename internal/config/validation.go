package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/raoulx24/dirsync/internal/fs"
	"github.com/raoulx24/dirsync/internal/preserve"
)

// validate is the singleton validator instance
var validate = validator.New()

// Validate checks struct tags first, then rules that span several fields.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func validateCustomRules(cfg *Config) error {
	schemes := map[string]bool{}
	buckets := map[string]string{} // location name -> bucket
	for name, raw := range map[string]string{"source": cfg.Source, "target": cfg.Target} {
		loc, err := fs.ParseLocation(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		switch loc.Scheme {
		case "file", "ns", "s3":
		default:
			return fmt.Errorf("%s: unsupported scheme %q", name, loc.Scheme)
		}
		schemes[loc.Scheme] = true
		if loc.Scheme == "s3" {
			buckets[name] = loc.Host
		}
	}

	if schemes["ns"] && cfg.Namespace.Dir == "" && !cfg.Namespace.InMemory {
		return fmt.Errorf("namespace: dir is required for ns:// locations unless inMemory is set")
	}

	if schemes["s3"] {
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("s3: bucket is required for s3:// locations")
		}
		if cfg.S3.Region == "" {
			return fmt.Errorf("s3: region is required for s3:// locations")
		}
		for name, bucket := range buckets {
			if bucket != cfg.S3.Bucket {
				return fmt.Errorf("%s: bucket %q does not match s3.bucket %q", name, bucket, cfg.S3.Bucket)
			}
		}
	}

	if _, err := preserve.Parse(cfg.Preserve); err != nil {
		return fmt.Errorf("preserve: %w", err)
	}

	if cfg.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}

	if base, limit := deref(cfg.Retry.BaseDelay), deref(cfg.Retry.MaxDelay); limit > 0 && limit < base {
		return fmt.Errorf("retry: maxDelay %s is below baseDelay %s", limit, base)
	}
	return nil
}
