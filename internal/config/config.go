package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Columns overrides the register headers the source reads. Blank keys keep the defaults.
type Columns struct {
	ID          string `yaml:"id"`
	Buyer       string `yaml:"buyer"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	Description string `yaml:"description"`
	Vendor      string `yaml:"vendor"`
	Limit       string `yaml:"limit"`
	Spent       string `yaml:"spent"`
	Division    string `yaml:"division"`
}

// Config holds all application configuration.
type Config struct {
	Source struct {
		Kind    string  `yaml:"kind"` // xlsx or sqlite
		Path    string  `yaml:"path"`
		Sheet   string  `yaml:"sheet"`
		Table   string  `yaml:"table"`
		Columns Columns `yaml:"columns"`
	} `yaml:"source"`
	Indicators struct {
		MonthBasis string `yaml:"month_basis"`
		OnInvalid  string `yaml:"on_invalid"`
	} `yaml:"indicators"`
	Output struct {
		WorkbookDir string `yaml:"workbook_dir"`
		MemoDir     string `yaml:"memo_dir"`
	} `yaml:"output"`
	Memo struct {
		Enabled        *bool    `yaml:"enabled"`
		Divisor        int      `yaml:"divisor"`
		Recipient      string   `yaml:"recipient"`
		Address        []string `yaml:"address"`
		ChiefFiscal    string   `yaml:"chief_fiscal"`
		BudgetAccount  string   `yaml:"budget_account"`
		SignatureTitle string   `yaml:"signature_title"`
		HeaderImage    string   `yaml:"header_image"`
		SignatureImage string   `yaml:"signature_image"`
		Distribute     bool     `yaml:"distribute"`
		RecipientEmail []string `yaml:"recipient_email"`
	} `yaml:"memo"`
	Mail struct {
		Host             string              `yaml:"host"`
		Port             int                 `yaml:"port"`
		Username         string              `yaml:"username"`
		Password         string              `yaml:"password"`
		From             string              `yaml:"from"`
		DefaultRecipient string              `yaml:"default_recipient"`
		Divisions        map[string][]string `yaml:"divisions"`
		Retries          *int                `yaml:"retries"`
		BackoffSeconds   int                 `yaml:"backoff_seconds"`
		Concurrency      int                 `yaml:"concurrency"`
	} `yaml:"mail"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults and the environment still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("CONTRACTS_PATH"); v != "" {
		cfg.Source.Kind = "xlsx"
		cfg.Source.Path = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Source.Kind = "sqlite"
		cfg.Source.Path = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Mail.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SMTP_PORT: %w", err)
		}
		cfg.Mail.Port = port
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Mail.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Mail.Password = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.Mail.From = v
	}
	if v := os.Getenv("MAIL_DEFAULT_RECIPIENT"); v != "" {
		cfg.Mail.DefaultRecipient = v
	}

	// Defaults
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = "xlsx"
	}
	if cfg.Source.Path == "" {
		cfg.Source.Path = "data/Contract List.xlsx"
	}
	if cfg.Source.Sheet == "" {
		cfg.Source.Sheet = "master"
	}
	if cfg.Source.Table == "" {
		cfg.Source.Table = "contracts"
	}
	if cfg.Indicators.MonthBasis == "" {
		cfg.Indicators.MonthBasis = "average"
	}
	if cfg.Indicators.OnInvalid == "" {
		cfg.Indicators.OnInvalid = "skip"
	}
	if cfg.Output.WorkbookDir == "" {
		cfg.Output.WorkbookDir = "temporary_workbooks_folder"
	}
	if cfg.Output.MemoDir == "" {
		cfg.Output.MemoDir = "changeorder_memos"
	}
	if cfg.Memo.Enabled == nil {
		enabled := true
		cfg.Memo.Enabled = &enabled
	}
	if cfg.Memo.Divisor == 0 {
		cfg.Memo.Divisor = 10
	}
	if cfg.Memo.Recipient == "" {
		cfg.Memo.Recipient = "procurement officer"
	}
	if len(cfg.Memo.Address) == 0 {
		cfg.Memo.Address = []string{"Office of Procurement"}
	}
	if cfg.Memo.SignatureTitle == "" {
		cfg.Memo.SignatureTitle = "AP Supervisor"
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.Retries == nil {
		retries := 3
		cfg.Mail.Retries = &retries
	}
	if cfg.Mail.BackoffSeconds == 0 {
		cfg.Mail.BackoffSeconds = 1
	}
	if cfg.Mail.Concurrency == 0 {
		cfg.Mail.Concurrency = 4
	}

	return cfg, nil
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the settings every run needs.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "xlsx", "sqlite":
	default:
		return fmt.Errorf("source.kind must be xlsx or sqlite, got %q", c.Source.Kind)
	}
	if c.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}
	if c.Source.Kind == "sqlite" && !tableName.MatchString(c.Source.Table) {
		return fmt.Errorf("source.table %q is not a plain identifier", c.Source.Table)
	}
	switch c.Indicators.MonthBasis {
	case "average", "calendar":
	default:
		return fmt.Errorf("indicators.month_basis must be average or calendar, got %q", c.Indicators.MonthBasis)
	}
	switch c.Indicators.OnInvalid {
	case "skip", "abort":
	default:
		return fmt.Errorf("indicators.on_invalid must be skip or abort, got %q", c.Indicators.OnInvalid)
	}
	if c.Memo.Divisor <= 0 {
		return fmt.Errorf("memo.divisor must be positive")
	}
	return nil
}

// ValidateMail checks the settings needed to actually send mail.
func (c *Config) ValidateMail() error {
	if c.Mail.Host == "" {
		return fmt.Errorf("mail.host is required")
	}
	if c.Mail.From == "" {
		return fmt.Errorf("mail.from is required")
	}
	if c.Mail.DefaultRecipient == "" && len(c.Mail.Divisions) == 0 {
		return fmt.Errorf("mail.default_recipient or mail.divisions is required")
	}
	if c.Memo.Distribute && len(c.Memo.RecipientEmail) == 0 && c.Mail.DefaultRecipient == "" {
		return fmt.Errorf("memo.recipient_email is required when memo.distribute is set")
	}
	if c.Mail.Retries != nil && *c.Mail.Retries < 0 {
		return fmt.Errorf("mail.retries must not be negative")
	}
	return nil
}

// MailRetries is the number of retries after a failed send. Zero sends once.
func (c *Config) MailRetries() int {
	if c.Mail.Retries == nil {
		return 3
	}
	return *c.Mail.Retries
}

// MemoEnabled reports whether change-order memos are generated.
func (c *Config) MemoEnabled() bool {
	return c.Memo.Enabled == nil || *c.Memo.Enabled
}
