package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AccountMapping is the semantic-key to account-code table used by the
// account resolver when a tenant has no explicit mapping row.
type AccountMapping struct {
	// Defaults applies to every tenant.
	Defaults map[string]string `mapstructure:"defaults"`
	// Tenants overrides Defaults per tenant id.
	Tenants map[string]map[string]string `mapstructure:"tenants"`
}

// DefaultAccountMapping returns the compiled-in chart used when no
// accounts.yml is present.
func DefaultAccountMapping() AccountMapping {
	return AccountMapping{
		Defaults: map[string]string{
			"accounts_receivable": "AR-001",
			"accounts_payable":    "AP-001",
			"sales_revenue":       "REV-001",
			"purchase_expense":    "EXP-001",
			"cash":                "CASH-001",
			"bank":                "BANK-001",
			"card_clearing":       "CARD-001",
			"output_cgst":         "GST-OUT-CGST",
			"output_sgst":         "GST-OUT-SGST",
			"output_igst":         "GST-OUT-IGST",
			"output_cess":         "GST-OUT-CESS",
			"input_cgst":          "GST-IN-CGST",
			"input_sgst":          "GST-IN-SGST",
			"input_igst":          "GST-IN-IGST",
			"input_cess":          "GST-IN-CESS",
			"tds_receivable":      "TDS-REC",
			"tds_payable":         "TDS-PAY",
		},
		Tenants: map[string]map[string]string{},
	}
}

// CodeFor returns the account code configured for key, preferring the
// tenant table over the defaults.
func (m AccountMapping) CodeFor(tenantID string, key string) (string, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if tenant, ok := m.Tenants[strings.TrimSpace(tenantID)]; ok {
		if code := strings.TrimSpace(tenant[key]); code != "" {
			return code, true
		}
	}
	code := strings.TrimSpace(m.Defaults[key])
	return code, code != ""
}

type AccountMappingHolder struct {
	current atomic.Value // holds AccountMapping
}

// NewStaticAccountMappingHolder returns a holder that never reloads.
func NewStaticAccountMappingHolder(m AccountMapping) *AccountMappingHolder {
	holder := &AccountMappingHolder{}
	holder.current.Store(normalizeAccountMapping(m))
	return holder
}

// NewAccountMappingHolder loads accounts.yml once and keeps watching it.
func NewAccountMappingHolder(cfg Config, log *zap.Logger) (*AccountMappingHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.accounts")

	v := viper.New()
	if cfg.AccountsConfigPath != "" {
		v.SetConfigFile(cfg.AccountsConfigPath)
	} else {
		v.SetConfigName("accounts")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/bookkeeper")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BOOKKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read accounts config: %w", err)
		}
		log.Info("accounts config not found, using built-in defaults")
		return NewStaticAccountMappingHolder(DefaultAccountMapping()), nil
	}

	mapping, err := decodeAccountMapping(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticAccountMappingHolder(mapping)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeAccountMapping(v)
		if err != nil {
			log.Warn("accounts config reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("accounts config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *AccountMappingHolder) Get() AccountMapping {
	return h.current.Load().(AccountMapping)
}

func decodeAccountMapping(v *viper.Viper) (AccountMapping, error) {
	var mapping AccountMapping
	if err := v.UnmarshalKey("accounts", &mapping); err != nil {
		return AccountMapping{}, fmt.Errorf("decode accounts config: %w", err)
	}
	if err := validateAccountMapping(mapping); err != nil {
		return AccountMapping{}, err
	}
	return normalizeAccountMapping(mapping), nil
}

func validateAccountMapping(m AccountMapping) error {
	if len(m.Defaults) == 0 {
		return errors.New("accounts.defaults cannot be empty")
	}
	for key, code := range m.Defaults {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("accounts.defaults.%s has no account code", key)
		}
	}
	return nil
}

func normalizeAccountMapping(m AccountMapping) AccountMapping {
	out := AccountMapping{
		Defaults: make(map[string]string, len(m.Defaults)),
		Tenants:  make(map[string]map[string]string, len(m.Tenants)),
	}
	for key, code := range m.Defaults {
		out.Defaults[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(code)
	}
	for tenantID, overrides := range m.Tenants {
		table := make(map[string]string, len(overrides))
		for key, code := range overrides {
			table[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(code)
		}
		out.Tenants[strings.TrimSpace(tenantID)] = table
	}
	return out
}
