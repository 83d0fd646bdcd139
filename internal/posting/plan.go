package posting

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"github.com/smallbiznis/bookkeeper/pkg/apperror"
)

// leg is a journal line addressed by semantic key before resolution.
type leg struct {
	key         accountdomain.Key
	debit       bool
	amount      decimal.Decimal
	description string
}

// plan collects legs in insertion order. Zero amounts are dropped so
// optional accounts such as cess or TDS are only needed when used.
type plan struct {
	legs []leg
}

func (p *plan) debit(key accountdomain.Key, amount decimal.Decimal, description string) {
	p.add(key, true, amount, description)
}

func (p *plan) credit(key accountdomain.Key, amount decimal.Decimal, description string) {
	p.add(key, false, amount, description)
}

func (p *plan) add(key accountdomain.Key, debit bool, amount decimal.Decimal, description string) {
	if amount.IsZero() {
		return
	}
	p.legs = append(p.legs, leg{key: key, debit: debit, amount: amount, description: description})
}

func (p *plan) keys() []accountdomain.Key {
	seen := make(map[accountdomain.Key]struct{}, len(p.legs))
	keys := make([]accountdomain.Key, 0, len(p.legs))
	for _, l := range p.legs {
		if _, ok := seen[l.key]; ok {
			continue
		}
		seen[l.key] = struct{}{}
		keys = append(keys, l.key)
	}
	return keys
}

func (p *plan) lines(ids map[accountdomain.Key]snowflake.ID) []ledgerdomain.DraftLine {
	lines := make([]ledgerdomain.DraftLine, 0, len(p.legs))
	for _, l := range p.legs {
		if l.debit {
			lines = append(lines, ledgerdomain.Debit(ids[l.key], l.amount, l.description))
		} else {
			lines = append(lines, ledgerdomain.Credit(ids[l.key], l.amount, l.description))
		}
	}
	return lines
}

// resolve maps every key of p to an account before anything is written.
// All unresolved keys are reported together.
func (e *Engine) resolve(ctx context.Context, tenantID snowflake.ID, p *plan) (map[accountdomain.Key]snowflake.ID, error) {
	ids, missing, err := e.accounts.ResolveAll(ctx, tenantID, p.keys())
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, key := range missing {
			names = append(names, string(key))
		}
		return nil, apperror.New(apperror.CodeMissingAccountMapping, "no account mapped for "+strings.Join(names, ", ")).
			WithDetail("missing", names)
	}
	return ids, nil
}

// keyOr returns the line's own account key or fallback when it has none.
func keyOr(raw *string, fallback accountdomain.Key) accountdomain.Key {
	if raw != nil {
		if key := accountdomain.NormalizeKey(*raw); key != "" {
			return key
		}
	}
	return fallback
}
