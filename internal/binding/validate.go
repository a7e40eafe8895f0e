package binding

import (
	"sort"
	"strings"

	"github.com/Rampop01/spectralpay/internal/codec"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/errors"
)

// DefaultPaymentToken is the token jobs are paid in unless another is given.
const DefaultPaymentToken = "0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"

// DefaultReputationBond is the stake locked at registration, 0.1 token.
const DefaultReputationBond = "100000000000000000"

func invalid(op, format string, v ...interface{}) error {
	return errors.Newf(errors.KindValidation, op, format, v...)
}

func requireText(op, field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid(op, "%s is required", field)
	}
	return v, nil
}

func requireFelt(op, field, v string) (string, error) {
	if strings.TrimSpace(v) == "" {
		return "", invalid(op, "%s is required", field)
	}
	n, err := codec.NormalizeFelt(strings.TrimSpace(v))
	if err != nil {
		return "", invalid(op, "%s: %q is not a field element", field, v)
	}
	return n, nil
}

// jobID normalizes a job or escrow identifier to decimal. Zero is never a
// valid identifier.
func jobID(op, id string) (string, error) {
	u, err := codec.ToUint256(strings.TrimSpace(id))
	if err != nil {
		return "", invalid(op, "invalid identifier %q", id)
	}
	if u.IsZero() {
		return "", invalid(op, "identifier must be positive")
	}
	return u.BigInt().String(), nil
}

func deadlineDays(op string, days uint64) error {
	if days < marketplace.MinDeadlineDays || days > marketplace.MaxDeadlineDays {
		return invalid(op, "deadline must be between %d and %d days, got %d",
			marketplace.MinDeadlineDays, marketplace.MaxDeadlineDays, days)
	}
	return nil
}

func positiveDays(op string, days uint64) error {
	if days == 0 {
		return invalid(op, "additional days must be positive")
	}
	return nil
}

// amountWei resolves an amount given either in the smallest unit or in
// whole tokens. Exactly one must be set and the result must be positive.
func amountWei(op, wei, tokens string) (string, error) {
	wei, tokens = strings.TrimSpace(wei), strings.TrimSpace(tokens)
	switch {
	case wei != "" && tokens != "":
		return "", invalid(op, "give the amount in wei or in tokens, not both")
	case tokens != "":
		w, err := codec.EthToWei(tokens)
		if err != nil {
			return "", errors.Classify(op, err)
		}
		wei = w
	case wei == "":
		return "", invalid(op, "amount is required")
	}
	u, err := codec.ToUint256(wei)
	if err != nil {
		return "", invalid(op, "invalid amount %q", wei)
	}
	if u.IsZero() {
		return "", invalid(op, "amount must be positive")
	}
	return u.BigInt().String(), nil
}

// skillsHash hashes a skill list independent of order and case.
func skillsHash(skills []string) string {
	norm := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			norm = append(norm, s)
		}
	}
	sort.Strings(norm)
	return codec.HashContent(append([]string{"skills"}, norm...)...)
}
