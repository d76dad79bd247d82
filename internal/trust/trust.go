package trust

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether email addresses belong to the institution's
// trusted domains. Addresses outside the trusted set raise an email's
// risk score.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new trusted-domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, len(domains))
	for i, domain := range domains {
		normalized[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized trusted-domain checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsTrusted checks whether the address's domain is in the trusted set.
// Malformed addresses are treated as untrusted.
func (c *Checker) IsTrusted(address string) bool {
	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(parts[1]))

	for _, trusted := range c.domains {
		if trusted == domain {
			return true
		}
	}

	return false
}
