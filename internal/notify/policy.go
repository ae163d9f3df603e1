package notify

import (
	"strings"
	"sync"
	"time"
)

// nonCriticalPatterns are known noisy error messages that belong on the
// silent surface instead of the primary notification list. Matched
// case-insensitively as substrings.
var nonCriticalPatterns = []string{
	"impossible de charger les statistiques",
	"aucun rendez-vous récent trouvé",
	"erreur chargement revenus",
	"données non disponibles",
	"connexion temporairement indisponible",
}

// Policy keeps the primary notification surface free of noise. Two rules
// compose in a fixed order: non-critical classification first (redirect
// to the silent sink), then per-message throttling for everything that
// remains. A redirected message never enters the throttle map.
type Policy struct {
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	lastShown map[string]time.Time
}

// NewPolicy creates a policy with the given throttle window.
func NewPolicy(window time.Duration) *Policy {
	return &Policy{
		window:    window,
		now:       time.Now,
		lastShown: make(map[string]time.Time),
	}
}

// IsNonCritical reports whether the message matches a known noisy pattern.
func (p *Policy) IsNonCritical(message string) bool {
	lower := strings.ToLower(message)
	for _, pattern := range nonCriticalPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// AllowError reports whether an error with this message may be shown now,
// and records the message as shown when it may. A message seen within the
// throttle window is suppressed entirely.
func (p *Policy) AllowError(message string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if last, ok := p.lastShown[message]; ok && now.Sub(last) < p.window {
		return false
	}
	p.lastShown[message] = now
	return true
}
